package repository

import (
	"context"

	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
)

// InviteRepository stores single-use registration codes.
type InviteRepository interface {
	// Create mints a new unused code.
	Create(ctx context.Context, code, nickname string) error
	// Redeem consumes the code atomically (conditional update on
	// is_used=false) and returns its birth nickname. At most one caller
	// succeeds per code; the rest get errs.ErrInviteUnavailable.
	Redeem(ctx context.Context, code string, userID uuid.UUID) (string, error)
	// List returns all codes, unused first.
	List(ctx context.Context) ([]model.InviteCode, error)
}
