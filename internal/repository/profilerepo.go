package repository

import (
	"context"

	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
)

// ProfileRepository stores per-user preferences.
type ProfileRepository interface {
	// Get loads the profile for a user.
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// Upsert creates or updates the profile keyed by user id.
	Upsert(ctx context.Context, p *model.Profile) error
	// GetByUserIDs loads profiles for a set of users in a single query.
	GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]model.Profile, error)
	// Delete removes the profile row.
	Delete(ctx context.Context, userID uuid.UUID) error
}
