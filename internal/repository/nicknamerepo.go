package repository

import (
	"context"

	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
)

// NicknameRepository stores per-viewer nickname assignments.
// At most one row exists per (assigner, target) pair.
type NicknameRepository interface {
	// Get returns the nickname the assigner gave the target.
	Get(ctx context.Context, assignerID, targetID uuid.UUID) (string, error)
	// GetByTargets returns assignments for a set of targets in one query.
	GetByTargets(ctx context.Context, assignerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]string, error)
	// Insert creates a single assignment.
	Insert(ctx context.Context, a model.NicknameAssignment) error
	// InsertBatch creates all assignments in one statement; all-or-nothing.
	InsertBatch(ctx context.Context, as []model.NicknameAssignment) error
	// DeleteByUser removes assignments where the user is assigner or target.
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}
