package postgres

import (
	"context"
	"errors"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ProfileRepository using PostgreSQL.
type ProfileRepo struct{ db *DB }

// NewProfileRepo constructs a profile repository.
func NewProfileRepo(db *DB) *ProfileRepo { return &ProfileRepo{db: db} }

// Get selects the profile for a user.
func (r *ProfileRepo) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	const q = `
SELECT user_id, username, echo_enabled, receive_messages, created_at, updated_at
FROM profiles WHERE user_id=$1`
	row := r.db.Pool.QueryRow(ctx, q, userID)
	var p model.Profile
	if err := row.Scan(&p.UserID, &p.Username, &p.EchoEnabled, &p.ReceiveMessages, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Upsert creates or updates the profile keyed by user id.
func (r *ProfileRepo) Upsert(ctx context.Context, p *model.Profile) error {
	const q = `
INSERT INTO profiles (user_id, username, echo_enabled, receive_messages)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id)
DO UPDATE SET username=$2, echo_enabled=$3, receive_messages=$4, updated_at=now()`
	_, err := r.db.Pool.Exec(ctx, q, p.UserID, p.Username, p.EchoEnabled, p.ReceiveMessages)
	return err
}

// GetByUserIDs selects profiles for a set of users in a single query.
func (r *ProfileRepo) GetByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]model.Profile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	const q = `
SELECT user_id, username, echo_enabled, receive_messages, created_at, updated_at
FROM profiles WHERE user_id = ANY($1)`
	rows, err := r.db.Pool.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Profile
	for rows.Next() {
		var p model.Profile
		if err := rows.Scan(&p.UserID, &p.Username, &p.EchoEnabled, &p.ReceiveMessages, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes the profile row.
func (r *ProfileRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM profiles WHERE user_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}
