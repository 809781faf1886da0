package postgres

import (
	"context"
	"errors"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// InviteRepo implements InviteRepository using PostgreSQL.
type InviteRepo struct{ db *DB }

// NewInviteRepo constructs an invite repository.
func NewInviteRepo(db *DB) *InviteRepo { return &InviteRepo{db: db} }

// Create mints a new unused code.
func (r *InviteRepo) Create(ctx context.Context, code, nickname string) error {
	const q = `
INSERT INTO invite_codes (code, nickname)
VALUES ($1, $2)`
	_, err := r.db.Pool.Exec(ctx, q, code, nickname)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Redeem consumes the code with a single conditional update, so concurrent
// redeemers cannot both pass the is_used check.
func (r *InviteRepo) Redeem(ctx context.Context, code string, userID uuid.UUID) (string, error) {
	const q = `
UPDATE invite_codes
SET is_used=true, used_by=$2, used_at=now()
WHERE code=$1 AND is_used=false
RETURNING nickname`
	var nickname string
	if err := r.db.Pool.QueryRow(ctx, q, code, userID).Scan(&nickname); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrInviteUnavailable
		}
		return "", err
	}
	return nickname, nil
}

// List returns all codes, unused first.
func (r *InviteRepo) List(ctx context.Context) ([]model.InviteCode, error) {
	const q = `
SELECT code, nickname, is_used, used_by, used_at
FROM invite_codes ORDER BY is_used, code`
	rows, err := r.db.Pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.InviteCode
	for rows.Next() {
		var (
			ic     model.InviteCode
			usedBy *uuid.UUID
		)
		if err := rows.Scan(&ic.Code, &ic.Nickname, &ic.IsUsed, &usedBy, &ic.UsedAt); err != nil {
			return nil, err
		}
		if usedBy != nil {
			ic.UsedBy = *usedBy
		}
		out = append(out, ic)
	}
	return out, rows.Err()
}
