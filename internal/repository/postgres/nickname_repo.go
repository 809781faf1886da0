package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// NicknameRepo implements NicknameRepository using PostgreSQL.
type NicknameRepo struct{ db *DB }

// NewNicknameRepo constructs a nickname repository.
func NewNicknameRepo(db *DB) *NicknameRepo { return &NicknameRepo{db: db} }

// Get returns the nickname the assigner gave the target.
func (r *NicknameRepo) Get(ctx context.Context, assignerID, targetID uuid.UUID) (string, error) {
	const q = `
SELECT nickname FROM user_nicknames
WHERE assigner_id=$1 AND target_id=$2`
	var nick string
	if err := r.db.Pool.QueryRow(ctx, q, assignerID, targetID).Scan(&nick); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", errs.ErrNotFound
		}
		return "", err
	}
	return nick, nil
}

// GetByTargets returns assignments for a set of targets in one query.
func (r *NicknameRepo) GetByTargets(ctx context.Context, assignerID uuid.UUID, targetIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	const q = `
SELECT target_id, nickname FROM user_nicknames
WHERE assigner_id=$1 AND target_id = ANY($2)`
	rows, err := r.db.Pool.Query(ctx, q, assignerID, targetIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			target uuid.UUID
			nick   string
		)
		if err := rows.Scan(&target, &nick); err != nil {
			return nil, err
		}
		out[target] = nick
	}
	return out, rows.Err()
}

// Insert creates a single assignment.
func (r *NicknameRepo) Insert(ctx context.Context, a model.NicknameAssignment) error {
	const q = `
INSERT INTO user_nicknames (assigner_id, target_id, nickname)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, a.AssignerID, a.TargetID, a.Nickname)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// InsertBatch creates all assignments in one multi-row statement. A conflicting
// concurrent assignment fails the whole batch; callers degrade to a fallback.
func (r *NicknameRepo) InsertBatch(ctx context.Context, as []model.NicknameAssignment) error {
	if len(as) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args = make([]any, 0, len(as)*3)
	)
	sb.WriteString("INSERT INTO user_nicknames (assigner_id, target_id, nickname) VALUES ")
	for i, a := range as {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, a.AssignerID, a.TargetID, a.Nickname)
	}
	_, err := r.db.Pool.Exec(ctx, sb.String(), args...)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// DeleteByUser removes assignments where the user is assigner or target.
func (r *NicknameRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	const q = `DELETE FROM user_nicknames WHERE assigner_id=$1 OR target_id=$1`
	_, err := r.db.Pool.Exec(ctx, q, userID)
	return err
}
