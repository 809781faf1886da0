package postgres

import (
	"context"
	"errors"

	"github.com/Jasujung99/echo-note-whisper-app/internal/errs"
	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
	"github.com/jackc/pgx/v5"
)

// BlobRepo implements the audio object store on top of PostgreSQL.
type BlobRepo struct{ db *DB }

// NewBlobRepo constructs a blob repository.
func NewBlobRepo(db *DB) *BlobRepo { return &BlobRepo{db: db} }

// Upload stores a blob, optionally overwriting an existing path.
func (r *BlobRepo) Upload(ctx context.Context, b model.AudioBlob, upsert bool) error {
	if upsert {
		const q = `
INSERT INTO audio_blobs (path, content_type, data)
VALUES ($1, $2, $3)
ON CONFLICT (path)
DO UPDATE SET content_type=$2, data=$3`
		_, err := r.db.Pool.Exec(ctx, q, b.Path, b.ContentType, b.Data)
		return err
	}
	const q = `
INSERT INTO audio_blobs (path, content_type, data)
VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, b.Path, b.ContentType, b.Data)
	if isUniqueViolation(err) {
		return errs.ErrAlreadyExists
	}
	return err
}

// Get loads a blob by its full path.
func (r *BlobRepo) Get(ctx context.Context, path string) (*model.AudioBlob, error) {
	const q = `
SELECT path, content_type, data, created_at
FROM audio_blobs WHERE path=$1`
	row := r.db.Pool.QueryRow(ctx, q, path)
	var b model.AudioBlob
	if err := row.Scan(&b.Path, &b.ContentType, &b.Data, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// List returns the paths stored under a prefix.
func (r *BlobRepo) List(ctx context.Context, prefix string) ([]string, error) {
	const q = `SELECT path FROM audio_blobs WHERE path LIKE $1 || '%' ORDER BY path`
	rows, err := r.db.Pool.Query(ctx, q, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Remove deletes a batch of paths.
func (r *BlobRepo) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	const q = `DELETE FROM audio_blobs WHERE path = ANY($1)`
	_, err := r.db.Pool.Exec(ctx, q, paths)
	return err
}
