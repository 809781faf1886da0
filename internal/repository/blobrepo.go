package repository

import (
	"context"

	"github.com/Jasujung99/echo-note-whisper-app/internal/model"
)

// BlobRepository is the audio object store: path-addressed binary blobs
// with content types, under per-owner prefixes.
type BlobRepository interface {
	// Upload stores a blob. With upsert, an existing path is overwritten;
	// otherwise a duplicate path is errs.ErrAlreadyExists.
	Upload(ctx context.Context, b model.AudioBlob, upsert bool) error
	// Get loads a blob by its full path.
	Get(ctx context.Context, path string) (*model.AudioBlob, error)
	// List returns the paths stored under a prefix.
	List(ctx context.Context, prefix string) ([]string, error)
	// Remove deletes a batch of paths. Unknown paths are ignored.
	Remove(ctx context.Context, paths []string) error
}
