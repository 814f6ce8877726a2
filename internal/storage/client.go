// Package storage keeps uploaded media files in a blob store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	"github.com/mrlokans/mymotiv/internal/config"
	"github.com/mrlokans/mymotiv/internal/utils"
)

var ErrObjectNotFound = errors.New("object not found")

// Object describes a stored blob.
type Object struct {
	Key  string
	URL  string // Where clients fetch the object
	Size int64
}

// Client defines the blob storage operations used for media uploads
type Client interface {
	// Put writes content under key
	Put(ctx context.Context, key string, content io.Reader, contentType string) (*Object, error)

	// Open returns the content stored under key
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key. Deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if key is stored
	Exists(ctx context.Context, key string) (bool, error)
}

// NewKey returns a unique object key under prefix that keeps the original
// file's extension.
func NewKey(prefix, originalName string) string {
	return path.Join(prefix, uuid.NewString()+utils.Extension(utils.SanitizeFilename(originalName)))
}

// New builds the client selected by the media configuration.
func New(ctx context.Context, cfg config.Media) (Client, error) {
	switch cfg.Storage {
	case config.MediaStorageS3:
		return NewS3Client(ctx, cfg)
	case config.MediaStorageLocal, "":
		return NewLocalClient(cfg.LocalDir, "/uploads")
	default:
		return nil, fmt.Errorf("unknown media storage backend %q", cfg.Storage)
	}
}
