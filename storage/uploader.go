package storage

import (
	"context"
	"io"
)

// FileUploader abstracts the object store used for logos and other media.
type FileUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
