// Package storage wraps the S3-compatible object store holding trip images
// and hero media. Deletion is best-effort by contract: the database mutation
// that references media is authoritative, callers log and swallow cleanup
// failures.
package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStore is the media collaborator consumed by the domain services.
type ObjectStore interface {
	// Put uploads an object and returns its public URL.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	// PresignPut returns a pre-signed upload URL plus the public URL the
	// object will have once uploaded.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (uploadURL, publicURL string, err error)
	// Delete removes the object a public URL points at.
	Delete(ctx context.Context, url string) error
	// DeleteMany removes a batch of objects, continuing past individual
	// failures. It returns the number deleted and the first error seen.
	DeleteMany(ctx context.Context, urls []string) (int, error)
}
