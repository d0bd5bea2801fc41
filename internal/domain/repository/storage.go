package repository

import (
	"context"
	"io"
)

// ObjectStorage defines the interface for the namespace-scoped blob store.
// Implementations should be provided by the infrastructure layer (e.g., MinIO, S3).
type ObjectStorage interface {
	// Upload stores an object under key with a single synchronous write.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Delete removes an object. Deleting a key that does not exist is not
	// an error; the desired end state already holds.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists in the storage.
	Exists(ctx context.Context, key string) (bool, error)

	// List returns the keys of all objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// PublicURL returns the deterministic public URL for a key.
	PublicURL(key string) string

	// KeyFromURL recovers the storage key from a public URL produced by
	// PublicURL. Returns an error if the URL does not address this
	// storage namespace.
	KeyFromURL(publicURL string) (string, error)
}
