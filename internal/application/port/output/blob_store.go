package output

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned by BlobStore.Get for a missing key
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore is the interface for flat key/value object storage
// Supports both local filesystem and cloud storage (S3)
type BlobStore interface {
	// Put writes or replaces the object at key
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads the object at key
	Get(ctx context.Context, key string) ([]byte, error)

	// List returns every key below prefix, in lexical order
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the object at key and reports whether it existed
	Delete(ctx context.Context, key string) (bool, error)

	// Location describes where objects live (e.g. s3://bucket/prefix)
	Location() string
}
