// Package storage provides the object-storage collaborator used by the file
// registry. The registry treats content as opaque bytes behind a key; this
// package owns durability.
package storage

import (
	"context"
	"io"
)

// BlobStore is the byte-storage contract consumed by the file registry.
type BlobStore interface {
	// Store writes content under key.
	Store(ctx context.Context, key string, content io.Reader) error

	// Read returns a stream of the content under key. The caller closes it.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content under key.
	Delete(ctx context.Context, key string) error
}
