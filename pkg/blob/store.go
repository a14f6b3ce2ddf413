// Package blob defines the durable byte-blob storage used for corpus snapshots.
package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no blob exists for a key.
var ErrNotFound = errors.New("blob not found")

// Store reads and writes opaque blobs keyed by path.
type Store interface {
	// Read returns the blob at key, or ErrNotFound.
	Read(ctx context.Context, key string) ([]byte, error)

	// Write replaces the blob at key in full.
	Write(ctx context.Context, key string, data []byte) error

	// Delete removes the blob at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	Close() error
}
