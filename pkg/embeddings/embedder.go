// Package embeddings defines the text embedding collaborator used to build
// and query the passage index.
package embeddings

import (
	"context"
	"errors"
)

// ErrEmbedding wraps every failure raised while producing embeddings.
var ErrEmbedding = errors.New("embedding failed")

// Embedder provides text embedding capabilities.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts texts into vectors, preserving input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Name is the model identifier reported in index stats.
	Name() string

	// Close releases any resources held by the embedder.
	Close() error
}
