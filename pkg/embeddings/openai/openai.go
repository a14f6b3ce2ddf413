// Package openai implements pkg/embeddings' Embedder against OpenAI-compatible
// embedding endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/papercomputeco/medrag/pkg/embeddings"
)

const (
	// DefaultEmbeddingModel is used when no model is configured.
	DefaultEmbeddingModel = "text-embedding-3-small"

	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// EmbedderConfig holds configuration for the OpenAI embedder.
type EmbedderConfig struct {
	// BaseURL overrides the API base (e.g. a local OpenAI-compatible server).
	BaseURL string

	// Model is the embedding model. Defaults to DefaultEmbeddingModel.
	Model string

	// APIKey is used directly when set. Otherwise it is read from APIKeyEnv.
	APIKey string

	// APIKeyEnv defaults to DefaultAPIKeyEnv.
	APIKeyEnv string
}

// Embedder wraps go-openai's embedding client.
type Embedder struct {
	client *goopenai.Client
	model  string
}

// NewEmbedder creates an embedder for the configured endpoint.
func NewEmbedder(cfg EmbedderConfig) (*Embedder, error) {
	key := cfg.APIKey
	if key == "" {
		env := cfg.APIKeyEnv
		if env == "" {
			env = DefaultAPIKeyEnv
		}
		key = os.Getenv(env)
		if key == "" {
			return nil, fmt.Errorf("%s environment variable not set", env)
		}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultEmbeddingModel
	}

	clientConfig := goopenai.DefaultConfig(key)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

// Embed converts text into a vector embedding.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", embeddings.ErrEmbedding)
	}

	vectors, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in one API call.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Model: goopenai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", embeddings.ErrEmbedding, err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d", embeddings.ErrEmbedding, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) {
			return nil, fmt.Errorf("%w: embedding index %d out of range", embeddings.ErrEmbedding, d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for i := range d.Embedding {
			v[i] = float32(d.Embedding[i])
		}
		vectors[d.Index] = v
	}

	for i, v := range vectors {
		if v == nil {
			return nil, errors.Join(embeddings.ErrEmbedding, fmt.Errorf("missing embedding for input %d", i))
		}
	}

	return vectors, nil
}

// Name returns the configured model.
func (e *Embedder) Name() string {
	return e.model
}

// Close is a no-op.
func (e *Embedder) Close() error {
	return nil
}

var _ embeddings.Embedder = (*Embedder)(nil)
