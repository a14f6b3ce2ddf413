package testutils

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
)

// DefaultMockDimension is the vector width produced by MockEmbedder.
const DefaultMockDimension = 16

// MockEmbedder is a test embedder that returns predictable embeddings.
// Unknown texts hash to a bag-of-words vector, so texts sharing words are
// similar.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// Dimension is the vector width for hashed embeddings.
	Dimension int

	// ModelName is reported by Name.
	ModelName string

	mu         sync.Mutex
	batchCalls int
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
		Dimension:  DefaultMockDimension,
		ModelName:  "mock-embedder",
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailOn != "" && text == m.FailOn {
		return nil, fmt.Errorf("mock embedding failure for: %s", text)
	}

	if emb, ok := m.Embeddings[text]; ok {
		out := make([]float32, len(emb))
		copy(out, emb)
		return out, nil
	}

	return m.hashed(text), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()

	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// BatchCalls returns how many times EmbedBatch was invoked.
func (m *MockEmbedder) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

func (m *MockEmbedder) Name() string {
	return m.ModelName
}

func (m *MockEmbedder) Close() error {
	return nil
}

func (m *MockEmbedder) hashed(text string) []float32 {
	dim := m.Dimension
	if dim <= 0 {
		dim = DefaultMockDimension
	}

	v := make([]float32, dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(word, ".,;:!?")))
		v[h.Sum32()%uint32(dim)]++
	}
	return v
}
