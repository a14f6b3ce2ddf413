// Package index owns the passage embedding index: an HNSW graph over
// L2-normalized passage vectors and the passages they point at.
//
// A Store is constructed uninitialized and must be initialized before use:
//
//	store, _ := index.NewStore(&index.Config{...})
//	_ = store.Initialize(ctx)
//	_ = store.Add(ctx, passages)
//
// Mutating operations (Add, Save, LoadSnapshot, InitIndex, Reset) are
// serialized against each other. Readers share a read lock and only wait for
// the short install step of a writer.
package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/coder/hnsw"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/embeddings"
)

const (
	// DefaultM is the maximum number of neighbors per graph node.
	DefaultM = 32

	// DefaultEfConstruction is the candidate breadth used while inserting.
	DefaultEfConstruction = 40

	// DefaultEfSearch is the candidate breadth used while querying.
	DefaultEfSearch = 64

	// DefaultBatchSize bounds how many texts are embedded per request.
	DefaultBatchSize = 32

	modelProbeText = "embedding dimension probe"
)

// Config is the configuration for a Store.
type Config struct {
	// Embedder produces passage and query vectors.
	Embedder embeddings.Embedder

	// Blobs persists snapshots.
	Blobs blob.Store

	// Dimensions, when non-zero, must match the embedder's output width.
	Dimensions int

	M              int
	EfConstruction int
	EfSearch       int
	BatchSize      int

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Hit is a raw search result: a graph position and its cosine similarity.
type Hit struct {
	Position int
	Score    float32
}

// Stats summarizes the index contents.
type Stats struct {
	TotalChunks int    `json:"total_chunks"`
	IndexSize   int    `json:"index_size"`
	Dimension   int    `json:"dimension"`
	ModelName   string `json:"model_name"`
}

// Store is the process-wide passage index.
type Store struct {
	config *Config
	logger *zap.Logger

	// writeMu serializes mutating operations for their whole duration.
	writeMu sync.Mutex

	// mu guards the fields below.
	mu         sync.RWMutex
	modelReady bool
	dimension  int
	graph      *hnsw.Graph[int]
	passages   []corpus.Passage
}

// NewStore creates an uninitialized Store.
func NewStore(c *Config) (*Store, error) {
	if c.Embedder == nil {
		return nil, errors.New("embedder is required")
	}
	if c.Blobs == nil {
		return nil, errors.New("blob store is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	if c.M < 2 {
		c.M = DefaultM
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = DefaultEfConstruction
	}
	if c.EfSearch <= 0 {
		c.EfSearch = DefaultEfSearch
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}

	return &Store{
		config: c,
		logger: c.Logger,
	}, nil
}

// InitModel probes the embedder once and records its dimension. Later calls
// return the recorded dimension without touching the embedder.
func (s *Store) InitModel(ctx context.Context) (int, error) {
	s.mu.RLock()
	if s.modelReady {
		dim := s.dimension
		s.mu.RUnlock()
		return dim, nil
	}
	s.mu.RUnlock()

	probe, err := s.config.Embedder.EmbedBatch(ctx, []string{modelProbeText})
	if err != nil {
		return 0, fmt.Errorf("initializing embedding model: %w", wrapEmbedding(err))
	}
	if len(probe) != 1 || len(probe[0]) == 0 {
		return 0, fmt.Errorf("%w: model probe returned no vector", embeddings.ErrEmbedding)
	}

	dim := len(probe[0])
	if s.config.Dimensions != 0 && s.config.Dimensions != dim {
		return 0, fmt.Errorf("%w: configured %d, model produces %d",
			ErrDimensionMismatch, s.config.Dimensions, dim)
	}

	s.mu.Lock()
	if !s.modelReady {
		s.dimension = dim
		s.modelReady = true
	}
	dim = s.dimension
	s.mu.Unlock()

	s.logger.Debug("embedding model initialized",
		zap.String("model", s.config.Embedder.Name()),
		zap.Int("dimension", dim),
	)

	return dim, nil
}

// InitIndex creates the empty graph. The model must be initialized first and
// the graph must not already exist; Reset tears it down.
func (s *Store) InitIndex() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.modelReady {
		return ErrNotInitialized
	}
	if s.graph != nil {
		return ErrIndexExists
	}

	s.graph = s.newGraph()
	return nil
}

// Initialize runs InitModel and creates the graph if none exists.
func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.InitModel(ctx); err != nil {
		return err
	}

	if err := s.InitIndex(); err != nil && !errors.Is(err, ErrIndexExists) {
		return err
	}
	return nil
}

// Reset drops the graph and every passage. The model stays initialized.
func (s *Store) Reset() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.graph = nil
	s.passages = nil
	s.mu.Unlock()

	s.logger.Info("index reset")
}

// Embed returns one vector per text, embedding in batches of BatchSize.
func (s *Store) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	s.mu.RLock()
	ready, dim := s.modelReady, s.dimension
	s.mu.RUnlock()
	if !ready {
		return nil, ErrNotInitialized
	}

	vectors := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.config.BatchSize {
		end := min(start+s.config.BatchSize, len(texts))

		batch, err := s.config.Embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, wrapEmbedding(err)
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("%w: batch returned %d vectors for %d texts",
				embeddings.ErrEmbedding, len(batch), end-start)
		}

		for _, v := range batch {
			if len(v) != dim {
				return nil, fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, dim, len(v))
			}
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

// Add embeds and indexes passages. Every vector is computed before the graph
// is touched, so a failure leaves the store exactly as it was.
func (s *Store) Add(ctx context.Context, passages []corpus.Passage) error {
	if len(passages) == 0 {
		return nil
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	ready := s.modelReady && s.graph != nil
	graphLen, passageLen := 0, len(s.passages)
	if ready {
		graphLen = s.graph.Len()
	}
	s.mu.RUnlock()
	if !ready {
		return ErrNotInitialized
	}
	// Positions are appended after the last passage, so the two must agree.
	if graphLen != passageLen {
		return fmt.Errorf("%w: graph holds %d vectors for %d passages", ErrIndexInconsistent, graphLen, passageLen)
	}

	vectors, err := s.Embed(ctx, corpus.Texts(passages))
	if err != nil {
		return fmt.Errorf("adding passages: %w", err)
	}
	for i, v := range vectors {
		if !NormalizeL2(v) {
			return fmt.Errorf("adding passages: %w: zero vector for passage %d", embeddings.ErrEmbedding, i)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := len(s.passages)
	nodes := make([]hnsw.Node[int], len(vectors))
	for i, v := range vectors {
		nodes[i] = hnsw.MakeNode(base+i, v)
	}

	// coder/hnsw has no separate construction breadth, so EfSearch carries
	// efConstruction for the duration of the insert.
	s.graph.EfSearch = s.config.EfConstruction
	s.graph.Add(nodes...)
	s.graph.EfSearch = s.config.EfSearch

	s.passages = append(s.passages, passages...)

	s.logger.Info("passages indexed",
		zap.Int("added", len(passages)),
		zap.Int("total_chunks", len(s.passages)),
	)

	return nil
}

// Search returns up to k positions nearest to query by cosine similarity,
// best first. query must already be L2-normalized. An empty or missing graph
// yields no hits. A store whose model was never initialized returns
// ErrNotInitialized, not an empty result.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.modelReady {
		return nil, ErrNotInitialized
	}
	if k <= 0 || s.graph == nil || s.graph.Len() == 0 {
		return []Hit{}, nil
	}
	if len(query) != s.dimension {
		return nil, fmt.Errorf("%w: query has %d, index has %d", ErrDimensionMismatch, len(query), s.dimension)
	}

	nodes := s.graph.Search(query, k)
	hits := make([]Hit, 0, len(nodes))
	for _, n := range nodes {
		hits = append(hits, Hit{Position: n.Key, Score: dot(query, n.Value)})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}

	return hits, nil
}

// Passage returns the passage stored at a graph position.
func (s *Store) Passage(position int) (corpus.Passage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if position < 0 || position >= len(s.passages) {
		return corpus.Passage{}, false
	}
	return s.passages[position], true
}

// Stats reports passage and graph counts. They differ only if a snapshot was
// loaded with one of its files missing.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalChunks: len(s.passages),
		Dimension:   s.dimension,
		ModelName:   s.config.Embedder.Name(),
	}
	if s.graph != nil {
		stats.IndexSize = s.graph.Len()
	}
	return stats
}

func (s *Store) newGraph() *hnsw.Graph[int] {
	g := hnsw.NewGraph[int]()
	s.configureGraph(g)
	return g
}

func (s *Store) configureGraph(g *hnsw.Graph[int]) {
	g.M = s.config.M
	g.Ml = 1 / math.Log(float64(s.config.M))
	g.EfSearch = s.config.EfSearch
	g.Distance = hnsw.CosineDistance
}

// NormalizeL2 scales v to unit length in place. Zero vectors have no
// direction; they are left alone and NormalizeL2 reports false.
func NormalizeL2(v []float32) bool {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return false
	}
	inv := float32(1 / math.Sqrt(sum))
	for i := range v {
		v[i] *= inv
	}
	return true
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func wrapEmbedding(err error) error {
	if errors.Is(err, embeddings.ErrEmbedding) {
		return err
	}
	return fmt.Errorf("%w: %w", embeddings.ErrEmbedding, err)
}
