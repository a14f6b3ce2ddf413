// Package retriever turns a query into ranked, relevance-filtered passages and
// formats them as prompt context.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/index"
)

const (
	// DefaultThreshold is the relevance floor. Hits scoring at or below it
	// are dropped.
	DefaultThreshold float32 = 0.3

	// NoContextSentinel replaces the context block when nothing clears the
	// relevance floor.
	NoContextSentinel = "No relevant medical information found in the knowledge base."
)

var contextSeparator = "\n\n" + strings.Repeat("=", 50) + "\n\n"

// ErrInvalidBreadth is returned for k < 1.
var ErrInvalidBreadth = errors.New("retrieval breadth must be at least 1")

// Index is the subset of index.Store the retriever reads from.
type Index interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Search(ctx context.Context, query []float32, k int) ([]index.Hit, error)
	Passage(position int) (corpus.Passage, bool)
}

// Result is a retrieved passage with its similarity and 1-based rank.
type Result struct {
	Passage corpus.Passage `json:"passage"`
	Score   float32        `json:"score"`
	Rank    int            `json:"rank"`
}

// Config is the configuration for a Retriever.
type Config struct {
	Index Index

	// Threshold defaults to DefaultThreshold when zero.
	Threshold float32

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Retriever searches the passage index.
type Retriever struct {
	index     Index
	threshold float32
	logger    *zap.Logger
}

// New creates a Retriever.
func New(c Config) (*Retriever, error) {
	if c.Index == nil {
		return nil, errors.New("index is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	threshold := c.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	return &Retriever{
		index:     c.Index,
		threshold: threshold,
		logger:    c.Logger,
	}, nil
}

// Retrieve returns at most k passages scoring above the threshold, best first.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]Result, error) {
	if k < 1 {
		return nil, ErrInvalidBreadth
	}

	vectors, err := r.index.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: expected 1 vector, got %d", len(vectors))
	}

	queryVec := vectors[0]
	index.NormalizeL2(queryVec)

	hits, err := r.index.Search(ctx, queryVec, k)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Score <= r.threshold {
			continue
		}

		passage, ok := r.index.Passage(hit.Position)
		if !ok {
			r.logger.Warn("search hit has no passage", zap.Int("position", hit.Position))
			continue
		}

		results = append(results, Result{Passage: passage, Score: hit.Score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > k {
		results = results[:k]
	}
	for i := range results {
		results[i].Rank = i + 1
	}

	r.logger.Debug("retrieved passages",
		zap.Int("k", k),
		zap.Int("hits", len(hits)),
		zap.Int("kept", len(results)),
	)

	return results, nil
}

// FormatContext renders results for prompt injection, or the sentinel when
// there are none.
func FormatContext(results []Result) string {
	if len(results) == 0 {
		return NoContextSentinel
	}

	blocks := make([]string, len(results))
	for i, res := range results {
		blocks[i] = fmt.Sprintf("[Source %d - Relevance: %.2f]\n%s", res.Rank, res.Score, res.Passage.Text)
	}
	return strings.Join(blocks, contextSeparator)
}
