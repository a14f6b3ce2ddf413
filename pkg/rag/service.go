// Package rag wires the corpus pipeline, the index, retrieval and answer
// synthesis into the single Service that front ends talk to.
package rag

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/corpus/chunker"
	"github.com/papercomputeco/medrag/pkg/eventstream"
	"github.com/papercomputeco/medrag/pkg/index"
	"github.com/papercomputeco/medrag/pkg/llm"
	"github.com/papercomputeco/medrag/pkg/retriever"
)

// DefaultSnapshotPath is the blob key prefix of the corpus snapshot.
const DefaultSnapshotPath = "medical_index"

// ErrNoPassages is returned when ingestion produces nothing to index.
var ErrNoPassages = errors.New("corpus produced no passages")

// Config is the configuration for a Service.
type Config struct {
	Store     *index.Store
	Extractor corpus.Extractor
	Completer llm.Completer

	// Publisher receives answer telemetry. Optional.
	Publisher eventstream.Publisher

	// SourcePath is handed to the Extractor.
	SourcePath string

	// SnapshotPath defaults to DefaultSnapshotPath.
	SnapshotPath string

	Chunker   chunker.Options
	Threshold float32
	Model     string

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Service is the retrieval-and-answer facade.
type Service struct {
	config    *Config
	store     *index.Store
	retriever *retriever.Retriever
	synth     *answer.Synthesizer
	logger    *zap.Logger

	// rebuildMu serializes Bootstrap and Reprocess.
	rebuildMu sync.Mutex
}

// NewService creates a Service. The store is not initialized until Bootstrap
// or an explicit Store().Initialize call.
func NewService(c *Config) (*Service, error) {
	if c.Store == nil {
		return nil, errors.New("index store is required")
	}
	if c.Extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if c.Completer == nil {
		return nil, errors.New("completer is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.SnapshotPath == "" {
		c.SnapshotPath = DefaultSnapshotPath
	}

	r, err := retriever.New(retriever.Config{
		Index:     c.Store,
		Threshold: c.Threshold,
		Logger:    c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating retriever: %w", err)
	}

	synth, err := answer.New(answer.Config{
		Retriever: r,
		Completer: c.Completer,
		Model:     c.Model,
		Publisher: c.Publisher,
		Logger:    c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating synthesizer: %w", err)
	}

	return &Service{
		config:    c,
		store:     c.Store,
		retriever: r,
		synth:     synth,
		logger:    c.Logger,
	}, nil
}

// Store returns the underlying index store.
func (s *Service) Store() *index.Store {
	return s.store
}

// SnapshotPath returns the blob key prefix snapshots are saved under.
func (s *Service) SnapshotPath() string {
	return s.config.SnapshotPath
}

// ProcessCorpus normalizes and chunks raw text with the configured options.
func (s *Service) ProcessCorpus(raw string) []corpus.Passage {
	return Process(raw, s.config.Chunker)
}

// IndexAdd embeds and indexes passages atomically.
func (s *Service) IndexAdd(ctx context.Context, passages []corpus.Passage) error {
	return s.store.Add(ctx, passages)
}

// IndexSave writes the snapshot.
func (s *Service) IndexSave(ctx context.Context) error {
	return s.store.Save(ctx, s.config.SnapshotPath)
}

// IndexLoad loads the snapshot, reporting false on any failure.
func (s *Service) IndexLoad(ctx context.Context) bool {
	return s.store.Load(ctx, s.config.SnapshotPath)
}

// IndexStats reports index counts.
func (s *Service) IndexStats() index.Stats {
	return s.store.Stats()
}

// Answer runs the full pipeline. It never fails; errors become the fallback
// apology.
func (s *Service) Answer(ctx context.Context, query string) string {
	return s.synth.Answer(ctx, query)
}

// Synthesize runs the pipeline and exposes the loop outcome and typed errors.
func (s *Service) Synthesize(ctx context.Context, query string) (*answer.Outcome, error) {
	return s.synth.Synthesize(ctx, query)
}

// IsInDomain reports whether query should be routed to Answer.
func (s *Service) IsInDomain(query string) bool {
	return answer.IsInDomain(query)
}

// Search returns up to k ranked passages for query.
func (s *Service) Search(ctx context.Context, query string, k int) ([]retriever.Result, error) {
	return s.retriever.Retrieve(ctx, query, k)
}

// Bootstrap readies the index: it loads the snapshot when its graph is
// non-empty and matches its passages, and otherwise builds the index from the
// corpus source and saves it.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if err := s.store.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing index: %w", err)
	}

	if s.store.Load(ctx, s.config.SnapshotPath) {
		stats := s.store.Stats()
		if stats.IndexSize > 0 && stats.IndexSize == stats.TotalChunks {
			return nil
		}
		s.logger.Info("snapshot incomplete, rebuilding",
			zap.Int("total_chunks", stats.TotalChunks),
			zap.Int("index_size", stats.IndexSize),
		)
	}

	_, err := s.rebuild(ctx)
	return err
}

// Reprocess discards the index and rebuilds it from the corpus source,
// returning the number of passages indexed.
func (s *Service) Reprocess(ctx context.Context) (int, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if _, err := s.store.InitModel(ctx); err != nil {
		return 0, fmt.Errorf("initializing index: %w", err)
	}

	return s.rebuild(ctx)
}

// rebuild resets the store then extracts, processes, adds and saves.
func (s *Service) rebuild(ctx context.Context) (int, error) {
	raw, err := s.config.Extractor.Extract(ctx, s.config.SourcePath)
	if err != nil {
		return 0, fmt.Errorf("extracting corpus: %w", err)
	}

	passages := s.ProcessCorpus(raw)
	if len(passages) == 0 {
		return 0, ErrNoPassages
	}

	s.logger.Info("corpus processed",
		zap.String("source", s.config.SourcePath),
		zap.Int("passages", len(passages)),
	)

	s.store.Reset()
	if err := s.store.Initialize(ctx); err != nil {
		return 0, fmt.Errorf("initializing index: %w", err)
	}

	if err := s.store.Add(ctx, passages); err != nil {
		return 0, err
	}

	if err := s.IndexSave(ctx); err != nil {
		return 0, err
	}

	return len(passages), nil
}
