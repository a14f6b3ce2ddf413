// Package stack assembles the configured medrag components for a command:
// snapshot storage, the embedder, the index store and, when a command needs
// answers, the completion service and answer event publisher.
package stack

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/cmd/medrag/sqlitepath"
	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/blob/s3"
	blobutils "github.com/papercomputeco/medrag/pkg/blob/utils"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/corpus/chunker"
	"github.com/papercomputeco/medrag/pkg/dotdir"
	"github.com/papercomputeco/medrag/pkg/embeddings"
	embeddingutils "github.com/papercomputeco/medrag/pkg/embeddings/utils"
	"github.com/papercomputeco/medrag/pkg/eventstream"
	eventstreamutils "github.com/papercomputeco/medrag/pkg/eventstream/utils"
	"github.com/papercomputeco/medrag/pkg/index"
	"github.com/papercomputeco/medrag/pkg/llm"
	llmutils "github.com/papercomputeco/medrag/pkg/llm/utils"
	"github.com/papercomputeco/medrag/pkg/rag"
)

// LoadConfig resolves the config for cmd with flag > env > file > default
// precedence. flagKeys name the registry flags cmd has registered.
func LoadConfig(cmd *cobra.Command, flagKeys []string) (*config.Config, error) {
	configDir, _ := cmd.Flags().GetString("config-dir")

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	config.BindRegisteredFlags(v, cmd, config.MedragFlags, flagKeys)

	return config.FromViper(v), nil
}

// Stack holds the components built from one Config.
type Stack struct {
	Config   *config.Config
	Logger   *zap.Logger
	Blobs    blob.Store
	Embedder embeddings.Embedder
	Store    *index.Store

	// SnapshotRoot is the fs provider root, empty for other providers.
	SnapshotRoot string

	completer llm.Completer
	publisher eventstream.Publisher
}

// New builds the snapshot store, embedder and index store.
func New(ctx context.Context, cfg *config.Config, configDir string, logger *zap.Logger) (*Stack, error) {
	s := &Stack{
		Config: cfg,
		Logger: logger,
	}

	blobs, root, err := newBlobStore(ctx, cfg, configDir)
	if err != nil {
		return nil, err
	}
	s.Blobs = blobs
	s.SnapshotRoot = root

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	s.Embedder = embedder

	store, err := index.NewStore(&index.Config{
		Embedder:       embedder,
		Blobs:          blobs,
		Dimensions:     int(cfg.Embedding.Dimensions),
		M:              int(cfg.Index.M),
		EfConstruction: int(cfg.Index.EfConstruction),
		EfSearch:       int(cfg.Index.EfSearch),
		BatchSize:      int(cfg.Index.BatchSize),
		Logger:         logger,
	})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating index store: %w", err)
	}
	s.Store = store

	logger.Debug("stack ready",
		zap.String("snapshot_provider", cfg.Snapshot.Provider),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.String("embedding_model", cfg.Embedding.Model),
	)

	return s, nil
}

// ChunkerOptions returns the chunking options from the corpus config.
func (s *Stack) ChunkerOptions() chunker.Options {
	return chunker.Options{
		ChunkSize:    int(s.Config.Corpus.ChunkSize),
		ChunkOverlap: int(s.Config.Corpus.ChunkOverlap),
		Source:       s.Config.Corpus.SourceLabel,
	}
}

// SnapshotPath returns the snapshot key prefix.
func (s *Stack) SnapshotPath() string {
	if s.Config.Snapshot.Path == "" {
		return rag.DefaultSnapshotPath
	}
	return s.Config.Snapshot.Path
}

// Service builds the completion service and publisher and returns the
// pipeline over the stack's index store. They are closed by Close.
func (s *Stack) Service() (*rag.Service, error) {
	cfg := s.Config

	completer, err := llmutils.NewCompleter(&llmutils.NewCompleterOpts{
		ProviderType: cfg.Completion.Provider,
		TargetURL:    cfg.Completion.Target,
		APIKeyEnv:    cfg.Completion.APIKeyEnv,
		Logger:       s.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating completer: %w", err)
	}
	s.completer = completer

	publisher, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: cfg.EventStream.Provider,
		Brokers:      cfg.EventStream.Brokers,
		Topic:        cfg.EventStream.Topic,
		NumWorkers:   cfg.EventStream.Workers,
		QueueSize:    cfg.EventStream.QueueSize,
		Logger:       s.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating answer publisher: %w", err)
	}
	s.publisher = publisher

	return rag.NewService(&rag.Config{
		Store:        s.Store,
		Extractor:    corpus.NewTextFileExtractor(),
		Completer:    completer,
		Publisher:    publisher,
		SourcePath:   cfg.Corpus.SourcePath,
		SnapshotPath: s.SnapshotPath(),
		Chunker:      s.ChunkerOptions(),
		Threshold:    float32(cfg.Retrieval.Threshold),
		Model:        cfg.Completion.Model,
		Logger:       s.Logger,
	})
}

// Close releases every component built so far. The publisher is closed
// first so queued events drain before the process exits.
func (s *Stack) Close() error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.completer != nil {
		errs = append(errs, s.completer.Close())
	}
	if s.Embedder != nil {
		errs = append(errs, s.Embedder.Close())
	}
	if s.Blobs != nil {
		errs = append(errs, s.Blobs.Close())
	}
	return errors.Join(errs...)
}

func newBlobStore(ctx context.Context, cfg *config.Config, configDir string) (blob.Store, string, error) {
	ddm := dotdir.NewManager()
	opts := &blobutils.NewStoreOpts{ProviderType: cfg.Snapshot.Provider}

	switch cfg.Snapshot.Provider {
	case "", "fs":
		root, err := ddm.SnapshotDir(configDir)
		if err != nil {
			return nil, "", fmt.Errorf("resolving snapshot dir: %w", err)
		}
		opts.Root = root
	case "sqlite":
		target, err := ddm.Target(configDir)
		if err != nil {
			return nil, "", fmt.Errorf("resolving config dir: %w", err)
		}
		opts.SQLitePath = sqlitepath.ResolveSQLitePath(cfg.Snapshot.SQLitePath, target)
	case "s3":
		opts.S3 = s3.Config{
			Endpoint:        cfg.Snapshot.S3Endpoint,
			Bucket:          cfg.Snapshot.S3Bucket,
			Region:          cfg.Snapshot.S3Region,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			UseSSL:          cfg.Snapshot.S3UseSSL,
		}
	}

	store, err := blobutils.NewStore(ctx, opts)
	if err != nil {
		return nil, "", fmt.Errorf("creating snapshot store: %w", err)
	}
	return store, opts.Root, nil
}
