package index

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"

	"github.com/coder/hnsw"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/blob"
	"github.com/papercomputeco/medrag/pkg/corpus"
)

const (
	snapshotVersion = 1

	// GraphSuffix is appended to the snapshot path for the graph blob.
	GraphSuffix = ".hnsw"

	// SideSuffix is appended to the snapshot path for the passage blob.
	SideSuffix = ".gob"
)

// sideFile is the gob-encoded companion of the graph export.
type sideFile struct {
	Version   int
	ModelName string
	Dimension int
	Passages  []corpus.Passage
}

// Save writes the full store state under path. The graph blob is written only
// when the graph holds vectors; otherwise any stale graph blob is removed.
func (s *Store) Save(ctx context.Context, path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	if !s.modelReady {
		s.mu.RUnlock()
		return ErrNotInitialized
	}

	var graphBuf bytes.Buffer
	hasGraph := s.graph != nil && s.graph.Len() > 0
	if hasGraph {
		if err := s.graph.Export(&graphBuf); err != nil {
			s.mu.RUnlock()
			return fmt.Errorf("exporting index graph: %w", err)
		}
	}

	side := sideFile{
		Version:   snapshotVersion,
		ModelName: s.config.Embedder.Name(),
		Dimension: s.dimension,
		Passages:  append([]corpus.Passage(nil), s.passages...),
	}
	s.mu.RUnlock()

	var sideBuf bytes.Buffer
	if err := gob.NewEncoder(&sideBuf).Encode(side); err != nil {
		return fmt.Errorf("encoding index side file: %w", err)
	}

	if hasGraph {
		if err := s.config.Blobs.Write(ctx, path+GraphSuffix, graphBuf.Bytes()); err != nil {
			return fmt.Errorf("saving index graph: %w", err)
		}
	} else if err := s.config.Blobs.Delete(ctx, path+GraphSuffix); err != nil {
		return fmt.Errorf("removing stale index graph: %w", err)
	}

	if err := s.config.Blobs.Write(ctx, path+SideSuffix, sideBuf.Bytes()); err != nil {
		return fmt.Errorf("saving index side file: %w", err)
	}

	s.logger.Info("index saved",
		zap.String("path", path),
		zap.Int("total_chunks", len(side.Passages)),
		zap.Bool("graph", hasGraph),
	)

	return nil
}

// LoadSnapshot replaces the store state with the snapshot under path. Each
// blob is decoded fully before anything is installed. A missing graph blob
// leaves the store without a graph and a missing side blob leaves it without
// passages; both missing is blob.ErrNotFound.
func (s *Store) LoadSnapshot(ctx context.Context, path string) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	dim, err := s.InitModel(ctx)
	if err != nil {
		return err
	}

	graph, err := s.readGraph(ctx, path)
	if err != nil {
		return err
	}

	side, err := s.readSide(ctx, path)
	if err != nil {
		return err
	}

	if graph == nil && side == nil {
		return fmt.Errorf("%w: no snapshot at %s", blob.ErrNotFound, path)
	}

	if side != nil {
		if side.Dimension != dim {
			return fmt.Errorf("%w: snapshot has %d, model produces %d", ErrDimensionMismatch, side.Dimension, dim)
		}
		if graph != nil && graph.Len() != len(side.Passages) {
			return fmt.Errorf("%w: graph holds %d vectors for %d passages",
				ErrSnapshotCorrupt, graph.Len(), len(side.Passages))
		}
	}

	s.mu.Lock()
	s.graph = graph
	s.passages = nil
	if side != nil {
		s.passages = side.Passages
	}
	s.mu.Unlock()

	if graph == nil {
		s.logger.Warn("index graph missing from snapshot", zap.String("path", path+GraphSuffix))
	}
	if side == nil {
		s.logger.Warn("index side file missing from snapshot", zap.String("path", path+SideSuffix))
	}

	return nil
}

// Load wraps LoadSnapshot, logging the cause and returning false on failure.
func (s *Store) Load(ctx context.Context, path string) bool {
	if err := s.LoadSnapshot(ctx, path); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			s.logger.Info("no index snapshot found", zap.String("path", path))
		} else {
			s.logger.Error("failed to load index snapshot",
				zap.String("path", path),
				zap.Error(err),
			)
		}
		return false
	}

	stats := s.Stats()
	s.logger.Info("index loaded",
		zap.String("path", path),
		zap.Int("total_chunks", stats.TotalChunks),
		zap.Int("index_size", stats.IndexSize),
	)
	return true
}

func (s *Store) readGraph(ctx context.Context, path string) (*hnsw.Graph[int], error) {
	data, err := s.config.Blobs.Read(ctx, path+GraphSuffix)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index graph: %w", err)
	}

	graph, err := s.importGraph(data)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding index graph: %v", ErrSnapshotCorrupt, err)
	}
	s.configureGraph(graph)

	return graph, nil
}

// importGraph decodes an exported graph. hnsw trusts the lengths encoded in
// the blob, so a corrupt blob can panic inside Import.
func (s *Store) importGraph(data []byte) (graph *hnsw.Graph[int], err error) {
	defer func() {
		if r := recover(); r != nil {
			graph, err = nil, fmt.Errorf("%v", r)
		}
	}()

	graph = s.newGraph()
	if err := graph.Import(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return graph, nil
}

func (s *Store) readSide(ctx context.Context, path string) (*sideFile, error) {
	data, err := s.config.Blobs.Read(ctx, path+SideSuffix)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading index side file: %w", err)
	}

	side := &sideFile{}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(side); err != nil {
		return nil, fmt.Errorf("%w: decoding side file: %v", ErrSnapshotCorrupt, err)
	}
	if side.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported side file version %d", ErrSnapshotCorrupt, side.Version)
	}

	return side, nil
}
