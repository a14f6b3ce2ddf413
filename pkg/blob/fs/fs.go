// Package fs implements blob.Store on the local filesystem.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/medrag/pkg/blob"
)

// Store writes each blob to its key as a file path. Relative keys resolve
// against the root directory.
type Store struct {
	root string
}

// NewStore creates a filesystem store rooted at root. An empty root uses the
// working directory.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Path returns the file path backing key.
func (s *Store) Path(key string) string {
	if filepath.IsAbs(key) || s.root == "" {
		return key
	}
	return filepath.Join(s.root, key)
}

func (s *Store) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", blob.ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	return data, nil
}

// Write stages the blob in a temp file next to the target and renames it into
// place, so readers never observe a partial file.
func (s *Store) Write(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := s.Path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp blob: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp blob: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing temp blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp blob: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming blob into place: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing blob %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return nil
}

var _ blob.Store = (*Store)(nil)
