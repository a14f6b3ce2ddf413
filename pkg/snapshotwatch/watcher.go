// Package snapshotwatch reloads an index snapshot when its files change on
// disk, so a server picks up a fresh "medrag ingest" without restarting.
package snapshotwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events from one snapshot save.
const DefaultDebounce = 500 * time.Millisecond

// Config is the configuration for a Watcher.
type Config struct {
	// Files are the snapshot files to watch. Their parent directories must
	// exist.
	Files []string

	// Reload is called once per settled burst of changes.
	Reload func(ctx context.Context) error

	// Debounce defaults to DefaultDebounce
	Debounce time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Watcher watches snapshot files and triggers reloads.
type Watcher struct {
	config  Config
	files   map[string]struct{}
	watcher *fsnotify.Watcher
	logger  *zap.Logger
}

// New creates a Watcher and starts watching the files' directories.
func New(c Config) (*Watcher, error) {
	if len(c.Files) == 0 {
		return nil, errors.New("at least one file is required")
	}
	if c.Reload == nil {
		return nil, errors.New("reload func is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating snapshot watcher: %w", err)
	}

	// Snapshots are replaced by rename, so the directory is watched rather
	// than the files themselves.
	files := make(map[string]struct{}, len(c.Files))
	dirs := make(map[string]struct{})
	for _, f := range c.Files {
		clean := filepath.Clean(f)
		files[clean] = struct{}{}
		dirs[filepath.Dir(clean)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watching snapshot dir %s: %w", dir, err)
		}
	}

	return &Watcher{
		config:  c,
		files:   files,
		watcher: fw,
		logger:  c.Logger,
	}, nil
}

// Run delivers reloads until ctx is done or the watcher fails. Reload errors
// are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	timer := time.NewTimer(w.config.Debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; !watched {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("snapshot file changed",
				zap.String("file", event.Name),
				zap.String("op", event.Op.String()),
			)
			timer.Reset(w.config.Debounce)

		case <-timer.C:
			w.logger.Info("reloading index snapshot")
			if err := w.config.Reload(ctx); err != nil {
				w.logger.Error("snapshot reload failed", zap.Error(err))
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("snapshot watcher error: %w", err)
		}
	}
}
