// Package servecmder provides the serve command that runs the HTTP and MCP
// server over the knowledge base.
package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/api"
	"github.com/papercomputeco/medrag/cmd/medrag/stack"
	"github.com/papercomputeco/medrag/pkg/blob/fs"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/index"
	"github.com/papercomputeco/medrag/pkg/logger"
	"github.com/papercomputeco/medrag/pkg/rag"
	"github.com/papercomputeco/medrag/pkg/snapshotwatch"
)

type ServeCommander struct {
	cfg       *config.Config
	configDir string
	noWatch   bool
	debug     bool

	logger *zap.Logger
}

const serveLongDesc string = `Run the medrag server.

The knowledge base is loaded from the snapshot store, or built from the corpus
when no snapshot exists yet. The server then exposes:
  GET  /ping         Liveness check
  GET  /health       Index statistics
  POST /chat         Answer a medical question
  GET  /v1/search    Ranked passages for a query
  POST /reprocess    Rebuild the index from the corpus
  /mcp               MCP tools medical_answer and medical_search

With the fs snapshot provider the snapshot files are watched, and the index
is reloaded when "medrag ingest" replaces them. Use --no-watch to disable.`

const serveShortDesc string = "Run the medrag server"

var flagKeys = append([]string{config.FlagAPIListen}, stack.ServiceFlagKeys...)

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = stack.LoadConfig(cmd, flagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	stack.AddFlags(cmd, flagKeys)
	cmd.Flags().BoolVar(&cmder.noWatch, "no-watch", false, "Do not reload the index when the snapshot changes")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := stack.New(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.Service()
	if err != nil {
		return err
	}

	if err := svc.Bootstrap(ctx); err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	stats := svc.IndexStats()
	c.logger.Info("knowledge base ready",
		zap.Int("total_chunks", stats.TotalChunks),
		zap.Int("index_size", stats.IndexSize),
		zap.String("embedder", stats.ModelName),
	)

	apiServer, err := api.NewServer(api.Config{
		ListenAddr:       c.cfg.API.Listen,
		Model:            c.cfg.Completion.Model,
		MaxMessageLength: int(c.cfg.API.MaxMessageLength),
	}, svc, c.logger)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	// Channel to capture errors from goroutines
	errChan := make(chan error, 2)

	go func() {
		if err := apiServer.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	if watcher, err := c.newWatcher(s, svc); err != nil {
		c.logger.Warn("snapshot watching disabled", zap.Error(err))
	} else if watcher != nil {
		go func() {
			if err := watcher.Run(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		_ = apiServer.Shutdown()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return apiServer.Shutdown()
	}
}

// newWatcher returns nil when the snapshot does not live on the local
// filesystem or watching is disabled.
func (c *ServeCommander) newWatcher(s *stack.Stack, svc *rag.Service) (*snapshotwatch.Watcher, error) {
	if c.noWatch {
		return nil, nil
	}

	fsStore, ok := s.Blobs.(*fs.Store)
	if !ok {
		return nil, nil
	}

	return snapshotwatch.New(snapshotwatch.Config{
		Files: []string{
			fsStore.Path(s.SnapshotPath() + index.GraphSuffix),
			fsStore.Path(s.SnapshotPath() + index.SideSuffix),
		},
		Reload: func(ctx context.Context) error {
			if !svc.IndexLoad(ctx) {
				return errors.New("snapshot could not be loaded, keeping the current index")
			}
			return nil
		},
		Logger: c.logger,
	})
}
