// Package ingestcmder provides the ingest command that builds the knowledge
// base from the corpus document.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/cmd/medrag/stack"
	"github.com/papercomputeco/medrag/pkg/cliui"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/corpus"
	"github.com/papercomputeco/medrag/pkg/logger"
	"github.com/papercomputeco/medrag/pkg/rag"
)

type ingestCommander struct {
	cfg       *config.Config
	configDir string
	debug     bool

	logger *zap.Logger
}

const ingestLongDesc string = `Build the medical knowledge base from the corpus document.

The corpus is a plain UTF-8 text dump of the encyclopedia. It is normalized,
split into overlapping passages, embedded and indexed, and the index snapshot
is saved to the configured snapshot store. An existing snapshot is replaced.

Examples:
  medrag ingest
  medrag ingest --source ./medical_encyclopedia.txt
  medrag ingest --snapshot-provider sqlite --embedding-model nomic-embed-text`

const ingestShortDesc string = "Build the knowledge base from the corpus"

var flagKeys = append([]string{config.FlagSource}, stack.IndexFlagKeys...)

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
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
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context())
		},
	}

	stack.AddFlags(cmd, flagKeys)

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	s, err := stack.New(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	source := c.cfg.Corpus.SourcePath
	snapshotPath := s.SnapshotPath()
	fmt.Printf("\n  %s %s\n\n", cliui.HeaderStyle.Render("Ingesting"), cliui.ValueStyle.Render(source))

	var (
		raw       string
		passages  []corpus.Passage
		dimension int
	)

	if err := cliui.Step(os.Stdout, "Reading corpus", func() error {
		raw, err = corpus.NewTextFileExtractor().Extract(ctx, source)
		return err
	}); err != nil {
		return err
	}

	if err := cliui.Step(os.Stdout, "Normalizing and chunking", func() error {
		passages = rag.Process(raw, s.ChunkerOptions())
		if len(passages) == 0 {
			return rag.ErrNoPassages
		}
		return nil
	}); err != nil {
		return err
	}

	if err := cliui.Step(os.Stdout, "Loading embedding model", func() error {
		dimension, err = s.Store.InitModel(ctx)
		return err
	}); err != nil {
		return err
	}

	if err := cliui.Step(os.Stdout, fmt.Sprintf("Embedding %d passages", len(passages)), func() error {
		s.Store.Reset()
		if err := s.Store.Initialize(ctx); err != nil {
			return err
		}
		return s.Store.Add(ctx, passages)
	}); err != nil {
		return err
	}

	if err := cliui.Step(os.Stdout, "Saving snapshot", func() error {
		return s.Store.Save(ctx, snapshotPath)
	}); err != nil {
		return err
	}

	stats := s.Store.Stats()
	fmt.Println()
	cliui.KeyValues(os.Stdout, [][2]string{
		{"Passages", strconv.Itoa(stats.TotalChunks)},
		{"Indexed", strconv.Itoa(stats.IndexSize)},
		{"Dimension", strconv.Itoa(dimension)},
		{"Model", stats.ModelName},
		{"Snapshot", c.cfg.Snapshot.Provider + ":" + snapshotPath},
	})
	fmt.Println()

	return nil
}
