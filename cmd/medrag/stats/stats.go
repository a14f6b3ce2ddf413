// Package statscmder provides the stats command that reports on the saved
// knowledge base snapshot.
package statscmder

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/cmd/medrag/stack"
	"github.com/papercomputeco/medrag/pkg/cliui"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/logger"
)

type statsCommander struct {
	cfg       *config.Config
	configDir string
	debug     bool

	logger *zap.Logger
}

const statsLongDesc string = `Show statistics for the saved knowledge base snapshot.

Reports the number of passages, the number of indexed vectors, the embedding
dimension and the embedding model. The two counts differ only when a snapshot
was loaded with one of its files missing.

Examples:
  medrag stats
  medrag stats --snapshot-provider sqlite`

const statsShortDesc string = "Show knowledge base statistics"

func NewStatsCmd() *cobra.Command {
	cmder := &statsCommander{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: statsShortDesc,
		Long:  statsLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = stack.LoadConfig(cmd, stack.IndexFlagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	stack.AddFlags(cmd, stack.IndexFlagKeys)

	return cmd
}

func (c *statsCommander) run(ctx context.Context, w io.Writer) error {
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

	if !s.Store.Load(ctx, s.SnapshotPath()) {
		fmt.Fprintf(w, "\n  %s\n\n", cliui.DimStyle.Render("No snapshot found. Run \"medrag ingest\" to build one."))
		return nil
	}

	stats := s.Store.Stats()
	fmt.Fprintf(w, "\n  %s %s\n\n",
		cliui.HeaderStyle.Render("Knowledge base:"),
		cliui.ValueStyle.Render(c.cfg.Snapshot.Provider+":"+s.SnapshotPath()),
	)
	cliui.KeyValues(w, [][2]string{
		{"Passages", strconv.Itoa(stats.TotalChunks)},
		{"Indexed", strconv.Itoa(stats.IndexSize)},
		{"Dimension", strconv.Itoa(stats.Dimension)},
		{"Model", stats.ModelName},
	})
	fmt.Fprintln(w)

	return nil
}
