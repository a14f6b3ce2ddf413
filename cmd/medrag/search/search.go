// Package searchcmder provides the search command that shows the passages a
// query retrieves.
package searchcmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/api"
	"github.com/papercomputeco/medrag/cmd/medrag/stack"
	"github.com/papercomputeco/medrag/pkg/cliui"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/logger"
	"github.com/papercomputeco/medrag/pkg/retriever"
	"github.com/papercomputeco/medrag/pkg/utils"
)

const previewLength = 160

type searchCommander struct {
	query string
	topK  int
	quiet bool
	local bool

	cfg       *config.Config
	configDir string
	debug     bool
	logger    *zap.Logger
}

const searchLongDesc string = `Search the medical knowledge base.

Returns the passages most relevant to the query text, best first, with their
cosine similarity. Passages at or below the relevance threshold are omitted.

By default the search runs against a medrag API server (see "medrag serve").
Use --local to search the local snapshot directly instead.

Use --quiet to output only passage ids, one per line.

Examples:
  medrag search "chest pain"
  medrag search "treatment for anemia" --top 10
  medrag search "fever in children" --local
  medrag search "migraine" --api-target http://localhost:8081`

const searchShortDesc string = "Search the knowledge base"

var flagKeys = append([]string{config.FlagAPITarget}, stack.IndexFlagKeys...)

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = stack.LoadConfig(cmd, flagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = strings.Join(args, " ")

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 5, "Number of results to return")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only passage ids, one per line (for piping)")
	cmd.Flags().BoolVar(&cmder.local, "local", false, "Search the local snapshot instead of the API server")
	stack.AddFlags(cmd, flagKeys)

	return cmd
}

func (c *searchCommander) run(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	if c.topK <= 0 {
		return fmt.Errorf("--top must be a positive integer")
	}

	var (
		output *api.SearchResponse
		err    error
	)
	if c.local {
		output, err = c.searchLocal(ctx)
	} else {
		output, err = SearchAPI(ctx, c.cfg.Client.APITarget, c.query, c.topK)
	}
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Fprintln(w, "No results found.")
		}
		return nil
	}

	if c.quiet {
		for _, result := range output.Results {
			fmt.Fprintln(w, result.Passage.ID)
		}
		return nil
	}

	fmt.Fprintf(w, "\n%s %s\n\n",
		cliui.HeaderStyle.Render("Search Results for:"),
		cliui.KeyStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for _, result := range output.Results {
		printResult(w, result)
	}

	return nil
}

func (c *searchCommander) searchLocal(ctx context.Context) (*api.SearchResponse, error) {
	s, err := stack.New(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	if err := s.Store.LoadSnapshot(ctx, s.SnapshotPath()); err != nil {
		return nil, fmt.Errorf("loading snapshot (run \"medrag ingest\" first): %w", err)
	}

	r, err := retriever.New(retriever.Config{
		Index:     s.Store,
		Threshold: float32(c.cfg.Retrieval.Threshold),
		Logger:    c.logger,
	})
	if err != nil {
		return nil, err
	}

	results, err := r.Retrieve(ctx, c.query, c.topK)
	if err != nil {
		return nil, err
	}

	return &api.SearchResponse{
		Query:   c.query,
		Results: results,
		Count:   len(results),
	}, nil
}

func printResult(w io.Writer, result retriever.Result) {
	fmt.Fprintf(w, "  %s  %s  %s\n",
		cliui.RankStyle.Render(fmt.Sprintf("#%d", result.Rank)),
		cliui.ScoreStyle.Render(fmt.Sprintf("score: %.4f", result.Score)),
		cliui.DimStyle.Render(fmt.Sprintf("passage %d", result.Passage.ID)),
	)

	fmt.Fprintf(w, "  %s\n", cliui.ValueStyle.Render(Preview(result.Passage.Text, previewLength)))
	fmt.Fprintf(w, "  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("%d words, %s", result.Passage.WordCount, result.Passage.Source)))
}

// Preview flattens text to one line and truncates it to n runes.
func Preview(text string, n int) string {
	return utils.Truncate(strings.Join(strings.Fields(text), " "), n)
}

// SearchAPI calls the medrag search API and returns the parsed output.
func SearchAPI(ctx context.Context, apiTarget, query string, topK int) (*api.SearchResponse, error) {
	searchURL, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	searchURL.Path = "/v1/search"
	q := searchURL.Query()
	q.Set("query", query)
	q.Set("top_k", strconv.Itoa(topK))
	searchURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to medrag API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed (HTTP %d): %s", resp.StatusCode, string(body))
	}

	var output api.SearchResponse
	if err := json.Unmarshal(body, &output); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	return &output, nil
}
