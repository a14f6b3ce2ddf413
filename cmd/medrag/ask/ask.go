// Package askcmder provides the ask command that answers one medical question
// from the local knowledge base.
package askcmder

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/cmd/medrag/stack"
	"github.com/papercomputeco/medrag/pkg/answer"
	"github.com/papercomputeco/medrag/pkg/cliui"
	"github.com/papercomputeco/medrag/pkg/config"
	"github.com/papercomputeco/medrag/pkg/logger"
)

type askCommander struct {
	question  string
	raw       bool
	cfg       *config.Config
	configDir string
	debug     bool

	logger *zap.Logger
}

const askLongDesc string = `Answer a medical question from the knowledge base.

The knowledge base is loaded from the snapshot store, or built from the
corpus when no snapshot exists yet. Off-topic questions are redirected
without calling the language model.

The answer is rendered as markdown. Use --raw for plain text output, e.g.
when piping. With --debug the critic loop statistics are printed as well.

Examples:
  medrag ask "What are the symptoms of pneumonia?"
  medrag ask "How to treat a migraine?" --completion-model llama-3.1-8b-instant
  medrag ask "What is anemia?" --raw`

const askShortDesc string = "Answer a medical question"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.cfg, err = stack.LoadConfig(cmd, stack.ServiceFlagKeys)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.question = strings.Join(args, " ")

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context(), cmd.OutOrStdout())
		},
	}

	stack.AddFlags(cmd, stack.ServiceFlagKeys)
	cmd.Flags().BoolVar(&cmder.raw, "raw", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	question := strings.TrimSpace(c.question)
	if question == "" {
		return fmt.Errorf("question is required")
	}

	if !answer.IsInDomain(question) {
		return c.print(w, answer.OffDomainReply)
	}

	s, err := stack.New(ctx, c.cfg, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer s.Close()

	svc, err := s.Service()
	if err != nil {
		return err
	}

	if err := cliui.Step(os.Stderr, "Loading knowledge base", func() error {
		return svc.Bootstrap(ctx)
	}); err != nil {
		return err
	}

	var out *answer.Outcome
	_ = cliui.Step(os.Stderr, "Thinking", func() error {
		out, err = svc.Synthesize(ctx, question)
		return err
	})
	if err != nil {
		c.logger.Error("error generating answer", zap.Error(err))
		return c.print(w, answer.FallbackAnswer)
	}

	if c.debug {
		fmt.Fprintln(os.Stderr)
		cliui.KeyValues(os.Stderr, [][2]string{
			{"Attempts", strconv.Itoa(out.Attempts)},
			{"Retries", strconv.Itoa(out.Retries)},
			{"Breadth", strconv.Itoa(out.FinalBreadth)},
			{"Accepted", strconv.FormatBool(out.Accepted)},
		})
	}

	return c.print(w, out.Answer)
}

func (c *askCommander) print(w io.Writer, text string) error {
	if c.raw {
		_, err := fmt.Fprintln(w, text)
		return err
	}

	rendered, err := cliui.RenderMarkdown(text)
	if err != nil {
		c.logger.Debug("markdown rendering failed", zap.Error(err))
	}
	_, err = fmt.Fprint(w, rendered)
	return err
}
