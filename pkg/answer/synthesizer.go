// Package answer turns a query into a final answer with a bounded
// retrieve, generate and critique loop.
//
// Each attempt fully redoes retrieval and generation at the current breadth.
// A rejected answer widens the breadth by BreadthStep until MaxBreadth, after
// which the last candidate is returned as is.
package answer

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/eventstream"
	"github.com/papercomputeco/medrag/pkg/eventstream/nop"
	"github.com/papercomputeco/medrag/pkg/llm"
	"github.com/papercomputeco/medrag/pkg/retriever"
)

const (
	InitialBreadth = 3
	MaxBreadth     = 12
	BreadthStep    = 1

	// MaxAttempts follows from the breadth schedule.
	MaxAttempts = (MaxBreadth-InitialBreadth)/BreadthStep + 1

	Temperature float32 = 0.2
	TopP        float32 = 0.9
	MaxTokens           = 1200

	DefaultModel = "llama-3.3-70b-versatile"

	// FallbackAnswer is the only thing a user sees when a request fails.
	FallbackAnswer = "I apologize, but I encountered an error while processing your medical question. Please try rephrasing your question or consult a healthcare professional directly."
)

// State is a step of the synthesis loop.
type State int

const (
	StateDrafting State = iota
	StateCritiquing
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDrafting:
		return "drafting"
	case StateCritiquing:
		return "critiquing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Retriever is the subset of retriever.Retriever the synthesizer needs.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]retriever.Result, error)
}

// Config is the configuration for a Synthesizer.
type Config struct {
	Retriever Retriever
	Completer llm.Completer

	// Model defaults to DefaultModel.
	Model string

	// Disclaimer is appended to every answer when non-empty. Empty by default.
	Disclaimer string

	// Critic defaults to DefaultCritic.
	Critic *Critic

	// Publisher receives one event per Synthesize call. Defaults to a no-op.
	Publisher eventstream.Publisher

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Outcome is the result of a synthesis run.
type Outcome struct {
	Answer       string
	Attempts     int
	Retries      int
	FinalBreadth int
	Accepted     bool
}

// Synthesizer runs the answer loop.
type Synthesizer struct {
	retriever  Retriever
	completer  llm.Completer
	model      string
	disclaimer string
	critic     Critic
	publisher  eventstream.Publisher
	logger     *zap.Logger
}

// New creates a Synthesizer.
func New(c Config) (*Synthesizer, error) {
	if c.Retriever == nil {
		return nil, errors.New("retriever is required")
	}
	if c.Completer == nil {
		return nil, errors.New("completer is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Synthesizer{
		retriever:  c.Retriever,
		completer:  c.Completer,
		model:      c.Model,
		disclaimer: c.Disclaimer,
		critic:     DefaultCritic(),
		publisher:  c.Publisher,
		logger:     c.Logger,
	}
	if s.model == "" {
		s.model = DefaultModel
	}
	if c.Critic != nil {
		s.critic = *c.Critic
	}
	if s.publisher == nil {
		s.publisher = nop.NewPublisher()
	}

	return s, nil
}

// Synthesize runs the loop to completion. Critic rejection never fails the
// run; retrieval and generation failures abort it immediately.
func (s *Synthesizer) Synthesize(ctx context.Context, query string) (*Outcome, error) {
	started := time.Now()

	var (
		state     = StateDrafting
		k         = InitialBreadth
		candidate string
		out       = &Outcome{}
	)

	for state != StateDone {
		switch state {
		case StateDrafting:
			out.Attempts++
			out.FinalBreadth = k

			results, err := s.retriever.Retrieve(ctx, query, k)
			if err != nil {
				err = &RetrievalError{Breadth: k, Err: err}
				s.publish(ctx, query, out, eventstream.StatusFailed, started)
				return nil, err
			}

			prompt := BuildPrompt(retriever.FormatContext(results), query)
			raw, err := s.completer.Complete(ctx, llm.CompletionRequest{
				Model:       s.model,
				Prompt:      prompt,
				Temperature: Temperature,
				TopP:        TopP,
				MaxTokens:   MaxTokens,
			})
			if err != nil {
				err = &GenerationError{Attempt: out.Attempts, Err: err}
				s.publish(ctx, query, out, eventstream.StatusFailed, started)
				return nil, err
			}

			candidate = PostProcess(raw, s.disclaimer)
			state = StateCritiquing

		case StateCritiquing:
			if s.critic.Judge(candidate) {
				s.logger.Debug("answer accepted", zap.Int("k", k), zap.Int("attempt", out.Attempts))
				out.Accepted = true
				state = StateDone
				continue
			}

			if k >= MaxBreadth {
				s.logger.Info("breadth exhausted, returning last candidate", zap.Int("k", k))
				state = StateDone
				continue
			}

			s.logger.Debug("answer rejected, widening retrieval", zap.Int("k", k))
			k += BreadthStep
			out.Retries++
			state = StateDrafting
		}
	}

	out.Answer = candidate

	if out.Retries > 0 {
		s.logger.Info("critic widened retrieval",
			zap.Int("retries", out.Retries),
			zap.Int("final_k", out.FinalBreadth),
			zap.Bool("accepted", out.Accepted),
		)
	}

	status := eventstream.StatusAccepted
	if !out.Accepted {
		status = eventstream.StatusExhausted
	}
	s.publish(ctx, query, out, status, started)

	return out, nil
}

// Answer runs Synthesize and hides any failure behind FallbackAnswer.
func (s *Synthesizer) Answer(ctx context.Context, query string) string {
	out, err := s.Synthesize(ctx, query)
	if err != nil {
		s.logger.Error("error generating answer", zap.Error(err))
		return FallbackAnswer
	}
	return out.Answer
}

func (s *Synthesizer) publish(ctx context.Context, query string, out *Outcome, status string, started time.Time) {
	event := eventstream.NewAnswerEvent(s.model, query, status, eventstream.CriticMeta{
		Attempts:     out.Attempts,
		Retries:      out.Retries,
		FinalBreadth: out.FinalBreadth,
		Accepted:     out.Accepted,
	}, started)

	if err := s.publisher.PublishAnswer(ctx, event); err != nil {
		s.logger.Warn("failed to publish answer event", zap.Error(err))
	}
}
