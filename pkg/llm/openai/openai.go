// Package openai implements llm.Completer for OpenAI-compatible chat
// completion APIs such as Groq.
package openai

import (
	"context"
	"fmt"
	"os"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/llm"
)

const (
	// DefaultBaseURL is Groq's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultAPIKeyEnv names the environment variable holding the API key.
	DefaultAPIKeyEnv = "GROQ_API_KEY"
)

// Config holds configuration for the completer.
type Config struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is used directly when set. Otherwise it is read from APIKeyEnv.
	APIKey string

	// APIKeyEnv defaults to DefaultAPIKeyEnv.
	APIKeyEnv string

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Completer wraps go-openai's chat completion client.
type Completer struct {
	client *goopenai.Client
	logger *zap.Logger
}

// NewCompleter creates a completer for the configured endpoint.
func NewCompleter(cfg Config) (*Completer, error) {
	key := cfg.APIKey
	if key == "" {
		env := cfg.APIKeyEnv
		if env == "" {
			env = DefaultAPIKeyEnv
		}
		key = os.Getenv(env)
		if key == "" {
			return nil, fmt.Errorf("%s environment variable not set", env)
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := goopenai.DefaultConfig(key)
	clientConfig.BaseURL = baseURL

	return &Completer{
		client: goopenai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

// Complete sends req.Prompt as a single user message and returns the first
// choice's content.
func (c *Completer) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", llm.ErrCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", llm.ErrCompletion)
	}

	c.logger.Debug("completion received",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op.
func (c *Completer) Close() error {
	return nil
}

var _ llm.Completer = (*Completer)(nil)
