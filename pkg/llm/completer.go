// Package llm defines the completion service collaborator: a prompt goes in,
// generated text comes out.
package llm

import (
	"context"
	"errors"
)

// ErrCompletion wraps every failure raised by a completion service.
var ErrCompletion = errors.New("completion failed")

// CompletionRequest is a single non-streaming completion call.
type CompletionRequest struct {
	// Model is the literal model identifier sent to the provider.
	Model string

	// Prompt is sent as a single user message.
	Prompt string

	Temperature float32
	TopP        float32
	MaxTokens   int
}

// Completer produces a completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Close releases any resources held by the completer.
	Close() error
}
