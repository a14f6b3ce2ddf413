// Package llmutils builds the configured completion service
package llmutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/medrag/pkg/llm"
	"github.com/papercomputeco/medrag/pkg/llm/openai"
)

type NewCompleterOpts struct {
	ProviderType string
	TargetURL    string
	APIKeyEnv    string
	Logger       *zap.Logger
}

// NewCompleter supports "groq" and "openai". Both speak the OpenAI chat
// completions protocol and differ only in their default endpoint and key.
func NewCompleter(o *NewCompleterOpts) (llm.Completer, error) {
	switch o.ProviderType {
	case "", "groq":
		return openai.NewCompleter(openai.Config{
			BaseURL:   o.TargetURL,
			APIKeyEnv: o.APIKeyEnv,
			Logger:    o.Logger,
		})
	case "openai":
		target := o.TargetURL
		if target == "" {
			target = "https://api.openai.com/v1"
		}
		keyEnv := o.APIKeyEnv
		if keyEnv == "" {
			keyEnv = "OPENAI_API_KEY"
		}
		return openai.NewCompleter(openai.Config{
			BaseURL:   target,
			APIKeyEnv: keyEnv,
			Logger:    o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported completion provider: %s", o.ProviderType)
	}
}
