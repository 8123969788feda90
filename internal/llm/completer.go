// Package llm provides text-completion providers for answer generation.
package llm

import (
	"context"
	"fmt"

	"github.com/hyperjump/annai/internal/config"
)

// Completer turns a prompt into a text completion. Provider failures are
// surfaced as models.ServiceError and are never retried here.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// New builds the completer selected by the config provider. Provider "none"
// returns nil: callers fall back to returning retrieved chunks verbatim.
func New(cfg config.CompletionConfig) (Completer, error) {
	switch cfg.Provider {
	case "anthropic":
		c, err := NewAnthropicCompleter(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai", "ollama":
		c, err := NewOpenAICompleter(cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown completion provider: %q", cfg.Provider)
	}
}
