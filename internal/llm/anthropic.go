package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/models"
)

// AnthropicCompleter generates completions with the Claude Messages API.
type AnthropicCompleter struct {
	client    *anthropic.Client
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicCompleter creates a Claude completer from config. The API key
// comes from the environment (ANTHROPIC_API_KEY).
func NewAnthropicCompleter(cfg config.CompletionConfig) (*AnthropicCompleter, error) {
	if cfg.AnthropicAPIKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY not set")
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	return &AnthropicCompleter{
		client:    &client,
		model:     anthropic.Model(cfg.Model),
		maxTokens: int64(cfg.MaxTokens),
	}, nil
}

// Complete sends prompt as a single user message and returns the
// concatenated text blocks of the reply.
func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &models.ServiceError{Service: "completion", Err: err}
	}
	var answer string
	for _, block := range message.Content {
		if block.Type == "text" {
			answer += block.Text
		}
	}
	return answer, nil
}

// Name identifies the provider and model.
func (c *AnthropicCompleter) Name() string {
	return "anthropic/" + string(c.model)
}
