package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperjump/annai/internal/config"
	"github.com/hyperjump/annai/internal/models"
)

// OpenAICompleter generates completions through the OpenAI chat API. With a
// BaseURL override it also serves Ollama and other compatible servers.
type OpenAICompleter struct {
	client    *openai.Client
	model     string
	maxTokens int
	name      string
}

// NewOpenAICompleter creates a chat completer from config. For the "ollama"
// provider no API key is required; a placeholder satisfies the client.
func NewOpenAICompleter(cfg config.CompletionConfig) (*OpenAICompleter, error) {
	apiKey := cfg.OpenAIAPIKey
	if cfg.Provider == "ollama" && apiKey == "" {
		apiKey = "ollama"
	}
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY not set")
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAICompleter{
		client:    openai.NewClientWithConfig(clientCfg),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		name:      cfg.Provider + "/" + cfg.Model,
	}, nil
}

// Complete sends prompt as a single user message and returns the first
// choice's content.
func (c *OpenAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", &models.ServiceError{Service: "completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &models.ServiceError{Service: "completion", Err: errors.New("no choices in response")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Name identifies the provider and model.
func (c *OpenAICompleter) Name() string {
	return c.name
}
