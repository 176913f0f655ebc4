// Package llm binds the Generator interface to the OpenAI chat completions API.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cogitto/cogitto-api/config"
	"github.com/cogitto/cogitto-api/interfaces"
	"github.com/sashabaranov/go-openai"
)

// Compile-time check to ensure Client implements Generator
var _ interfaces.Generator = (*Client)(nil)

// Sampling settings tuned for factual medication answers
const (
	DefaultMaxTokens       = 800
	DefaultTemperature     = 0.3
	DefaultPresencePenalty = 0.1
)

// ErrEmptyCompletion is returned when the API answers without usable text.
var ErrEmptyCompletion = errors.New("completion contained no text")

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string       // empty uses the public OpenAI endpoint
	HTTPClient *http.Client // optional
}

// Client generates text through the OpenAI chat completions endpoint.
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a client for opts.
func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	model := opts.Model
	if model == "" {
		model = openai.GPT4
	}

	return &Client{api: openai.NewClientWithConfig(cfg), model: model}
}

// NewFromConfig returns a Generator, or nil when no API key is configured.
func NewFromConfig(cfg *config.Config) interfaces.Generator {
	if !cfg.TextGenerationEnabled() {
		return nil
	}
	return NewClient(Options{
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
		BaseURL: cfg.OpenAIBaseURL,
	})
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the system and user messages and returns the first choice.
func (c *Client) Generate(ctx context.Context, prompt interfaces.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.User,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:           c.model,
		Messages:        messages,
		MaxTokens:       DefaultMaxTokens,
		Temperature:     DefaultTemperature,
		PresencePenalty: DefaultPresencePenalty,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyCompletion
	}
	return content, nil
}
