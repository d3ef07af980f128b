// Package llm is a thin connector to an OpenAI-compatible
// chat-completion endpoint. It does no retries, streaming, or rate
// limiting; callers control cancellation through the context.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ivyinautumn/Intelligent-question-generator/internal/model"
)

const (
	completionTemperature = 0.1
	completionMaxTokens   = 2048
)

// Client wraps an OpenAI-compatible API client.
type Client struct {
	api       *openai.Client
	modelName string
	timeout   time.Duration
}

// New creates a new LLM client for the given endpoint and model.
// timeout bounds each completion call; zero means no deadline.
func New(baseURL, apiKey, modelName string, timeout time.Duration) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:       openai.NewClientWithConfig(config),
		modelName: modelName,
		timeout:   timeout,
	}
}

// Complete sends a single-turn prompt and returns the raw completion
// text. Network, HTTP, and auth failures surface as ProviderError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: completionTemperature,
		MaxTokens:   completionMaxTokens,
	})
	if err != nil {
		return "", &model.ProviderError{Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &model.ProviderError{Op: "chat completion", Err: errors.New("no choices returned")}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &model.ProviderError{Op: "chat completion", Err: errors.New("empty completion")}
	}
	return content, nil
}

// Ping verifies that the endpoint is reachable and the credentials are
// accepted.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.api.ListModels(ctx); err != nil {
		return fmt.Errorf("LLM endpoint unreachable: %w", err)
	}
	return nil
}
