package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sashabaranov/go-openai"

	"finreport_backend/core"
)

// ErrEmptyResponse is returned when the provider answers with no choices.
var ErrEmptyResponse = errors.New("provider returned no response choices")

// Completer is the completion capability the analysis pipeline depends
// on. Keeping this as an interface lets tests substitute a fake without
// any network access.
type Completer interface {
	// Complete sends one chat completion request. Zero-value fields in
	// params fall back to the client's configured defaults. Failures
	// are returned as *core.ProviderError.
	Complete(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error)
}

// Client implements Completer against an OpenAI-compatible endpoint.
type Client struct {
	api      *openai.Client
	defaults Params
	timeout  time.Duration
}

// NewClient creates a completion client for the configured endpoint.
//
// Example:
//
//	client := llm.NewClient(llm.Config{
//	    APIKey:  cfg.LLMAPIKey,
//	    BaseURL: cfg.LLMBaseURL,
//	    Timeout: cfg.AITimeout,
//	    Params:  llm.DefaultParams(),
//	})
func NewClient(cfg Config) *Client {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	defaults := cfg.Params
	if defaults.Model == "" {
		defaults = DefaultParams()
	}

	return &Client{
		api:      openai.NewClientWithConfig(clientConfig),
		defaults: defaults,
		timeout:  cfg.Timeout,
	}
}

// Complete sends one chat completion request and returns the model's text.
//
// The system prompt and user prompt map to one system and one user
// message. When the caller's context has no deadline and the client was
// configured with a timeout, that timeout is applied here so no call
// can block indefinitely.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string, params Params) (string, error) {
	params = c.applyDefaults(params)

	if c.timeout > 0 {
		if _, hasDeadline := ctx.Deadline(); !hasDeadline {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       params.Model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
	})
	if err != nil {
		return "", core.NewProviderError(params.Model, err)
	}

	if len(resp.Choices) == 0 {
		return "", core.NewProviderError(params.Model, ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}

// applyDefaults fills zero-value params from the client defaults.
func (c *Client) applyDefaults(params Params) Params {
	if params.Model == "" {
		params.Model = c.defaults.Model
	}
	if params.Temperature == 0 {
		params.Temperature = c.defaults.Temperature
	}
	if params.MaxTokens == 0 {
		params.MaxTokens = c.defaults.MaxTokens
	}
	return params
}
