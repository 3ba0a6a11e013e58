// Package textgen wraps the chat-completion API that drives the narrative.
// The wire contract is OpenAI-compatible: system and user messages carry a
// single text content part each, and choices[0].message.content holds the
// (optionally fenced) JSON scene payload.
package textgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"aethoria-client/models"
	"aethoria-client/prompt"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// Config holds the text service client settings.
type Config struct {
	APIKey     string
	BaseURL    string
	ModelName  string
	Timeout    int // seconds
	MaxRetries int
}

// Client calls the text generation service.
type Client struct {
	client     *openai.Client
	modelName  string
	timeout    time.Duration
	maxRetries int
}

// New creates a text service client. The API key is required; everything
// else has defaults matching the production endpoint.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("text service API key is not set")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.x.ai/v1"
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "grok-2-1212"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &Client{
		client:     openai.NewClientWithConfig(clientConfig),
		modelName:  cfg.ModelName,
		timeout:    time.Duration(cfg.Timeout) * time.Second,
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Complete sends one system+user exchange and returns the raw model text.
// Transport failures and empty completions are retried with a linear backoff;
// the final failure is wrapped in models.ErrTextService so the session
// controller can map it to the fixed error scene.
func (c *Client) Complete(ctx context.Context, req prompt.Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.System},
				},
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: req.User},
				},
			},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
		Stream:      false,
	}

	attempts := 0
	for attempts < c.maxRetries {
		attempts++

		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			log.Error().Err(err).Int("attempt", attempts).Msg("Chat completion request failed")
			if attempts >= c.maxRetries {
				return "", fmt.Errorf("%w: %v", models.ErrTextService, err)
			}
			if err := c.backoff(ctx, attempts); err != nil {
				return "", err
			}
			continue
		}

		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			log.Warn().Int("attempt", attempts).Msg("Empty completion from text service")
			if attempts >= c.maxRetries {
				return "", fmt.Errorf("%w: empty completion", models.ErrTextService)
			}
			if err := c.backoff(ctx, attempts); err != nil {
				return "", err
			}
			continue
		}

		log.Debug().Str("model", c.modelName).Int("attempt", attempts).Msg("Completion received")
		return resp.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("%w: no completion after %d attempts", models.ErrTextService, c.maxRetries)
}

// backoff waits out the linear retry delay, giving up as soon as the request
// context is cancelled or times out.
func (c *Client) backoff(ctx context.Context, attempts int) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", models.ErrTextService, ctx.Err())
	case <-time.After(time.Duration(attempts) * time.Second):
		return nil
	}
}
