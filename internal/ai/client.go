package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/mcala/biaslab/internal/errors"
	"github.com/mcala/biaslab/internal/logger"
)

// Config holds the LLM provider configuration.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client talks to an OpenAI-compatible chat completion API.
type Client struct {
	client *openai.Client
	config Config
	log    *logger.Logger
}

// NewClient creates a Client, applying defaults for unset values.
func NewClient(cfg Config) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
		log:    logger.Default().WithPrefix("ai"),
	}
}

func (c *Client) Generate(ctx context.Context, system, prompt string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var result json.RawMessage
	err := c.doWithRetry(ctx, func() error {
		req := openai.ChatCompletionRequest{
			Model: c.config.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("empty completion response")
		}

		content := []byte(resp.Choices[0].Message.Content)
		if !json.Valid(content) {
			return fmt.Errorf("model returned invalid JSON")
		}
		result = content
		return nil
	})
	if err != nil {
		c.log.Error("generation failed: %v", err)
		return nil, apperrors.NewGenerationError(err)
	}
	return result, nil
}

func (c *Client) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	tokens := make(chan string)
	errs := make(chan error, 1)

	go func() {
		defer close(tokens)
		defer close(errs)

		ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()

		req := openai.ChatCompletionRequest{
			Model:    c.config.Model,
			Messages: toOpenAIMessages(messages),
			Stream:   true,
		}

		stream, err := c.client.CreateChatCompletionStream(ctx, req)
		if err != nil {
			c.log.Error("failed to open chat stream: %v", err)
			errs <- apperrors.NewGenerationError(err)
			return
		}
		defer stream.Close()

		for {
			resp, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				c.log.Error("chat stream failed: %v", err)
				errs <- apperrors.NewGenerationError(err)
				return
			}
			if len(resp.Choices) == 0 {
				continue
			}
			select {
			case tokens <- resp.Choices[0].Delta.Content:
			case <-ctx.Done():
				errs <- apperrors.NewGenerationError(ctx.Err())
				return
			}
		}
	}()

	return tokens, errs
}

// doWithRetry executes fn with exponential backoff between attempts.
func (c *Client) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if attempt < c.config.MaxRetries-1 {
			wait := time.Duration(math.Pow(2, float64(attempt))) * time.Second
			c.log.Debug("generation attempt %d failed, retrying in %v: %v", attempt+1, wait, lastErr)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	return out
}
