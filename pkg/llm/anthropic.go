package llm

import (
	"context"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// AnthropicOption configures the Anthropic client.
type AnthropicOption func(*anthropicClient)

// WithAnthropicModel overrides the default model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAnthropicBaseURL points the client at a custom endpoint (for testing).
func WithAnthropicBaseURL(base string) AnthropicOption {
	return func(c *anthropicClient) {
		c.baseURL = base
	}
}

// WithAnthropicMaxTokens sets the completion token cap.
func WithAnthropicMaxTokens(n int64) AnthropicOption {
	return func(c *anthropicClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

type anthropicClient struct {
	client    sdk.Client
	model     string
	baseURL   string
	maxTokens int64
}

// NewAnthropic creates an Anthropic-backed Client.
func NewAnthropic(apiKey string, opts ...AnthropicOption) Client {
	c := &anthropicClient{
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 2048,
	}
	for _, opt := range opts {
		opt(c)
	}

	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if c.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(c.baseURL))
	}
	c.client = sdk.NewClient(reqOpts...)
	return c
}

func (c *anthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System: []sdk.TextBlockParam{
			{Text: system},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(user)),
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: anthropic create message")
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", eris.New("llm: anthropic returned no text content")
}
