package llm

import (
	"context"

	"github.com/rotisserie/eris"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIOption configures the OpenAI client.
type OpenAIOption func(*openAIClient)

// WithOpenAIModel overrides the default model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(c *openAIClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithOpenAIBaseURL points the client at a custom endpoint (for testing).
func WithOpenAIBaseURL(base string) OpenAIOption {
	return func(c *openAIClient) {
		c.baseURL = base
	}
}

// WithOpenAIMaxTokens sets the completion token cap.
func WithOpenAIMaxTokens(n int) OpenAIOption {
	return func(c *openAIClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

type openAIClient struct {
	client    *openai.Client
	model     string
	baseURL   string
	maxTokens int
}

// NewOpenAI creates an OpenAI-backed Client.
func NewOpenAI(apiKey string, opts ...OpenAIOption) Client {
	c := &openAIClient{
		model:     "gpt-4o-mini",
		maxTokens: 2048,
	}
	for _, opt := range opts {
		opt(c)
	}

	cfg := openai.DefaultConfig(apiKey)
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	c.client = openai.NewClientWithConfig(cfg)
	return c
}

func (c *openAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens: c.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", eris.Wrap(err, "llm: openai chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("llm: openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
