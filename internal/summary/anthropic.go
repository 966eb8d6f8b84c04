package summary

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-haiku-4-5"
	defaultMaxTokens = 2048
)

// AnthropicClient implements RemoteClient against the Anthropic Messages
// API. The key is supplied per call because jobs may carry their own
// credential distinct from the service-wide one.
type AnthropicClient struct {
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicClient constructs an AnthropicClient. Empty model falls back
// to the default.
func NewAnthropicClient(model string, maxTokens int64) *AnthropicClient {
	if model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &AnthropicClient{
		model:       model,
		maxTokens:   maxTokens,
		temperature: 0.4,
	}
}

// Generate submits the prompt and returns the first generated text segment.
func (c *AnthropicClient) Generate(ctx context.Context, apiKey string, prompt string) (string, error) {
	if apiKey == "" {
		return "", errors.New("anthropic: missing api key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic: response contained no text segment")
}
