package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicTranslator translates subtitle batches through the
// Anthropic Messages API.
type AnthropicTranslator struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

// NewAnthropicTranslator creates a translator backed by Claude.
func NewAnthropicTranslator(ctx context.Context, apiKey string, opts Options) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicTranslator{
		client:  anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

// Translate runs batches sequentially in item order.
func (t *AnthropicTranslator) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return translateSequential(ctx, t.translateBatch, items, t.options.batchSize())
}

// TranslateWithConcurrency keeps up to concurrency batches in flight.
func (t *AnthropicTranslator) TranslateWithConcurrency(ctx context.Context, items []TranslationItem, concurrency int) ([]TranslationResult, error) {
	return translateConcurrent(ctx, t.translateBatch, items, t.options.batchSize(), concurrency)
}

func (t *AnthropicTranslator) translateBatch(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	prompt := BuildPrompt(t.options, items)

	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText.WriteString(block.Text)
		}
	}
	if responseText.Len() == 0 {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	results, err := extractTranslationResults(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(responseText.String(), 200))
	}
	return results, nil
}

func (t *AnthropicTranslator) Close() error {
	return nil
}
