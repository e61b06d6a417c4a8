package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAITranslator translates subtitle batches through the OpenAI
// Chat Completions API.
type OpenAITranslator struct {
	client  openai.Client
	model   string
	options Options
}

// NewOpenAITranslator creates a translator backed by the OpenAI API.
func NewOpenAITranslator(ctx context.Context, apiKey string, opts Options) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAITranslator{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}, nil
}

// Translate runs batches sequentially in item order.
func (t *OpenAITranslator) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return translateSequential(ctx, t.translateBatch, items, t.options.batchSize())
}

// TranslateWithConcurrency keeps up to concurrency batches in flight.
func (t *OpenAITranslator) TranslateWithConcurrency(ctx context.Context, items []TranslationItem, concurrency int) ([]TranslationResult, error) {
	return translateConcurrent(ctx, t.translateBatch, items, t.options.batchSize(), concurrency)
}

func (t *OpenAITranslator) translateBatch(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	prompt := BuildPrompt(t.options, items)

	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	results, err := extractTranslationResults(responseText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(responseText, 200))
	}
	return results, nil
}

func (t *OpenAITranslator) Close() error {
	return nil
}
