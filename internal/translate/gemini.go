package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiTranslator translates subtitle batches through the Gemini API.
type GeminiTranslator struct {
	client  *genai.Client
	model   string
	options Options
}

// NewGeminiTranslator creates a translator backed by Gemini.
func NewGeminiTranslator(ctx context.Context, apiKey string, opts Options) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiTranslator{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Translate runs batches sequentially in item order.
func (t *GeminiTranslator) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return translateSequential(ctx, t.translateBatch, items, t.options.batchSize())
}

// TranslateWithConcurrency keeps up to concurrency batches in flight.
func (t *GeminiTranslator) TranslateWithConcurrency(ctx context.Context, items []TranslationItem, concurrency int) ([]TranslationResult, error) {
	return translateConcurrent(ctx, t.translateBatch, items, t.options.batchSize(), concurrency)
}

func (t *GeminiTranslator) translateBatch(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	prompt := BuildPrompt(t.options, items)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText.WriteString(part.Text)
			}
		}
		if responseText.Len() > 0 {
			break
		}
	}
	if responseText.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	results, err := extractTranslationResults(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, truncateString(responseText.String(), 200))
	}
	return results, nil
}

func (t *GeminiTranslator) Close() error {
	return nil
}
