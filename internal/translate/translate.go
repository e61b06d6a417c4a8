// Package translate rewrites subtitle text into another language
// through LLM providers. Segments travel as indexed items so responses
// can be matched back to their source segments no matter how the model
// orders or batches them; timing is never touched.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/autodub/autodub/internal/timeline"
)

// DefaultBatchSize caps how many subtitle texts go into a single
// provider request. Larger batches save round trips but raise the odds
// of a truncated response.
const DefaultBatchSize = 50

// TranslationItem is one source text keyed by its segment index.
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// TranslationResult is one translated text carrying the same index as
// the item it answers.
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Translator translates a set of indexed subtitle texts.
type Translator interface {
	Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error)
}

// ConcurrentTranslator keeps several batches in flight at once.
type ConcurrentTranslator interface {
	Translator
	TranslateWithConcurrency(ctx context.Context, items []TranslationItem, concurrency int) ([]TranslationResult, error)
}

// Provider identifies a translation backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Options configures translation across providers.
type Options struct {
	// InputLanguage names the source language. Empty lets the model
	// detect it.
	InputLanguage string

	// TargetLanguage names the language to translate into. Required.
	TargetLanguage string

	// Model overrides the provider default.
	Model string

	// Prompt carries extra context for the model, for example tone or
	// glossary hints.
	Prompt string

	// BatchSize caps items per request. Zero means DefaultBatchSize.
	BatchSize int
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// Factory creates a Translator for the given provider.
func Factory(ctx context.Context, provider Provider, apiKey string, opts Options) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// BuildPrompt renders the request sent to every provider. Items are
// embedded as indexed JSON so the model can echo indices back.
func BuildPrompt(opts Options, items []TranslationItem) string {
	var b strings.Builder

	if opts.InputLanguage != "" {
		fmt.Fprintf(&b, "Translate the following %s subtitle texts to %s.\n\n", opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&b, "Translate the following subtitle texts to %s.\n\n", opts.TargetLanguage)
	}

	b.WriteString("IMPORTANT INSTRUCTIONS:\n")
	b.WriteString("1. Return a JSON array with exactly one entry per input entry.\n")
	b.WriteString("2. Keep every \"index\" value unchanged.\n")
	b.WriteString("3. Put the translated text in the \"text\" field.\n")
	b.WriteString("4. Keep line breaks inside a subtitle where the original has them.\n")
	b.WriteString("5. Leave formatting tags such as <i> or <b> in place untranslated.\n")
	b.WriteString("6. Keep translations short enough to read at subtitle speed.\n")
	b.WriteString("7. Never merge, drop, or reorder entries.\n\n")

	if opts.Prompt != "" {
		b.WriteString("ADDITIONAL CONTEXT:\n")
		b.WriteString(opts.Prompt)
		b.WriteString("\n\n")
	}

	encoded, _ := json.MarshalIndent(items, "", "  ")
	b.WriteString("Input:\n")
	b.Write(encoded)
	b.WriteString("\n\nOutput the translated JSON array only:")

	return b.String()
}

// TranslateTimeline replaces every segment's text with its translation,
// in place. Timing and numbering are untouched. Segments with empty
// text are skipped, and a result whose index matches no sent segment is
// ignored.
func TranslateTimeline(ctx context.Context, tr Translator, tl *timeline.Timeline, concurrency int) error {
	items := make([]TranslationItem, 0, tl.Len())
	for _, seg := range tl.Segments {
		if strings.TrimSpace(seg.Text) == "" {
			continue
		}
		items = append(items, TranslationItem{Index: seg.Index, Text: seg.Text})
	}
	if len(items) == 0 {
		return nil
	}

	var (
		results []TranslationResult
		err     error
	)
	if ct, ok := tr.(ConcurrentTranslator); ok && concurrency > 1 {
		results, err = ct.TranslateWithConcurrency(ctx, items, concurrency)
	} else {
		results, err = tr.Translate(ctx, items)
	}
	if err != nil {
		return fmt.Errorf("translating %d segments: %w", len(items), err)
	}

	translated := make(map[int]string, len(results))
	for _, res := range results {
		if text := strings.TrimSpace(res.Text); text != "" {
			translated[res.Index] = text
		}
	}
	for i := range tl.Segments {
		if text, ok := translated[tl.Segments[i].Index]; ok {
			tl.Segments[i].Text = text
		}
	}
	return nil
}
