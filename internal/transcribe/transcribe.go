// Package transcribe turns audio into timed word tokens using hosted
// speech-to-text providers. Results feed the timeline grouper, which
// assembles tokens into subtitle segments.
package transcribe

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/autodub/autodub/internal/audio"
	"github.com/autodub/autodub/internal/timeline"
)

// transcription result
type Result struct {
	Tokens   []timeline.TimedToken
	Language string
	Duration time.Duration
}

// interface for audio transcription
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// transcription service provider
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Language string // Source language of audio
	Model    string
	Prompt   string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// holds the result of transcribing a chunk
type chunkResult struct {
	Index    int
	Tokens   []timeline.TimedToken
	Language string
	Err      error
}

// TranscribeChunks transcribes chunks in parallel with any provider
// and merges the token streams in chunk order. The first failure
// cancels the remaining work.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.Chunk,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan audio.Chunk)
	resultChan := make(chan chunkResult, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Go(func() {
			for {
				select {
				case <-ctx.Done():
					return
				case chunk, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					result, err := transcribeChunk(ctx, t, chunk)
					if err != nil {
						cancel()
						resultChan <- chunkResult{Index: chunk.Index, Err: err}
						continue
					}
					resultChan <- chunkResult{
						Index:    chunk.Index,
						Tokens:   result.Tokens,
						Language: result.Language,
					}
				}
			}
		})
	}

	go func() {
		defer close(workChan)
		for _, chunk := range chunks {
			select {
			case <-ctx.Done():
				return
			case workChan <- chunk:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]chunkResult, 0, len(chunks))
	var firstErr error
	for result := range resultChan {
		if result.Err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf(
					"chunk %d failed: %w",
					result.Index,
					result.Err,
				)
			}
			continue
		}
		results = append(results, result)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// sort by index to maintain order
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	// merge
	var allTokens []timeline.TimedToken
	language := ""
	for _, r := range results {
		allTokens = append(allTokens, r.Tokens...)
		if language == "" {
			language = r.Language
		}
	}

	// Total duration comes from the last chunk's end offset
	totalDuration := chunks[len(chunks)-1].End

	return &Result{
		Tokens:   allTokens,
		Language: language,
		Duration: totalDuration,
	}, nil
}

// transcribeChunk runs one chunk and shifts its tokens by the chunk's
// offset into the source recording.
func transcribeChunk(
	ctx context.Context,
	t Transcriber,
	chunk audio.Chunk,
) (*Result, error) {
	result, err := t.Transcribe(ctx, chunk.Path)
	if err != nil {
		return nil, err
	}

	offset := chunk.Start.Seconds()
	adjusted := make([]timeline.TimedToken, len(result.Tokens))
	for i, tok := range result.Tokens {
		adjusted[i] = timeline.TimedToken{
			Kind:  tok.Kind,
			Start: tok.Start + offset,
			End:   tok.End + offset,
			Text:  tok.Text,
		}
	}

	return &Result{
		Tokens:   adjusted,
		Language: result.Language,
		Duration: result.Duration,
	}, nil
}
