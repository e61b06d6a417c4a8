package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/autodub/autodub/internal/audio"
	"github.com/autodub/autodub/internal/timeline"
)

// implements Transcriber interface using OpenAI Audio API
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// word from OpenAI Whisper verbose_json response
type whisperWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// segment from OpenAI Whisper verbose_json response
type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// verbose_json response structure from Whisper
type whisperVerboseResponse struct {
	Text     string           `json:"text"`
	Words    []whisperWord    `json:"words"`
	Segments []whisperSegment `json:"segments"`
	Language string           `json:"language"`
	Duration float64          `json:"duration"`
}

func NewOpenAITranscriber(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *OpenAITranscriber) Transcribe(
	ctx context.Context,
	audioPath string,
) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer file.Close()

	duration, _ := audio.Duration(audioPath)

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"word", "segment"},
	}

	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}

	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	tokens, err := t.parseVerboseJSONResponse(resp.RawJSON(), duration)
	if err != nil {
		tokens = []timeline.TimedToken{{
			Kind:  timeline.KindSpeech,
			Start: 0,
			End:   duration.Seconds(),
			Text:  strings.TrimSpace(resp.Text),
		}}
	}

	return &Result{
		Tokens:   tokens,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// parseVerboseJSONResponse extracts timed tokens from a verbose_json
// payload. Word timestamps are preferred; segment timestamps and the
// bare text field are progressively coarser fallbacks.
func (t *OpenAITranscriber) parseVerboseJSONResponse(
	rawJSON string,
	fallbackDuration time.Duration,
) ([]timeline.TimedToken, error) {
	if rawJSON == "" {
		return nil, fmt.Errorf("empty response")
	}

	var verboseResp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &verboseResp); err != nil {
		return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
	}

	if tokens := wordsToTokens(verboseResp.Words); len(tokens) > 0 {
		return tokens, nil
	}

	if tokens := segmentsToTokens(verboseResp.Segments); len(tokens) > 0 {
		return tokens, nil
	}

	if verboseResp.Text == "" {
		return nil, fmt.Errorf("no words, segments, or text in response")
	}
	dur := fallbackDuration
	if verboseResp.Duration > 0 {
		dur = time.Duration(verboseResp.Duration * float64(time.Second))
	}
	return []timeline.TimedToken{{
		Kind:  timeline.KindSpeech,
		Start: 0,
		End:   dur.Seconds(),
		Text:  strings.TrimSpace(verboseResp.Text),
	}}, nil
}

func wordsToTokens(words []whisperWord) []timeline.TimedToken {
	tokens := make([]timeline.TimedToken, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		if text == "" {
			continue
		}
		tokens = append(tokens, timeline.TimedToken{
			Kind:  timeline.KindSpeech,
			Start: w.Start,
			End:   w.End,
			Text:  text,
		})
	}
	return tokens
}

func segmentsToTokens(segments []whisperSegment) []timeline.TimedToken {
	tokens := make([]timeline.TimedToken, 0, len(segments))
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		tokens = append(tokens, timeline.TimedToken{
			Kind:  timeline.KindSpeech,
			Start: seg.Start,
			End:   seg.End,
			Text:  text,
		})
	}
	return tokens
}

func (t *OpenAITranscriber) Close() error {
	return nil
}
