package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAISynthesizer renders speech through the OpenAI audio API.
type OpenAISynthesizer struct {
	client openai.Client
	model  string
	voice  string
}

// NewOpenAISynthesizer creates a synthesizer backed by OpenAI TTS.
func NewOpenAISynthesizer(apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	model := opts.Model
	if model == "" {
		model = "gpt-4o-mini-tts"
	}
	voice := opts.Voice
	if voice == "" {
		voice = "alloy"
	}

	return &OpenAISynthesizer{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		voice:  voice,
	}, nil
}

// Synthesize renders text as MP3 audio at outputPath.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is empty")
	}

	resp, err := s.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(s.model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(s.voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return out.Close()
}
