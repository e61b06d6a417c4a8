package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"
	elevenLabsModelID = "eleven_multilingual_v2"
)

// ElevenLabsSynthesizer renders speech through the ElevenLabs REST
// API.
type ElevenLabsSynthesizer struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
	modelID    string
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elevenLabsRequest struct {
	Text          string                  `json:"text"`
	ModelID       string                  `json:"model_id"`
	VoiceSettings elevenLabsVoiceSettings `json:"voice_settings"`
}

// NewElevenLabsSynthesizer creates a synthesizer backed by ElevenLabs.
func NewElevenLabsSynthesizer(apiKey string, opts Options) (*ElevenLabsSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if opts.VoiceID == "" {
		return nil, fmt.Errorf("voice ID is required")
	}

	modelID := opts.Model
	if modelID == "" {
		modelID = elevenLabsModelID
	}

	return &ElevenLabsSynthesizer{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    elevenLabsBaseURL,
		apiKey:     apiKey,
		voiceID:    opts.VoiceID,
		modelID:    modelID,
	}, nil
}

// Synthesize renders text as MP3 audio at outputPath.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("text is empty")
	}

	payload, err := json.Marshal(elevenLabsRequest{
		Text:    text,
		ModelID: s.modelID,
		VoiceSettings: elevenLabsVoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("speech request failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

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

// Voice is one synthetic voice available to the account.
type Voice struct {
	ID   string `json:"voice_id"`
	Name string `json:"name"`
}

// ListVoices returns the voices available to the account.
func (s *ElevenLabsSynthesizer) ListVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voices request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voices request failed: %s", resp.Status)
	}

	var decoded struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode voices: %w", err)
	}
	return decoded.Voices, nil
}

// ListElevenLabsVoices queries the account's voices without a voice
// selection, for picking one in the first place.
func ListElevenLabsVoices(ctx context.Context, apiKey string) ([]Voice, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	s := &ElevenLabsSynthesizer{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    elevenLabsBaseURL,
		apiKey:     apiKey,
	}
	return s.ListVoices(ctx)
}
