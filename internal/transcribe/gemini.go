package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"google.golang.org/genai"

	"github.com/autodub/autodub/internal/audio"
	"github.com/autodub/autodub/internal/timeline"
)

// implements Transcriber interface using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// token from Gemini's JSON response
type rawToken struct {
	Kind  string  `json:"kind"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
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

	return &GeminiTranscriber{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("audio file not found: %s", audioPath)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}

	defer func() {
		_, _ = t.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	prompt := t.buildTranscriptionPrompt()

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	tokens, err := t.parseTranscriptionResponse(result)
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}

	duration, _ := audio.Duration(audioPath)

	return &Result{
		Tokens:   tokens,
		Language: t.options.Language,
		Duration: duration,
	}, nil
}

// creates the prompt for word-level transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a word-level transcript of this audio. ")
	sb.WriteString("For every spoken word, provide the start timestamp, end timestamp, and the exact word. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'kind', 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")
	sb.WriteString("Use kind 'speech' for spoken words and kind 'audio_event' for non-speech sounds like music or applause. ")

	if t.options.Language != "" {
		sb.WriteString(fmt.Sprintf("The audio is in %s. ", t.options.Language))
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into timed tokens
func (t *GeminiTranscriber) parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]timeline.TimedToken, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					responseText += part.Text
				}
			}
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	rawTokens, err := extractTokenArray(responseText)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, truncateString(responseText, 200))
	}

	return toTimedTokens(rawTokens), nil
}

// toTimedTokens converts raw response tokens, dropping empty text and
// defaulting a missing kind to speech.
func toTimedTokens(rawTokens []rawToken) []timeline.TimedToken {
	tokens := make([]timeline.TimedToken, 0, len(rawTokens))
	for _, rt := range rawTokens {
		text := strings.TrimSpace(rt.Text)
		if text == "" {
			continue
		}
		kind := strings.TrimSpace(rt.Kind)
		if kind == "" {
			kind = timeline.KindSpeech
		}
		tokens = append(tokens, timeline.TimedToken{
			Kind:  kind,
			Start: rt.Start,
			End:   rt.End,
			Text:  text,
		})
	}
	return tokens
}

// extractTokenArray digs the token array out of a model response that
// may wrap it in prose, code fences, or a JSON object.
func extractTokenArray(s string) ([]rawToken, error) {
	cleaned := cleanJSONResponse(s)

	var tokens []rawToken
	if err := json.Unmarshal([]byte(cleaned), &tokens); err == nil && validateTokens(tokens) {
		return tokens, nil
	}

	// Scan for array literals anywhere in the response and take the
	// first one that decodes into plausible tokens.
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var candidate []rawToken
		if err := dec.Decode(&candidate); err == nil && validateTokens(candidate) {
			return candidate, nil
		}
	}

	// Some models insist on a wrapper object even when told not to.
	for i := 0; i < len(cleaned); i++ {
		if cleaned[i] != '{' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var wrapper map[string]json.RawMessage
		if err := dec.Decode(&wrapper); err != nil {
			continue
		}
		if tokens, ok := tokensFromWrapper(wrapper); ok {
			return tokens, nil
		}
	}

	return nil, fmt.Errorf("no token array found in response")
}

// tokensFromWrapper tries the values of a wrapper object, well-known
// keys first, recursing into nested objects.
func tokensFromWrapper(wrapper map[string]json.RawMessage) ([]rawToken, bool) {
	preferred := []string{"words", "tokens", "segments", "transcript", "data"}
	for _, key := range preferred {
		if raw, ok := wrapper[key]; ok {
			if tokens, ok := tokensFromRaw(raw); ok {
				return tokens, true
			}
		}
	}

	keys := make([]string, 0, len(wrapper))
	for key := range wrapper {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if tokens, ok := tokensFromRaw(wrapper[key]); ok {
			return tokens, true
		}
	}
	return nil, false
}

func tokensFromRaw(raw json.RawMessage) ([]rawToken, bool) {
	var tokens []rawToken
	if err := json.Unmarshal(raw, &tokens); err == nil && validateTokens(tokens) {
		return tokens, true
	}
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		return tokensFromWrapper(nested)
	}
	return nil, false
}

// validateTokens reports whether a decoded array looks like a real
// transcript rather than a coincidentally decodable value.
func validateTokens(tokens []rawToken) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		if tok.Text != "" || tok.Start != 0 || tok.End != 0 {
			return true
		}
	}
	return false
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	// remove ```json and ``` markers
	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	s = strings.TrimSpace(s)

	return s
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Close closes the Gemini client
func (t *GeminiTranscriber) Close() error {
	// The genai client doesn't have a Close method in the current SDK
	// but we include this for future compatibility
	return nil
}
