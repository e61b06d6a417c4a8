package transcribe

import (
	"testing"

	"github.com/autodub/autodub/internal/timeline"
)

func TestExtractTokenArray(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"kind": "speech", "start": 0.0, "end": 0.5, "text": "Hello"},
				{"kind": "speech", "start": 0.5, "end": 1.0, "text": "world"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the JSON transcript:
			[
				{"kind": "speech", "start": 0.0, "end": 0.5, "text": "Hello"},
				{"kind": "speech", "start": 0.5, "end": 1.0, "text": "world"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"start": 0.0, "end": 2.5, "text": "Hello world"}
			]
			I hope this helps! Let me know if you need anything else.`,
			wantCount: 1,
		},
		{
			name: "preamble and trailing text",
			input: `Here is your transcript:
			[{"start": 1.0, "end": 3.0, "text": "Test"}]
			That's all!`,
			wantCount: 1,
		},
		{
			name:      "code fenced JSON (after cleanJSONResponse)",
			input:     `[{"start": 0.0, "end": 1.5, "text": "Fenced"}]`,
			wantCount: 1,
		},
		{
			name: "wrapper object with words key",
			input: `{"words": [
				{"start": 0.0, "end": 2.0, "text": "Wrapped"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with transcript key",
			input: `{"transcript": [
				{"start": 0.0, "end": 2.0, "text": "From transcript key"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with unknown key",
			input: `{"myCustomKey": [
				{"start": 0.0, "end": 2.0, "text": "From unknown key"}
			]}`,
			wantCount: 1,
		},
		{
			name: "unrelated object first then token array",
			input: `{"status": "ok", "count": 5}
			[{"start": 0.0, "end": 2.0, "text": "Real transcript"}]`,
			wantCount: 1,
		},
		{
			name: "multiple arrays picks first valid",
			input: `[1, 2, 3]
			[{"start": 0.0, "end": 2.0, "text": "Actual transcript"}]`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text with no JSON content.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"start": 0.0, "end": 2.0, "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with all-zero tokens",
			input:   `[{"start": 0, "end": 0, "text": ""}]`,
			wantErr: true,
		},
		{
			name:      "token with timestamps but empty text",
			input:     `[{"start": 1.0, "end": 2.0, "text": ""}]`,
			wantCount: 1,
		},
		{
			name: "complex preamble with explanation",
			input: `I've analyzed the audio and created a word-level transcript for you. The audio appears to be in English. Here is the formatted JSON output:

			[
				{"kind": "speech", "start": 0.0, "end": 0.4, "text": "Welcome"},
				{"kind": "speech", "start": 0.4, "end": 0.6, "text": "to"},
				{"kind": "speech", "start": 0.6, "end": 0.9, "text": "the"},
				{"kind": "speech", "start": 0.9, "end": 1.3, "text": "show"}
			]

			Note: Timestamps are in seconds. Let me know if you need any adjustments!`,
			wantCount: 4,
		},
		{
			name: "nested wrapper object",
			input: `{
				"response": {
					"words": [{"start": 0.0, "end": 1.0, "text": "Nested"}]
				}
			}`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := extractTokenArray(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(tokens) != tt.wantCount {
				t.Errorf(
					"got %d tokens, want %d",
					len(tokens),
					tt.wantCount,
				)
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"start": 0, "end": 1, "text": "hello"}]`,
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"start\": 0, \"end\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"start\": 0, \"end\": 1, \"text\": \"hello\"}]\n```",
			want:  `[{"start": 0, "end": 1, "text": "hello"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"start\": 0}]\n```\n\n  ",
			want:  `[{"start": 0}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []rawToken
		want   bool
	}{
		{"empty slice", []rawToken{}, false},
		{"nil slice", nil, false},
		{"token with text", []rawToken{{Text: "hello"}}, true},
		{"token with start time", []rawToken{{Start: 1.0}}, true},
		{"token with end time", []rawToken{{End: 2.0}}, true},
		{
			"all zero token",
			[]rawToken{{Start: 0, End: 0, Text: ""}},
			false,
		},
		{
			"multiple tokens one valid",
			[]rawToken{{}, {Start: 1.0, End: 2.0, Text: "valid"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateTokens(tt.tokens); got != tt.want {
				t.Errorf("validateTokens() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToTimedTokens(t *testing.T) {
	raw := []rawToken{
		{Kind: "speech", Start: 0.0, End: 0.5, Text: " Hello "},
		{Kind: "", Start: 0.5, End: 1.0, Text: "world"},
		{Kind: "audio_event", Start: 1.0, End: 2.0, Text: "[music]"},
		{Kind: "speech", Start: 2.0, End: 2.5, Text: "   "},
	}

	tokens := toTimedTokens(raw)

	if len(tokens) != 3 {
		t.Fatalf("expected 3 tokens after filtering, got %d", len(tokens))
	}
	if tokens[0].Text != "Hello" {
		t.Errorf("text should be trimmed, got %q", tokens[0].Text)
	}
	if tokens[1].Kind != timeline.KindSpeech {
		t.Errorf("missing kind should default to speech, got %q", tokens[1].Kind)
	}
	if tokens[2].Kind != "audio_event" {
		t.Errorf("audio_event kind should survive, got %q", tokens[2].Kind)
	}
}
