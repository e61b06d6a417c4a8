package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/autodub/autodub/internal/config"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "autodub.toml")

	cfg, resolved, exists, err := config.Load(missing)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if exists {
		t.Error("expected missing config file")
	}
	if resolved != missing {
		t.Errorf("expected path %s, got %s", missing, resolved)
	}

	if cfg.Transcription.Provider != "openai" || cfg.Transcription.Model != "whisper-1" {
		t.Errorf(
			"unexpected transcription defaults: %q %q",
			cfg.Transcription.Provider, cfg.Transcription.Model,
		)
	}
	if cfg.Pipeline.GapMS != 500 || cfg.Pipeline.Concurrency != 3 {
		t.Errorf(
			"unexpected pipeline defaults: gap %d concurrency %d",
			cfg.Pipeline.GapMS, cfg.Pipeline.Concurrency,
		)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
[transcription]
provider = "GEMINI"
model = "gemini-2.5-flash"

[pipeline]
gap_ms = 250
concurrency = 5
`
	path := filepath.Join(t.TempDir(), "autodub.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected to load %s, got %s (exists=%v)", path, resolved, exists)
	}

	if cfg.Transcription.Provider != "gemini" {
		t.Errorf("expected normalized provider gemini, got %q", cfg.Transcription.Provider)
	}
	if cfg.Pipeline.GapMS != 250 || cfg.Pipeline.Concurrency != 5 {
		t.Errorf(
			"expected gap 250 concurrency 5, got %d and %d",
			cfg.Pipeline.GapMS, cfg.Pipeline.Concurrency,
		)
	}
	// untouched sections keep their defaults
	if cfg.Speech.Voice != "alloy" {
		t.Errorf("expected default voice alloy, got %q", cfg.Speech.Voice)
	}
	if cfg.Gap().Milliseconds() != 250 {
		t.Errorf("expected 250ms gap, got %v", cfg.Gap())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "unknown transcription provider",
			content: "[transcription]\nprovider = \"aws\"\n",
			wantMsg: "transcription.provider",
		},
		{
			name:    "unknown translation provider",
			content: "[translation]\nprovider = \"deepl\"\n",
			wantMsg: "translation.provider",
		},
		{
			name:    "unknown speech provider",
			content: "[speech]\nprovider = \"espeak\"\n",
			wantMsg: "speech.provider",
		},
		{
			name:    "zero concurrency",
			content: "[pipeline]\nconcurrency = 0\n",
			wantMsg: "pipeline.concurrency",
		},
		{
			name:    "negative gap",
			content: "[pipeline]\ngap_ms = -1\n",
			wantMsg: "pipeline.gap_ms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "autodub.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, _, _, err := config.Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected %q in error, got: %v", tt.wantMsg, err)
			}
		})
	}
}

func TestKeysPreferEnvironment(t *testing.T) {
	content := "[keys]\nopenai_api_key = \"from-file\"\n"
	path := filepath.Join(t.TempDir(), "autodub.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "from-env")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if got := cfg.OpenAIKey(); got != "from-env" {
		t.Errorf("expected env key, got %q", got)
	}

	t.Setenv("OPENAI_API_KEY", "")
	if got := cfg.OpenAIKey(); got != "from-file" {
		t.Errorf("expected file key, got %q", got)
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := config.WriteSample(path); err != nil {
		t.Fatalf("write sample failed: %v", err)
	}

	// the sample must parse and validate as-is
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Speech.Voice != "alloy" {
		t.Errorf("expected voice alloy, got %q", cfg.Speech.Voice)
	}

	if err := config.WriteSample(path); err == nil {
		t.Error("expected refusal to overwrite existing config")
	}
}
