package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Transcription selects the speech-to-text provider.
type Transcription struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Language string `toml:"language"`
}

// Translation selects the translation provider.
type Translation struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	TargetLanguage string `toml:"target_language"`
	BatchSize      int    `toml:"batch_size"`
}

// Speech selects the text-to-speech provider, model and voice.
type Speech struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	Voice    string `toml:"voice"`
	// VoiceID is the ElevenLabs voice; ignored by other providers.
	VoiceID string `toml:"voice_id"`
}

// Pipeline holds tunables shared by the pipeline commands.
type Pipeline struct {
	GapMS        int `toml:"gap_ms"`
	Concurrency  int `toml:"concurrency"`
	ChunkMinutes int `toml:"chunk_minutes"`
}

// Keys holds API keys. Environment variables take precedence so keys
// can stay out of config files.
type Keys struct {
	OpenAI     string `toml:"openai_api_key"`
	Anthropic  string `toml:"anthropic_api_key"`
	Gemini     string `toml:"gemini_api_key"`
	ElevenLabs string `toml:"elevenlabs_api_key"`
}

// Config is the full autodub configuration.
type Config struct {
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
	Speech        Speech        `toml:"speech"`
	Pipeline      Pipeline      `toml:"pipeline"`
	Keys          Keys          `toml:"keys"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Transcription: Transcription{
			Provider: "openai",
			Model:    "whisper-1",
		},
		Translation: Translation{
			Provider:       "openai",
			TargetLanguage: "english",
			BatchSize:      50,
		},
		Speech: Speech{
			Provider: "openai",
			Model:    "gpt-4o-mini-tts",
			Voice:    "alloy",
		},
		Pipeline: Pipeline{
			GapMS:        500,
			Concurrency:  3,
			ChunkMinutes: 1,
		},
	}
}

// DefaultConfigPath returns the absolute path of the default
// configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autodub/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing
// file is not an error; defaults apply. The returned path is where
// the configuration was read from (or would be written to), and
// exists reports whether a file was actually found. A .env file in
// the working directory is loaded best-effort before any environment
// lookup.
func Load(path string) (*Config, string, bool, error) {
	_ = godotenv.Load()

	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	projectPath, err := filepath.Abs("autodub.toml")
	if err != nil {
		return "", false, err
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() {
	c.Transcription.Provider = strings.ToLower(strings.TrimSpace(c.Transcription.Provider))
	c.Translation.Provider = strings.ToLower(strings.TrimSpace(c.Translation.Provider))
	c.Speech.Provider = strings.ToLower(strings.TrimSpace(c.Speech.Provider))
	c.Transcription.Model = strings.TrimSpace(c.Transcription.Model)
	c.Translation.Model = strings.TrimSpace(c.Translation.Model)
	c.Translation.TargetLanguage = strings.TrimSpace(c.Translation.TargetLanguage)
	c.Speech.Model = strings.TrimSpace(c.Speech.Model)
	c.Speech.Voice = strings.TrimSpace(c.Speech.Voice)
	c.Speech.VoiceID = strings.TrimSpace(c.Speech.VoiceID)
}

// Validate reports configuration values no command could work with.
func (c *Config) Validate() error {
	switch c.Transcription.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("transcription.provider %q: want openai or gemini", c.Transcription.Provider)
	}

	switch c.Translation.Provider {
	case "openai", "anthropic", "gemini":
	default:
		return fmt.Errorf("translation.provider %q: want openai, anthropic or gemini", c.Translation.Provider)
	}

	switch c.Speech.Provider {
	case "openai", "elevenlabs":
	default:
		return fmt.Errorf("speech.provider %q: want openai or elevenlabs", c.Speech.Provider)
	}

	if c.Translation.BatchSize < 1 {
		return fmt.Errorf("translation.batch_size %d: want at least 1", c.Translation.BatchSize)
	}
	if c.Pipeline.GapMS < 0 {
		return fmt.Errorf("pipeline.gap_ms %d: want zero or more", c.Pipeline.GapMS)
	}
	if c.Pipeline.Concurrency < 1 {
		return fmt.Errorf("pipeline.concurrency %d: want at least 1", c.Pipeline.Concurrency)
	}
	if c.Pipeline.ChunkMinutes < 1 {
		return fmt.Errorf("pipeline.chunk_minutes %d: want at least 1", c.Pipeline.ChunkMinutes)
	}
	return nil
}

// Gap returns the segmentation gap threshold as a duration.
func (c *Config) Gap() time.Duration {
	return time.Duration(c.Pipeline.GapMS) * time.Millisecond
}

// ChunkDuration returns the audio chunk length for transcription.
func (c *Config) ChunkDuration() time.Duration {
	return time.Duration(c.Pipeline.ChunkMinutes) * time.Minute
}

// OpenAIKey returns the OpenAI API key, environment first.
func (c *Config) OpenAIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	return c.Keys.OpenAI
}

// AnthropicKey returns the Anthropic API key, environment first.
func (c *Config) AnthropicKey() string {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key
	}
	return c.Keys.Anthropic
}

// GeminiKey returns the Gemini API key, environment first.
func (c *Config) GeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return c.Keys.Gemini
}

// ElevenLabsKey returns the ElevenLabs API key, environment first.
func (c *Config) ElevenLabsKey() string {
	if key := os.Getenv("ELEVENLABS_API_KEY"); key != "" {
		return key
	}
	return c.Keys.ElevenLabs
}

// WriteSample writes the annotated sample configuration to path,
// refusing to overwrite an existing file.
func WriteSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0644)
}

func expandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", errors.New("empty path")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		trimmed = filepath.Join(home, trimmed[2:])
	}
	return filepath.Abs(trimmed)
}
