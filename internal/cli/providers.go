package cli

import (
	"fmt"

	"github.com/autodub/autodub/internal/speech"
	"github.com/autodub/autodub/internal/transcribe"
	"github.com/autodub/autodub/internal/translate"
)

func keyError(name, envVar, configKey string) error {
	return fmt.Errorf(
		"%s API key is required: set %s or %s in the config file",
		name, envVar, configKey,
	)
}

// transcriptionKey resolves the API key for a transcription provider,
// environment first, then the config file.
func transcriptionKey(provider transcribe.Provider) (string, error) {
	switch provider {
	case transcribe.ProviderOpenAI:
		if key := cfg.OpenAIKey(); key != "" {
			return key, nil
		}
		return "", keyError("OpenAI", "OPENAI_API_KEY", "keys.openai_api_key")
	case transcribe.ProviderGemini:
		if key := cfg.GeminiKey(); key != "" {
			return key, nil
		}
		return "", keyError("Gemini", "GEMINI_API_KEY", "keys.gemini_api_key")
	default:
		return "", fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}

// translationKey resolves the API key for a translation provider.
func translationKey(provider translate.Provider) (string, error) {
	switch provider {
	case translate.ProviderOpenAI:
		if key := cfg.OpenAIKey(); key != "" {
			return key, nil
		}
		return "", keyError("OpenAI", "OPENAI_API_KEY", "keys.openai_api_key")
	case translate.ProviderAnthropic:
		if key := cfg.AnthropicKey(); key != "" {
			return key, nil
		}
		return "", keyError("Anthropic", "ANTHROPIC_API_KEY", "keys.anthropic_api_key")
	case translate.ProviderGemini:
		if key := cfg.GeminiKey(); key != "" {
			return key, nil
		}
		return "", keyError("Gemini", "GEMINI_API_KEY", "keys.gemini_api_key")
	default:
		return "", fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// speechKey resolves the API key for a speech synthesis provider.
func speechKey(provider speech.Provider) (string, error) {
	switch provider {
	case speech.ProviderOpenAI:
		if key := cfg.OpenAIKey(); key != "" {
			return key, nil
		}
		return "", keyError("OpenAI", "OPENAI_API_KEY", "keys.openai_api_key")
	case speech.ProviderElevenLabs:
		if key := cfg.ElevenLabsKey(); key != "" {
			return key, nil
		}
		return "", keyError("ElevenLabs", "ELEVENLABS_API_KEY", "keys.elevenlabs_api_key")
	default:
		return "", fmt.Errorf("unsupported speech provider: %s", provider)
	}
}
