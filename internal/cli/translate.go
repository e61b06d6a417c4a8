package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/timeline"
	"github.com/autodub/autodub/internal/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [subtitle_file]",
	Short: "Translate SRT subtitles to another language using AI",
	Long: `Translate an existing SRT subtitle file to another language using AI.

Segment timing is never touched; only the text changes. The --overlay
flag creates bilingual subtitles with the translated text first,
followed by the original text on the next line.

Examples:
  autodub translate video.srt --target-language japanese
  autodub translate video.srt -t ja --overlay
  autodub translate video.srt -l english -t spanish -o translated.srt`,
	Args: cobra.ExactArgs(1),
	RunE: runTranslate,
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().
		StringP("target-language", "t", "", "Target language for translation (default from config)")
	translateCmd.Flags().
		Bool("overlay", false, "Overlay translated text with original (bilingual subtitles)")
	translateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's env var)")
	translateCmd.Flags().
		String("model", "", "Model to use for translation (default from config)")
	translateCmd.Flags().
		String("provider", "", "Translation provider: openai, anthropic, gemini (default from config)")
	translateCmd.Flags().
		String("prompt", "", "Additional context passed to the translation model")
	translateCmd.Flags().
		Int("concurrency", 3, "Number of parallel translation workers")
	translateCmd.Flags().
		Int("batch-size", 50, "Number of subtitle segments per API request")
}

func runTranslate(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	targetLang, _ := cmd.Flags().GetString("target-language")
	overlay, _ := cmd.Flags().GetBool("overlay")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	providerStr, _ := cmd.Flags().GetString("provider")
	prompt, _ := cmd.Flags().GetString("prompt")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	batchSize, _ := cmd.Flags().GetInt("batch-size")
	outputPath, _ := cmd.Flags().GetString("output")
	inputLang, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	if targetLang == "" {
		targetLang = cfg.Translation.TargetLanguage
	}
	if targetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if providerStr == "" {
		providerStr = cfg.Translation.Provider
	}
	if model == "" {
		model = cfg.Translation.Model
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Pipeline.Concurrency
	}
	if !cmd.Flags().Changed("batch-size") {
		batchSize = cfg.Translation.BatchSize
	}

	if inputLang != "" &&
		strings.EqualFold(
			strings.TrimSpace(inputLang),
			strings.TrimSpace(targetLang),
		) {
		return fmt.Errorf(
			"input language %q and target language %q cannot be the same",
			inputLang,
			targetLang,
		)
	}

	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be positive, got %d", batchSize)
	}

	provider := translate.Provider(providerStr)
	if apiKey == "" {
		key, err := translationKey(provider)
		if err != nil {
			return err
		}
		apiKey = key
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		if overlay {
			outputPath = fmt.Sprintf("%s.%s.overlay.srt", baseName, targetLang)
		} else {
			outputPath = fmt.Sprintf("%s.%s.srt", baseName, targetLang)
		}
	}

	logger.Infow("Starting subtitle translation",
		"input", subtitlePath,
		"output", outputPath,
		"target_language", targetLang,
		"input_language", inputLang,
		"overlay", overlay,
		"model", model,
	)

	tl, err := timeline.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if tl.Len() == 0 {
		return fmt.Errorf("subtitle file contains no segments")
	}

	logger.Infow("Parsed subtitle file",
		"segments", tl.Len(),
	)

	opts := translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          model,
		Prompt:         prompt,
		BatchSize:      batchSize,
	}

	translator, err := translate.Factory(ctx, provider, apiKey, opts)
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	var originals []string
	if overlay {
		originals = make([]string, tl.Len())
		for i, seg := range tl.Segments {
			originals[i] = seg.Text
		}
	}

	logger.Infow("Translating subtitles",
		"segments", tl.Len(),
		"concurrency", concurrency,
	)

	if err := translate.TranslateTimeline(ctx, translator, tl, concurrency); err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if overlay {
		applyOverlay(tl, originals)
	}

	logger.Infow("Writing output file")
	if err := tl.WriteFile(outputPath); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles translated successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", tl.Len())
	fmt.Printf("  Target language: %s\n", targetLang)
	if overlay {
		fmt.Printf("  Mode: bilingual overlay\n")
	}

	return nil
}

// applyOverlay appends each segment's original text below its
// translation. Segments whose text did not change are left alone so a
// failed or identical translation is not doubled.
func applyOverlay(tl *timeline.Timeline, originals []string) {
	for i := range tl.Segments {
		if i >= len(originals) {
			return
		}
		original := originals[i]
		if original == "" || tl.Segments[i].Text == original {
			continue
		}
		tl.Segments[i].Text += "\n" + original
	}
}
