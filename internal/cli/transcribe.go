package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/audio"
	"github.com/autodub/autodub/internal/timeline"
	"github.com/autodub/autodub/internal/transcribe"
	"github.com/autodub/autodub/internal/video"
)

var transcribeCmd = &cobra.Command{
	Use:   "transcribe [media_file]",
	Short: "Transcribe an audio or video file into SRT subtitles",
	Long: `Transcribe the specified audio or video file into an SRT subtitle file.

The command accepts both audio files (mp3, wav, aac, etc.) and video files
(mp4, mkv, etc.). For video files, audio is automatically extracted first.

The audio is split into chunks (default 1 minute) and transcribed in
parallel. Word-level timings from the provider are grouped into subtitle
segments: a pause longer than the gap threshold starts a new segment.

Examples:
  autodub transcribe video.mp4
  autodub transcribe audio.mp3 -o subtitles.srt
  autodub transcribe video.mp4 --provider gemini --chunk-duration 2
  autodub transcribe podcast.mp3 --gap 300 --concurrency 5`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(transcribeCmd)

	transcribeCmd.Flags().
		String("provider", "", "Transcription provider: openai, gemini (default from config)")
	transcribeCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	transcribeCmd.Flags().
		String("model", "", "Model to use for transcription (default from config)")
	transcribeCmd.Flags().
		String("prompt", "", "Context prompt passed to the transcription model")
	transcribeCmd.Flags().
		IntP("chunk-duration", "d", 1, "Chunk duration in minutes for splitting audio")
	transcribeCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	transcribeCmd.Flags().
		Int("gap", 500, "Silence in milliseconds that starts a new segment")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := context.Background()

	if _, err := os.Stat(mediaPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", mediaPath)
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	prompt, _ := cmd.Flags().GetString("prompt")
	chunkMinutes, _ := cmd.Flags().GetInt("chunk-duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	gapMS, _ := cmd.Flags().GetInt("gap")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	if providerStr == "" {
		providerStr = cfg.Transcription.Provider
	}
	if model == "" {
		model = cfg.Transcription.Model
	}
	if language == "" {
		language = cfg.Transcription.Language
	}
	if !cmd.Flags().Changed("chunk-duration") {
		chunkMinutes = cfg.Pipeline.ChunkMinutes
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Pipeline.Concurrency
	}
	if !cmd.Flags().Changed("gap") {
		gapMS = cfg.Pipeline.GapMS
	}

	if chunkMinutes <= 0 {
		return fmt.Errorf("chunk-duration must be positive, got %d", chunkMinutes)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if gapMS < 0 {
		return fmt.Errorf("gap must not be negative, got %d", gapMS)
	}

	provider := transcribe.Provider(providerStr)
	if apiKey == "" {
		key, err := transcriptionKey(provider)
		if err != nil {
			return err
		}
		apiKey = key
	}

	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + ".srt"
	}

	logger.Infow("Starting transcription",
		"input", mediaPath,
		"output", outputPath,
		"provider", providerStr,
		"chunk_minutes", chunkMinutes,
		"concurrency", concurrency,
		"gap_ms", gapMS,
	)

	tempDir, err := os.MkdirTemp("", "autodub-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	audioPath, duration, err := prepareAudio(ctx, mediaPath, tempDir)
	if err != nil {
		return err
	}

	logger.Infow("Audio prepared",
		"duration", duration.String(),
	)

	chunkDir := filepath.Join(tempDir, "chunks")
	chunkDur := time.Duration(chunkMinutes) * time.Minute

	chunks, err := audio.Split(ctx, audioPath, chunkDur, chunkDir)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}

	logger.Infow("Created audio chunks",
		"count", len(chunks),
	)

	transcribeOpts := transcribe.Options{
		Language: language,
		Model:    model,
		Prompt:   prompt,
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribeOpts)
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Transcribing audio",
		"concurrency", concurrency,
	)

	result, err := transcribe.TranscribeChunks(ctx, transcriber, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	logger.Infow("Transcription complete",
		"tokens", len(result.Tokens),
		"language", result.Language,
	)

	gap := time.Duration(gapMS) * time.Millisecond
	tl := timeline.Group(result.Tokens, gap)
	if tl.Len() == 0 {
		logger.Warnw("No speech found in audio")
	}

	if err := tl.WriteFile(outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Subtitles generated successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", tl.Len())
	fmt.Printf("  Duration: %s\n", duration.String())

	return nil
}

// prepareAudio converts the input into a compressed mono track sized
// for transcription uploads, extracting from video when needed.
func prepareAudio(
	ctx context.Context,
	mediaPath, tempDir string,
) (string, time.Duration, error) {
	audioPath := filepath.Join(tempDir, "audio.mp3")
	compressionOpts := audio.DefaultCompressionOptions()

	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")

		processor := video.NewProcessor(tempDir)
		extractOpts := video.ExtractAudioOptions{
			Format:     compressionOpts.Format,
			SampleRate: compressionOpts.SampleRate,
			Channels:   compressionOpts.Channels,
			Bitrate:    compressionOpts.Bitrate,
		}

		if _, err := processor.ExtractAudio(ctx, mediaPath, audioPath, extractOpts); err != nil {
			return "", 0, fmt.Errorf("failed to extract audio: %w", err)
		}
	} else {
		logger.Infow("Compressing audio for transcription")

		if err := audio.Compress(ctx, mediaPath, audioPath, compressionOpts); err != nil {
			return "", 0, fmt.Errorf("failed to compress audio: %w", err)
		}
	}

	duration, err := audio.Duration(audioPath)
	if err != nil {
		return "", 0, fmt.Errorf("failed to get audio duration: %w", err)
	}

	return audioPath, duration, nil
}
