package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/audio"
	"github.com/autodub/autodub/internal/speech"
	"github.com/autodub/autodub/internal/timeline"
	"github.com/autodub/autodub/internal/transcribe"
	"github.com/autodub/autodub/internal/translate"
	"github.com/autodub/autodub/internal/video"
)

var dubCmd = &cobra.Command{
	Use:   "dub [video_file]",
	Short: "Dub a video into another language",
	Long: `Replace the spoken audio of a video with an AI-generated dub.

The full pipeline transcribes the original audio, groups the words into
subtitle segments, translates them to the target language, synthesizes
a speech clip per segment, mixes the clips into a dub track at their
original timings, and writes a copy of the video with the new track.

An existing subtitle file skips transcription: pass --subtitles to dub
from corrected or hand-written subtitles. Pass --no-translate when the
subtitles are already in the target language, or to re-voice a video
in its original language.

Providers, models and voices come from the config file.

Examples:
  autodub dub video.mp4 --target-language japanese
  autodub dub video.mp4 -t spanish -o video.es.mp4
  autodub dub video.mp4 --subtitles corrected.srt -t german
  autodub dub video.mp4 --subtitles translated.srt --no-translate
  autodub dub video.mp4 -t french --mux-subtitles --keep-subtitles`,
	Args: cobra.ExactArgs(1),
	RunE: runDub,
}

func init() {
	rootCmd.AddCommand(dubCmd)

	dubCmd.Flags().
		StringP("subtitles", "s", "", "Existing SRT file to dub from, skipping transcription")
	dubCmd.Flags().
		StringP("target-language", "t", "", "Target language for the dub (default from config)")
	dubCmd.Flags().
		Bool("no-translate", false, "Skip translation and synthesize the subtitles as they are")
	dubCmd.Flags().
		Bool("keep-subtitles", false, "Write the dubbed subtitles next to the output video")
	dubCmd.Flags().
		Bool("mux-subtitles", false, "Attach the dubbed subtitles as a soft subtitle stream")
	dubCmd.Flags().
		Int("concurrency", 3, "Number of parallel workers per pipeline stage")
}

func runDub(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	ctx := context.Background()

	subtitlePath, _ := cmd.Flags().GetString("subtitles")
	targetLang, _ := cmd.Flags().GetString("target-language")
	noTranslate, _ := cmd.Flags().GetBool("no-translate")
	keepSubs, _ := cmd.Flags().GetBool("keep-subtitles")
	muxSubs, _ := cmd.Flags().GetBool("mux-subtitles")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	outputPath, _ := cmd.Flags().GetString("output")
	language, _ := cmd.Flags().GetString("language")

	if _, err := os.Stat(videoPath); os.IsNotExist(err) {
		return fmt.Errorf("video file not found: %s", videoPath)
	}
	if !audio.IsVideoFile(videoPath) {
		return fmt.Errorf("not a video file: %s", videoPath)
	}
	if subtitlePath != "" {
		if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
			return fmt.Errorf("subtitle file not found: %s", subtitlePath)
		}
	}

	if targetLang == "" {
		targetLang = cfg.Translation.TargetLanguage
	}
	if !noTranslate && targetLang == "" {
		return fmt.Errorf("target language is required")
	}
	if language == "" {
		language = cfg.Transcription.Language
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Pipeline.Concurrency
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	if outputPath == "" {
		ext := filepath.Ext(videoPath)
		outputPath = strings.TrimSuffix(videoPath, ext) + ".dubbed" + ext
	}

	logger.Infow("Starting dub",
		"input", videoPath,
		"output", outputPath,
		"target_language", targetLang,
		"subtitles", subtitlePath,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "autodub-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	processor := video.NewProcessor(tempDir)

	info, err := processor.GetInfo(ctx, videoPath)
	if err != nil {
		return fmt.Errorf("failed to probe video: %w", err)
	}

	var tl *timeline.Timeline
	if subtitlePath != "" {
		tl, err = timeline.ReadFile(subtitlePath)
		if err != nil {
			return fmt.Errorf("failed to parse subtitle file: %w", err)
		}
	} else {
		if !info.HasAudio {
			return fmt.Errorf("video has no audio track to transcribe: %s", videoPath)
		}
		tl, err = dubTranscribe(ctx, videoPath, tempDir, language, concurrency)
		if err != nil {
			return err
		}
	}
	if tl.Len() == 0 {
		return fmt.Errorf("no subtitle segments to dub")
	}

	logger.Infow("Timeline ready",
		"segments", tl.Len(),
	)

	if !noTranslate {
		if err := dubTranslate(ctx, tl, language, targetLang, concurrency); err != nil {
			return err
		}
	}

	synthProvider := speech.Provider(cfg.Speech.Provider)
	synthKey, err := speechKey(synthProvider)
	if err != nil {
		return err
	}
	synth, err := speech.Factory(synthProvider, synthKey, speech.Options{
		Model:   cfg.Speech.Model,
		Voice:   cfg.Speech.Voice,
		VoiceID: cfg.Speech.VoiceID,
	})
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	logger.Infow("Synthesizing speech",
		"provider", cfg.Speech.Provider,
		"segments", tl.Len(),
	)

	clips, err := speech.RenderTimeline(ctx, synth, tl, filepath.Join(tempDir, "clips"), concurrency)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if len(clips) == 0 {
		return fmt.Errorf("subtitles contain no text to synthesize")
	}

	total := info.Duration
	if end := timelineEnd(tl); end > total {
		total = end
	}

	logger.Infow("Assembling dub track",
		"clips", len(clips),
		"duration", total.String(),
	)

	timedClips := make([]audio.TimedClip, len(clips))
	for i, clip := range clips {
		timedClips[i] = audio.TimedClip{Path: clip.Path, At: clip.At}
	}

	rawTrack := filepath.Join(tempDir, "dub.wav")
	if err := audio.AssembleDub(ctx, timedClips, total, rawTrack); err != nil {
		return fmt.Errorf("failed to assemble dub track: %w", err)
	}

	dubTrack := filepath.Join(tempDir, "dub_normalized.wav")
	if err := audio.Normalize(ctx, rawTrack, dubTrack); err != nil {
		return fmt.Errorf("failed to normalize dub track: %w", err)
	}

	logger.Infow("Writing dubbed video")

	if muxSubs {
		replaced := filepath.Join(tempDir, "replaced"+filepath.Ext(outputPath))
		if err := processor.ReplaceAudio(ctx, videoPath, dubTrack, replaced); err != nil {
			return fmt.Errorf("failed to replace audio: %w", err)
		}

		srtPath := filepath.Join(tempDir, "subtitles.srt")
		if err := tl.WriteFile(srtPath); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
		if err := processor.MuxSubtitles(ctx, replaced, srtPath, outputPath); err != nil {
			return fmt.Errorf("failed to mux subtitles: %w", err)
		}
	} else {
		if err := processor.ReplaceAudio(ctx, videoPath, dubTrack, outputPath); err != nil {
			return fmt.Errorf("failed to replace audio: %w", err)
		}
	}

	var subsOut string
	if keepSubs {
		subsOut = strings.TrimSuffix(outputPath, filepath.Ext(outputPath)) + ".srt"
		if err := tl.WriteFile(subsOut); err != nil {
			return fmt.Errorf("failed to write subtitles: %w", err)
		}
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Printf("Video dubbed successfully: %s\n", absOutput)
	fmt.Printf("  Segments: %d\n", tl.Len())
	fmt.Printf("  Clips: %d\n", len(clips))
	fmt.Printf("  Duration: %s\n", total.String())
	if subsOut != "" {
		absSubs, _ := filepath.Abs(subsOut)
		fmt.Printf("  Subtitles: %s\n", absSubs)
	}

	return nil
}

// dubTranscribe runs the transcription stage of the dub pipeline and
// groups the tokens into a timeline.
func dubTranscribe(
	ctx context.Context,
	videoPath, tempDir, language string,
	concurrency int,
) (*timeline.Timeline, error) {
	provider := transcribe.Provider(cfg.Transcription.Provider)
	apiKey, err := transcriptionKey(provider)
	if err != nil {
		return nil, err
	}

	audioPath, _, err := prepareAudio(ctx, videoPath, tempDir)
	if err != nil {
		return nil, err
	}

	chunks, err := audio.Split(ctx, audioPath, cfg.ChunkDuration(), filepath.Join(tempDir, "chunks"))
	if err != nil {
		return nil, fmt.Errorf("failed to split audio: %w", err)
	}

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language: language,
		Model:    cfg.Transcription.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Transcribing audio",
		"provider", cfg.Transcription.Provider,
		"chunks", len(chunks),
		"concurrency", concurrency,
	)

	result, err := transcribe.TranscribeChunks(ctx, transcriber, chunks, concurrency)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return timeline.Group(result.Tokens, cfg.Gap()), nil
}

// dubTranslate runs the translation stage of the dub pipeline,
// rewriting the timeline text in place.
func dubTranslate(
	ctx context.Context,
	tl *timeline.Timeline,
	inputLang, targetLang string,
	concurrency int,
) error {
	provider := translate.Provider(cfg.Translation.Provider)
	apiKey, err := translationKey(provider)
	if err != nil {
		return err
	}

	translator, err := translate.Factory(ctx, provider, apiKey, translate.Options{
		InputLanguage:  inputLang,
		TargetLanguage: targetLang,
		Model:          cfg.Translation.Model,
		BatchSize:      cfg.Translation.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create translator: %w", err)
	}

	logger.Infow("Translating subtitles",
		"provider", cfg.Translation.Provider,
		"target_language", targetLang,
		"concurrency", concurrency,
	)

	if err := translate.TranslateTimeline(ctx, translator, tl, concurrency); err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	return nil
}
