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
	"github.com/autodub/autodub/internal/speech"
	"github.com/autodub/autodub/internal/timeline"
)

var synthCmd = &cobra.Command{
	Use:   "synth [subtitle_file]",
	Short: "Synthesize speech clips from SRT subtitles",
	Long: `Synthesize a spoken audio clip for every segment of an SRT subtitle
file using a text-to-speech provider.

Clips are written to a directory, one file per segment, named after the
segment index. With --track the clips are also mixed into a single
audio file, each clip placed at its segment's start time.

Examples:
  autodub synth subtitles.srt
  autodub synth subtitles.srt --clips-dir clips/ --voice nova
  autodub synth subtitles.srt --provider elevenlabs --voice-id pNInz6obpgDQGcFmaJgB
  autodub synth subtitles.srt --track dub.mp3`,
	Args: cobra.ExactArgs(1),
	RunE: runSynth,
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.Flags().
		String("provider", "", "Speech provider: openai, elevenlabs (default from config)")
	synthCmd.Flags().
		StringP("api-key", "k", "", "API key (or set the provider's env var)")
	synthCmd.Flags().
		String("model", "", "Model to use for synthesis (default from config)")
	synthCmd.Flags().
		String("voice", "", "Voice for OpenAI synthesis (default from config)")
	synthCmd.Flags().
		String("voice-id", "", "Voice ID for ElevenLabs synthesis (default from config)")
	synthCmd.Flags().
		StringP("clips-dir", "d", "", "Directory for the rendered clips (default <name>_clips)")
	synthCmd.Flags().
		String("track", "", "Also mix the clips into a single audio file at this path")
	synthCmd.Flags().
		Int("concurrency", 3, "Number of parallel synthesis workers")
}

func runSynth(cmd *cobra.Command, args []string) error {
	subtitlePath := args[0]
	ctx := context.Background()

	providerStr, _ := cmd.Flags().GetString("provider")
	apiKey, _ := cmd.Flags().GetString("api-key")
	model, _ := cmd.Flags().GetString("model")
	voice, _ := cmd.Flags().GetString("voice")
	voiceID, _ := cmd.Flags().GetString("voice-id")
	clipsDir, _ := cmd.Flags().GetString("clips-dir")
	trackPath, _ := cmd.Flags().GetString("track")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if _, err := os.Stat(subtitlePath); os.IsNotExist(err) {
		return fmt.Errorf("subtitle file not found: %s", subtitlePath)
	}
	if ext := strings.ToLower(filepath.Ext(subtitlePath)); ext != ".srt" {
		return fmt.Errorf("unsupported subtitle format %q: use .srt", ext)
	}

	if providerStr == "" {
		providerStr = cfg.Speech.Provider
	}
	if model == "" {
		model = cfg.Speech.Model
	}
	if voice == "" {
		voice = cfg.Speech.Voice
	}
	if voiceID == "" {
		voiceID = cfg.Speech.VoiceID
	}
	if !cmd.Flags().Changed("concurrency") {
		concurrency = cfg.Pipeline.Concurrency
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}

	provider := speech.Provider(providerStr)
	if apiKey == "" {
		key, err := speechKey(provider)
		if err != nil {
			return err
		}
		apiKey = key
	}

	if clipsDir == "" {
		baseName := strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath))
		clipsDir = baseName + "_clips"
	}

	tl, err := timeline.ReadFile(subtitlePath)
	if err != nil {
		return fmt.Errorf("failed to parse subtitle file: %w", err)
	}
	if tl.Len() == 0 {
		return fmt.Errorf("subtitle file contains no segments")
	}

	logger.Infow("Synthesizing speech",
		"input", subtitlePath,
		"clips_dir", clipsDir,
		"provider", providerStr,
		"segments", tl.Len(),
		"concurrency", concurrency,
	)

	synth, err := speech.Factory(provider, apiKey, speech.Options{
		Model:   model,
		Voice:   voice,
		VoiceID: voiceID,
	})
	if err != nil {
		return fmt.Errorf("failed to create synthesizer: %w", err)
	}

	clips, err := speech.RenderTimeline(ctx, synth, tl, clipsDir, concurrency)
	if err != nil {
		return fmt.Errorf("synthesis failed: %w", err)
	}
	if len(clips) == 0 {
		return fmt.Errorf("subtitle file contains no text to synthesize")
	}

	logger.Infow("Synthesis complete",
		"clips", len(clips),
	)

	if trackPath != "" {
		total := timelineEnd(tl)

		logger.Infow("Mixing clips into track",
			"track", trackPath,
			"duration", total.String(),
		)

		timedClips := make([]audio.TimedClip, len(clips))
		for i, clip := range clips {
			timedClips[i] = audio.TimedClip{Path: clip.Path, At: clip.At}
		}

		if err := audio.AssembleDub(ctx, timedClips, total, trackPath); err != nil {
			return fmt.Errorf("failed to mix track: %w", err)
		}
	}

	absDir, _ := filepath.Abs(clipsDir)
	fmt.Printf("Speech synthesized successfully: %s\n", absDir)
	fmt.Printf("  Clips: %d\n", len(clips))
	if trackPath != "" {
		absTrack, _ := filepath.Abs(trackPath)
		fmt.Printf("  Track: %s\n", absTrack)
	}

	return nil
}

// timelineEnd returns the playback time covered by the timeline.
func timelineEnd(tl *timeline.Timeline) time.Duration {
	var endMS int64
	for _, seg := range tl.Segments {
		if seg.EndMS > endMS {
			endMS = seg.EndMS
		}
	}
	return time.Duration(endMS) * time.Millisecond
}
