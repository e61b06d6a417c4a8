package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/speech"
)

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the ElevenLabs voices available to your account",
	Long: `List the ElevenLabs voices available to your account.

Use one of the printed voice IDs as speech.voice_id in the config file
or with the --voice-id flag of synth.

Examples:
  autodub voices
  autodub voices -k YOUR_KEY`,
	Args: cobra.NoArgs,
	RunE: runVoices,
}

func init() {
	rootCmd.AddCommand(voicesCmd)

	voicesCmd.Flags().
		StringP("api-key", "k", "", "ElevenLabs API key (or set ELEVENLABS_API_KEY env var)")
}

func runVoices(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		key, err := speechKey(speech.ProviderElevenLabs)
		if err != nil {
			return err
		}
		apiKey = key
	}

	voices, err := speech.ListElevenLabsVoices(ctx, apiKey)
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	if len(voices) == 0 {
		fmt.Println("No voices available")
		return nil
	}

	for _, voice := range voices {
		fmt.Printf("%-24s %s\n", voice.ID, voice.Name)
	}
	fmt.Printf("%d voices\n", len(voices))

	return nil
}
