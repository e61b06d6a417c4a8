package cli

import (
	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/config"
	"github.com/autodub/autodub/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "autodub",
	Short: "AI-powered video dubbing pipeline",
	Long: `Autodub replaces the spoken audio of a video with an AI-generated
dub in another language.

The pipeline transcribes the original audio, groups the words into
subtitle segments, translates them, synthesizes speech for each
segment, and muxes the new track back into the video. Every stage is
also available as a standalone command, and subtitle timelines can be
edited between stages.

Providers and API keys are read from a config file (autodub.toml in
the working directory or ~/.config/autodub/config.toml) with
environment variables taking precedence for keys. Run "autodub config
init" to create a starter file.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, path, exists, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if exists {
			logger.Debugw("Loaded configuration", "path", path)
		}
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file path (default autodub.toml, then ~/.config/autodub/config.toml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output file path")
	rootCmd.PersistentFlags().
		StringP("language", "l", "", "Source language code (e.g., en, es, fr)")
}
