package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/autodub/autodub/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the autodub configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an annotated sample configuration file",
	Long: `Write an annotated sample configuration file and print its location.

Without a path the file goes to the default location,
~/.config/autodub/config.toml. An existing file is never overwritten.

Examples:
  autodub config init
  autodub config init ./autodub.toml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location in use",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		defaultPath, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	if err := config.WriteSample(path); err != nil {
		return err
	}

	fmt.Printf("Config file created: %s\n", path)
	fmt.Println("Edit it to pick providers and add API keys.")

	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	_, path, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}

	fmt.Println(path)
	if !exists {
		fmt.Fprintln(os.Stderr, "(not created yet; run \"autodub config init\")")
	}

	return nil
}
