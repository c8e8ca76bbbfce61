package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/systmms/envlens/cmd/envlens/commands"
	"github.com/systmms/envlens/internal/config"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/logging"
	"github.com/systmms/envlens/internal/secure"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := run()
	secure.Purge()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", dserrors.SimplifyError(err))
		os.Exit(1)
	}
}

func run() error {
	// Global flags
	var (
		settingsFile   string
		dotenvxPath    string
		noColor        bool
		debug          bool
		nonInteractive bool
	)

	// Create config placeholder
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "envlens",
		Short: "Reveal dotenvx-encrypted secrets inline",
		Long: `envlens shows the plaintext of dotenvx-encrypted values next to their
ciphertext, without ever writing plaintext to disk. It also wraps the
everyday dotenvx operations: get, set, encrypt and per-line actions.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Initialize logger with parsed flags
			logger := logging.New(debug, noColor)
			if noColor {
				color.NoColor = true
			}

			// Update config with parsed values
			cfg.Path = settingsFile
			cfg.DotenvxPath = dotenvxPath
			cfg.Logger = logger
			cfg.NonInteractive = nonInteractive
			cfg.Debug = debug
			cfg.NoColor = noColor
		},
	}

	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "Settings file path (default $XDG_CONFIG_HOME/envlens/settings.yaml)")
	rootCmd.PersistentFlags().StringVar(&dotenvxPath, "dotenvx", "", "Path to the dotenvx binary")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&nonInteractive, "non-interactive", false, "Non-interactive mode")

	// Add commands
	rootCmd.AddCommand(
		commands.NewShowCommand(cfg),
		commands.NewWatchCommand(cfg),
		commands.NewViewCommand(cfg),
		commands.NewToggleCommand(cfg),
		commands.NewRevealCommand(cfg),
		commands.NewGetCommand(cfg),
		commands.NewCopyCommand(cfg),
		commands.NewSetCommand(cfg),
		commands.NewEncryptCommand(cfg),
		commands.NewConvertCommand(cfg),
		commands.NewLineCommand(cfg),
		commands.NewKeysCommand(cfg),
		commands.NewConfigCommand(cfg),
		commands.NewDoctorCommand(cfg),
		commands.NewCompletionCommand(cfg),
	)

	return rootCmd.Execute()
}
