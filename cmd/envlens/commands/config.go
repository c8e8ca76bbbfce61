package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"gopkg.in/yaml.v3"
)

func NewConfigCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and change envlens settings",
		Long: `Show and change the persisted envlens settings.

Settings live in $XDG_CONFIG_HOME/envlens/settings.yaml unless --settings
points elsewhere. Available keys:
  ` + strings.Join(config.Keys(), "\n  "),
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print all settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := cfg.Store().Load()
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(prefs)
				if err != nil {
					return fmt.Errorf("failed to encode settings: %w", err)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", cfg.SettingsPath(), data)
				return nil
			},
		},
		&cobra.Command{
			Use:       "get KEY",
			Short:     "Print one setting",
			Args:      cobra.ExactArgs(1),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := cfg.Store().Load()
				if err != nil {
					return err
				}
				value, err := prefs.Get(args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
				return nil
			},
		},
		&cobra.Command{
			Use:       "set KEY VALUE",
			Short:     "Change one setting",
			Args:      cobra.ExactArgs(2),
			ValidArgs: config.Keys(),
			RunE: func(cmd *cobra.Command, args []string) error {
				store := cfg.Store()
				prefs, err := store.Load()
				if err != nil {
					return err
				}
				if err := prefs.Set(args[0], args[1]); err != nil {
					return err
				}
				if err := store.Save(prefs); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "%s = %s", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the settings file location",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), cfg.SettingsPath())
			},
		},
	)

	return cmd
}
