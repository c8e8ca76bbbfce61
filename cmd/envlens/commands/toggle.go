package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/controller"
)

func NewToggleCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle",
		Short: "Reveal secrets if hidden, hide them if revealed",
		Long: `Flip the enableAutoReveal setting. Running 'watch' and 'view' sessions
pick up the change immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := cfg.Store().Load()
			if err != nil {
				return err
			}
			return setReveal(cmd.OutOrStdout(), cfg, !prefs.EnableAutoReveal)
		},
	}
}

func NewRevealCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reveal",
		Short: "Turn secret reveal on or off",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "on",
			Short: "Reveal secrets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return setReveal(cmd.OutOrStdout(), cfg, true)
			},
		},
		&cobra.Command{
			Use:   "off",
			Short: "Hide secrets",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return setReveal(cmd.OutOrStdout(), cfg, false)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print whether secrets are revealed",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				prefs, err := cfg.Store().Load()
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reveal: %s (%s)\n", onOff(prefs.EnableAutoReveal), controller.LensTitle(prefs.EnableAutoReveal))
				return nil
			},
		},
	)

	return cmd
}

// setReveal persists enableAutoReveal. Saving an unchanged value is skipped.
func setReveal(out io.Writer, cfg *config.Config, enabled bool) error {
	store := cfg.Store()
	prefs, err := store.Load()
	if err != nil {
		return err
	}
	if prefs.EnableAutoReveal != enabled {
		prefs.EnableAutoReveal = enabled
		if err := store.Save(prefs); err != nil {
			return err
		}
		cfg.Logger.Debug("Saved enableAutoReveal=%t to %s", enabled, cfg.SettingsPath())
	}

	if enabled {
		success(out, "Secrets revealed")
	} else {
		success(out, "Secrets hidden")
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
