package commands

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/controller"
	"github.com/systmms/envlens/internal/logging"
	"github.com/systmms/envlens/internal/tui"
	"github.com/systmms/envlens/internal/ui"
)

func NewViewCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [FILE...]",
		Short: "Browse dotenv files interactively with secrets revealed",
		Long: `Open dotenv files in an interactive viewer.

Keys:
  tab / shift+tab   switch file
  r                 reveal or hide secrets (saved to settings)
  q                 quit

Files are reloaded when they change on disk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.NonInteractive || !ui.IsTerminal(os.Stdout) {
				return errNotInteractive("view", "envlens show --reveal")
			}

			// log lines would tear the alternate screen
			quiet := *cfg
			quiet.Logger = logging.Discard()

			passes := make(chan controller.Pass, 64)
			session, err := newLiveSession(&quiet, args, nil, func(p controller.Pass) {
				select {
				case passes <- p:
				default:
				}
			})
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			done := make(chan error, 1)
			go func() { done <- session.run(ctx) }()

			err = tui.Run(ctx, session.host, session.ctrl, passes)
			cancel()
			if runErr := <-done; err == nil {
				err = runErr
			}
			return err
		},
	}

	return cmd
}
