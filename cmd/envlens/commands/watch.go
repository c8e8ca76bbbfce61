package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/controller"
	"github.com/systmms/envlens/internal/metrics"
)

var heading = color.New(color.Bold).SprintFunc()

func NewWatchCommand(cfg *config.Config) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch [FILE...]",
		Short: "Keep dotenv files revealed in the terminal as they change",
		Long: `Open one or more dotenv files and print them with secrets revealed.
Each time a file or the envlens settings change, the affected file is
printed again.

Run 'envlens toggle' in another terminal to hide or reveal secrets while
watching.

Examples:
  envlens watch
  envlens watch .env .env.production
  envlens watch .env --metrics-addr 127.0.0.1:9464`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rec := metrics.New()
			passes := make(chan controller.Pass, 64)
			session, err := newLiveSession(cfg, args, rec, func(p controller.Pass) {
				select {
				case passes <- p:
				default:
					cfg.Logger.Debug("Dropped redraw for %s", p.Editor)
				}
			})
			if err != nil {
				return err
			}

			if metricsAddr != "" {
				sc := metrics.DefaultServerConfig()
				sc.Addr = metricsAddr
				server := metrics.NewServer(sc, rec)
				if err := server.Start(); err != nil {
					return fmt.Errorf("failed to start metrics server: %w", err)
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					_ = server.Stop(shutdownCtx)
				}()
				cfg.Logger.Info("Serving metrics on http://%s/metrics", server.Addr())
			}

			out := cmd.OutOrStdout()
			printed := make(chan struct{})
			go func() {
				defer close(printed)
				for {
					select {
					case <-ctx.Done():
						return
					case p := <-passes:
						printPass(out, cfg, session, p)
					}
				}
			}()

			err = session.run(ctx)
			<-printed
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	return cmd
}

func printPass(out io.Writer, cfg *config.Config, s *liveSession, p controller.Pass) {
	name := s.name(p.Editor)
	switch p.Outcome {
	case metrics.OutcomeFailed:
		cfg.Logger.Error("%s: %v", name, p.Err)
	case metrics.OutcomeApplied, metrics.OutcomeCleared:
		title := controller.LensTitle(p.Outcome == metrics.OutcomeApplied)
		_, _ = fmt.Fprintf(out, "%s  %s\n", heading("── "+name+" ──"), title)
		if err := printDocument(out, s.host, p.Editor); err != nil {
			cfg.Logger.Debug("%v", err)
			return
		}
		_, _ = fmt.Fprintln(out)
	}
}
