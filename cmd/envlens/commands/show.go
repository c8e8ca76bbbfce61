package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/controller"
	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/editor"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/overlay"
	"github.com/systmms/envlens/internal/reveal"
	"github.com/systmms/envlens/internal/tui"
)

var revealed = color.New(color.FgCyan).SprintFunc()

func NewShowCommand(cfg *config.Config) *cobra.Command {
	var (
		decrypted bool
		diff      bool
		force     bool
	)

	cmd := &cobra.Command{
		Use:   "show [FILE]",
		Short: "Print a dotenv file with its secrets revealed inline",
		Long: `Print a dotenv file with every encrypted value replaced by its
plaintext, the way the editor overlay shows it.

Nothing is written to disk. Reveal follows the enableAutoReveal setting;
use --reveal to reveal once without changing it.

Examples:
  # Show .env with secrets revealed
  envlens show --reveal

  # Print the fully decrypted document
  envlens show .env.production --decrypted

  # Compare the file on disk with its decrypted form
  envlens show .env --diff`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultFile
			if len(args) == 1 {
				path = args[0]
			}

			text, err := readDotenvFile(path)
			if err != nil {
				return err
			}
			prefs, client, err := loadClient(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if decrypted || diff {
				mapping, err := client.GetDecrypted(cmd.Context(), path)
				if err != nil {
					return dserrors.ToolFailure("decrypt", err)
				}
				doc := reveal.DecryptedDocument(text, mapping)
				if diff {
					_, _ = fmt.Fprint(out, tui.RenderDiff(text, doc))
				} else {
					_, _ = fmt.Fprint(out, doc)
				}
				return nil
			}

			if force {
				prefs.EnableAutoReveal = true
			}
			host, pass, err := revealOnce(cmd.Context(), cfg, client, prefs, path, text)
			if err != nil {
				return err
			}
			if pass.Err != nil {
				return pass.Err
			}
			if !prefs.EnableAutoReveal {
				cfg.Logger.Warn("Secrets are hidden. Run 'envlens reveal on' or pass --reveal")
			}
			return printDocument(out, host, editor.ID(path))
		},
	}

	cmd.Flags().BoolVar(&decrypted, "decrypted", false, "Print the decrypted document instead of overlays")
	cmd.Flags().BoolVar(&diff, "diff", false, "Show a diff between the file and its decrypted form")
	cmd.Flags().BoolVar(&force, "reveal", false, "Reveal secrets even if reveal is turned off")
	cmd.MarkFlagsMutuallyExclusive("decrypted", "diff")

	return cmd
}

// revealOnce runs a single decoration pass over text and returns the host
// holding the result.
func revealOnce(ctx context.Context, cfg *config.Config, source dotenvx.Source, prefs config.Preferences, path, text string) (*editor.MemoryHost, controller.Pass, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	host := editor.NewMemoryHost()
	host.Open(editor.ID(path), path, text)

	var last controller.Pass
	c := controller.New(controller.Options{
		Host:        host,
		Source:      source,
		Preferences: config.NewMemoryStore(prefs),
		Logger:      cfg.Logger,
		OnPass:      func(p controller.Pass) { last = p },
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	err := c.Sync(ctx)
	cancel()
	<-done
	if err != nil {
		return nil, controller.Pass{}, err
	}
	return host, last, nil
}

// printDocument writes an editor's text with its overlays drawn in.
func printDocument(out io.Writer, host *editor.MemoryHost, id editor.ID) error {
	buf, ok := host.Buffer(id)
	if !ok {
		return fmt.Errorf("editor %s is not open", id)
	}
	text := overlay.Project(buf.Text(), buf.Decorations(), func(s string) string { return revealed(s) })
	_, err := fmt.Fprint(out, text)
	return err
}
