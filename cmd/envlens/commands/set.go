package commands

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/secure"
	"github.com/systmms/envlens/internal/ui"
)

func NewSetCommand(cfg *config.Config) *cobra.Command {
	var (
		file   string
		plain  bool
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "set KEY [VALUE]",
		Short: "Set a secret, encrypted by default",
		Long: `Write KEY=VALUE into a dotenv file with dotenvx. The value is encrypted
unless --plain is given. The file is created if it does not exist.

When VALUE is omitted it is read without echo from the terminal, or from
the first line of standard input when it is piped.

Examples:
  envlens set DB_PASSWORD
  echo -n "$TOKEN" | envlens set API_TOKEN -f .env.production
  envlens set LOG_LEVEL debug --plain
  envlens set RESEND_API_KEY --dry-run`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !envfile.ValidKey(key) {
				return invalidKey(key)
			}
			if envfile.IsPublicKey(key) {
				return dserrors.UserError{
					Message:    "The public key is managed by dotenvx",
					Suggestion: "Pick another key name",
				}
			}
			if !dotenvx.IsSupportedFile(file) {
				return checkDotenvFile(file)
			}

			var value *secure.Value
			if len(args) == 2 {
				value = secure.NewValueFromString(args[1])
			} else {
				v, err := ui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Enter your secret for %q: ", key))
				if err != nil {
					if errors.Is(err, ui.ErrEmptyInput) {
						return dserrors.UserError{Message: "No secret provided unable to proceed."}
					}
					return err
				}
				value = v
			}
			defer value.Destroy()

			_, client, err := loadClient(cfg)
			if err != nil {
				return err
			}

			write := func(target string) error {
				return value.Use(func(plaintext string) error {
					return client.SetSecret(cmd.Context(), key, plaintext, target, !plain)
				})
			}

			if dryRun {
				if err := preview(cmd.OutOrStdout(), file, write); err != nil {
					return dserrors.ToolFailure("set", err)
				}
				return nil
			}

			action := "Encrypting"
			if plain {
				action = "Writing"
			}
			errOut := cmd.ErrOrStderr()
			progress := ui.StartProgress(errOut, fmt.Sprintf("%s %s", action, key), showProgress(cfg, errOut))
			if err := write(file); err != nil {
				progress.Fail("Failed to set %s", key)
				progress.Stop()
				return dserrors.ToolFailure("set", err)
			}
			progress.Stop()

			if plain {
				success(cmd.OutOrStdout(), "Set %s in %s (plain)", key, filepath.Base(file))
			} else {
				success(cmd.OutOrStdout(), "Set %s in %s (encrypted)", key, filepath.Base(file))
			}
			return nil
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().BoolVar(&plain, "plain", false, "Store the value unencrypted")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the resulting change without writing the file")

	return cmd
}
