package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/ui"
)

func NewCopyCommand(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "copy [KEY]",
		Short: "Copy a decrypted secret to the clipboard",
		Long: `Decrypt one key and copy its value to the clipboard. The value is never
printed.

Without a key the keys of the file are listed and you are asked to pick one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readDotenvFile(file)
			if err != nil {
				return err
			}

			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				key, err = pickKey(cmd.InOrStdin(), cmd.OutOrStdout(), cfg, text)
				if err != nil {
					return err
				}
			}
			if !envfile.ValidKey(key) {
				return invalidKey(key)
			}

			_, client, err := loadClient(cfg)
			if err != nil {
				return err
			}
			return copySecret(cmd, cfg, client, key, file)
		},
	}

	addFileFlag(cmd, &file)

	return cmd
}

// pickKey lists the secret keys of text and reads a choice, by number or
// name.
func pickKey(in io.Reader, out io.Writer, cfg *config.Config, text string) (string, error) {
	var keys []string
	seen := make(map[string]bool)
	for _, a := range envfile.Scan(text) {
		if envfile.IsPublicKey(a.Key) || seen[a.Key] {
			continue
		}
		seen[a.Key] = true
		keys = append(keys, a.Key)
	}
	if len(keys) == 0 {
		return "", dserrors.UserError{
			Message:    "Nothing to copy",
			Suggestion: "Add a secret with 'envlens set KEY'",
		}
	}

	for i, k := range keys {
		_, _ = fmt.Fprintf(out, "%3d) %s\n", i+1, k)
	}
	if cfg.NonInteractive {
		return "", dserrors.UserError{
			Message:    "No key given",
			Suggestion: "Pass one of the keys above: envlens copy KEY",
		}
	}

	answer, err := ui.ReadLine(in, out, "Key: ")
	if err != nil {
		if errors.Is(err, ui.ErrEmptyInput) {
			return "", dserrors.UserError{Message: "No key provided unable to proceed."}
		}
		return "", err
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(keys) {
			return "", dserrors.UserError{Message: fmt.Sprintf("No key numbered %d", n)}
		}
		return keys[n-1], nil
	}
	return answer, nil
}

// copySecret decrypts key and puts it on the clipboard.
func copySecret(cmd *cobra.Command, cfg *config.Config, client *dotenvx.Client, key, file string) error {
	value, err := client.GetSecret(cmd.Context(), key, file)
	if err != nil {
		return dserrors.ToolFailure("copy", err)
	}
	if err := clipboardFor(cfg).WriteAll(value); err != nil {
		return dserrors.UserError{
			Message: "Failed to copy to clipboard",
			Err:     err,
		}
	}
	success(cmd.OutOrStdout(), "Copied %q to clipboard.", key)
	return nil
}

func publicKeyRefused(action string) error {
	if action == "encrypted" {
		return dserrors.UserError{Message: "The public key should never be encrypted."}
	}
	return dserrors.UserError{Message: fmt.Sprintf("The public key cannot be %s.", action)}
}
