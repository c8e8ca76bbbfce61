package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
)

// lineTarget is the assignment found on the line a line command acts on.
type lineTarget struct {
	file string
	line int
	envfile.LineAssignment
}

func NewLineCommand(cfg *config.Config) *cobra.Command {
	var (
		file string
		line int
	)

	cmd := &cobra.Command{
		Use:   "line",
		Short: "Act on the secret assigned on one line of a dotenv file",
		Long: `Copy, decrypt or encrypt the KEY=VALUE assignment on a given line, the
way an editor acts on the line under the cursor.

Examples:
  envlens line copy --line 7
  envlens line decrypt -f .env.production --line 3
  envlens line encrypt --line 12`,
	}

	cmd.PersistentFlags().StringVarP(&file, "file", "f", defaultFile, "Path to the .env file")
	cmd.PersistentFlags().IntVarP(&line, "line", "n", 0, "1-based line number (required)")
	_ = cmd.MarkPersistentFlagRequired("line")

	target := func(action string) (lineTarget, error) {
		text, err := readDotenvFile(file)
		if err != nil {
			return lineTarget{}, err
		}
		content, ok := envfile.LineAt(text, line)
		if !ok {
			return lineTarget{}, dserrors.UserError{
				Message:    fmt.Sprintf("Line %d is out of range", line),
				Suggestion: fmt.Sprintf("%s has fewer than %d lines", filepath.Base(file), line),
			}
		}
		a, ok := envfile.ParseLine(content)
		if !ok {
			return lineTarget{}, dserrors.UserError{Message: fmt.Sprintf("Nothing to %s.", action)}
		}
		return lineTarget{file: file, line: line, LineAssignment: a}, nil
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "copy",
			Short: "Copy the decrypted value on the line to the clipboard",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := target("copy")
				if err != nil {
					return err
				}
				_, client, err := loadClient(cfg)
				if err != nil {
					return err
				}
				return copySecret(cmd, cfg, client, t.Key, t.file)
			},
		},
		&cobra.Command{
			Use:   "decrypt",
			Short: "Replace the encrypted value on the line with its plaintext",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := target("decrypt")
				if err != nil {
					return err
				}
				if envfile.IsPublicKey(t.Key) {
					return publicKeyRefused("decrypted")
				}
				if t.Value != "" && !envfile.IsEncryptedValue(t.Value) {
					return dserrors.UserError{Message: "The secret is not encrypted."}
				}

				_, client, err := loadClient(cfg)
				if err != nil {
					return err
				}
				value, err := client.GetSecret(cmd.Context(), t.Key, t.file)
				if err != nil {
					return dserrors.ToolFailure("decrypt", err)
				}
				if err := client.SetSecret(cmd.Context(), t.Key, value, t.file, false); err != nil {
					return dserrors.ToolFailure("decrypt", err)
				}
				success(cmd.OutOrStdout(), "The secret %q has been decrypted in %s.", t.Key, filepath.Base(t.file))
				return nil
			},
		},
		&cobra.Command{
			Use:   "encrypt",
			Short: "Encrypt the plain value on the line",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				t, err := target("encrypt")
				if err != nil {
					return err
				}
				if envfile.IsPublicKey(t.Key) {
					return publicKeyRefused("encrypted")
				}
				if envfile.IsEncryptedValue(t.Value) {
					return dserrors.UserError{Message: "The secret is already encrypted."}
				}

				_, client, err := loadClient(cfg)
				if err != nil {
					return err
				}
				if err := client.Encrypt(cmd.Context(), t.file, t.Key); err != nil {
					return dserrors.ToolFailure("encrypt", err)
				}
				success(cmd.OutOrStdout(), "The secret %q has been encrypted in %s.", t.Key, filepath.Base(t.file))
				return nil
			},
		},
	)

	return cmd
}
