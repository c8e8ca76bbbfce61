package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/ui"
)

func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	var (
		file   string
		keys   []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt a dotenv file in place",
		Long: `Encrypt every plain value of a dotenv file with dotenvx, or only the
keys given with -k. dotenvx creates the key pair on first use.

Examples:
  envlens encrypt
  envlens encrypt -f .env.production -k STRIPE_KEY -k DB_PASSWORD
  envlens encrypt --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDotenvFile(file); err != nil {
				return err
			}
			for _, k := range keys {
				if !envfile.ValidKey(k) {
					return invalidKey(k)
				}
				if envfile.IsPublicKey(k) {
					return publicKeyRefused("encrypted")
				}
			}

			_, client, err := loadClient(cfg)
			if err != nil {
				return err
			}

			if dryRun {
				err := preview(cmd.OutOrStdout(), file, func(scratch string) error {
					return client.Encrypt(cmd.Context(), scratch, keys...)
				})
				if err != nil {
					return dserrors.ToolFailure("encrypt", err)
				}
				return nil
			}

			what := filepath.Base(file)
			if len(keys) > 0 {
				what = strings.Join(keys, ", ") + " in " + what
			}
			errOut := cmd.ErrOrStderr()
			progress := ui.StartProgress(errOut, "Encrypting "+what, showProgress(cfg, errOut))
			if err := client.Encrypt(cmd.Context(), file, keys...); err != nil {
				progress.Fail("Failed to encrypt %s", what)
				progress.Stop()
				return dserrors.ToolFailure("encrypt", err)
			}
			progress.Stop()

			success(cmd.OutOrStdout(), "Encrypted %s", what)
			return nil
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().StringArrayVarP(&keys, "key", "k", nil, "Only encrypt this key (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the resulting change without writing the file")

	return cmd
}

func NewConvertCommand(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Run dotenvx convert on a dotenv file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDotenvFile(file); err != nil {
				return err
			}
			_, client, err := loadClient(cfg)
			if err != nil {
				return err
			}

			out, err := client.Convert(cmd.Context(), file)
			if err != nil {
				return dserrors.ToolFailure("convert", err)
			}
			if out != "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}

	addFileFlag(cmd, &file)

	return cmd
}
