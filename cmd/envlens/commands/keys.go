package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
	"github.com/systmms/envlens/internal/secure"
	"github.com/systmms/envlens/internal/ui"
)

func NewKeysCommand(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Keep dotenvx private keys in the OS keychain",
		Long: `dotenvx reads the private key of a file from DOTENV_PRIVATE_KEY* or from
a .env.keys file next to it. envlens can also keep the key in the OS
keychain and hand it to dotenvx when neither is present.`,
	}
	cmd.PersistentFlags().StringVarP(&file, "file", "f", defaultFile, "Path to the .env file")

	var fromKeysFile bool
	store := &cobra.Command{
		Use:   "store",
		Short: "Save the private key of a file in the keychain",
		Long: `Save the private key of a file in the keychain. The key is read without
echo, from the first line of piped input, or with --from-keys-file from
the .env.keys file next to the dotenv file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDotenvFile(file); err != nil {
				return err
			}
			name := dotenvx.PrivateKeyName(file)

			var value *secure.Value
			if fromKeysFile {
				v, err := privateKeyFromKeysFile(file, name)
				if err != nil {
					return err
				}
				value = v
			} else {
				v, err := ui.ReadSecret(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Enter %s: ", name))
				if err != nil {
					if errors.Is(err, ui.ErrEmptyInput) {
						return dserrors.UserError{Message: "No private key provided unable to proceed."}
					}
					return err
				}
				value = v
			}
			defer value.Destroy()

			kr := dotenvx.NewKeyring()
			err := value.Use(func(key string) error {
				return kr.Store(file, key)
			})
			if err != nil {
				return dserrors.UserError{
					Message:    "Failed to save the key in the keychain",
					Suggestion: "Check that a keychain or secret service is available",
					Err:        err,
				}
			}
			success(cmd.OutOrStdout(), "Stored %s for %s in the keychain", name, filepath.Base(file))
			return nil
		},
	}
	store.Flags().BoolVar(&fromKeysFile, "from-keys-file", false, "Read the key from .env.keys")

	forget := &cobra.Command{
		Use:   "forget",
		Short: "Remove the private key of a file from the keychain",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := dotenvx.NewKeyring().Forget(file); err != nil {
				return dserrors.UserError{
					Message: "Failed to remove the key from the keychain",
					Err:     err,
				}
			}
			success(cmd.OutOrStdout(), "Removed the key for %s from the keychain", filepath.Base(file))
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where the private key of a file comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := dotenvx.PrivateKeyName(file)
			out := cmd.OutOrStdout()

			sources := []string{}
			if os.Getenv(name) != "" {
				sources = append(sources, "environment ("+name+")")
			}
			if v, err := privateKeyFromKeysFile(file, name); err == nil {
				v.Destroy()
				sources = append(sources, dotenvx.KeysFileName)
			}
			if _, ok, err := dotenvx.NewKeyring().PrivateKey(file); err != nil {
				cfg.Logger.Warn("Keychain unavailable: %v", err)
			} else if ok {
				sources = append(sources, "keychain")
			}

			if len(sources) == 0 {
				_, _ = fmt.Fprintf(out, "%s: no private key found\n", name)
				return nil
			}
			_, _ = fmt.Fprintf(out, "%s: %s\n", name, strings.Join(sources, ", "))
			return nil
		},
	}

	cmd.AddCommand(store, forget, status)
	return cmd
}

// privateKeyFromKeysFile reads name from the .env.keys file beside file.
func privateKeyFromKeysFile(file, name string) (*secure.Value, error) {
	path := filepath.Join(filepath.Dir(file), dotenvx.KeysFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, dserrors.UserError{
				Message:    fmt.Sprintf("%s not found next to %s", dotenvx.KeysFileName, filepath.Base(file)),
				Suggestion: "Run 'envlens encrypt' first, or enter the key by hand",
				Err:        err,
			}
		}
		return nil, err
	}
	defer func() {
		for i := range data {
			data[i] = 0
		}
	}()

	for _, a := range envfile.Scan(string(data)) {
		if a.Key != name {
			continue
		}
		if v, ok := envfile.ParseLine(a.Key + "=" + a.RawValue); ok && v.Value != "" {
			return secure.NewValueFromString(v.Value), nil
		}
	}
	return nil, dserrors.UserError{
		Message: fmt.Sprintf("%s has no %s", dotenvx.KeysFileName, name),
	}
}
