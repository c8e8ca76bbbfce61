package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/dotenvx"
)

// CheckResult is one line of the doctor report.
type CheckResult struct {
	Name    string
	Status  string // ok, warn, error
	Message string
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that dotenvx and envlens are set up correctly",
		Long: `Verify the envlens setup.

This command checks:
- Settings file validity
- dotenvx installation and version (1.0.0 or newer)
- Keychain access, when useKeyring is on
- A private key is available for the file given with --file`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var results []CheckResult
			add := func(name, status, format string, a ...interface{}) {
				results = append(results, CheckResult{Name: name, Status: status, Message: fmt.Sprintf(format, a...)})
			}

			prefs, err := cfg.Preferences()
			if err != nil {
				add("settings", "error", "%v", firstLine(err.Error()))
				prefs = config.Defaults()
			} else {
				add("settings", "ok", "%s", cfg.SettingsPath())
			}

			client := newClient(cfg, prefs, nil)
			if path, err := client.BinaryPath(); err != nil {
				add("dotenvx", "error", "%v", err)
			} else {
				add("dotenvx", "ok", "%s", path)

				supported, version, err := client.VersionSupported(cmd.Context())
				switch {
				case err != nil:
					add("version", "error", "%v", err)
				case !supported:
					add("version", "error", "Unsupported dotenvx version %s, must be 1.0.0 or higher", version)
				default:
					add("version", "ok", "%s", version)
				}
			}

			if prefs.UseKeyring {
				if _, _, err := dotenvx.NewKeyring().PrivateKey(filepath.Join(os.TempDir(), ".env")); err != nil {
					add("keychain", "warn", "%v", err)
				} else {
					add("keychain", "ok", "available")
				}
			}

			if file != "" {
				results = append(results, checkFileKey(file, prefs))
			}

			displayResults(cmd.OutOrStdout(), results)

			failed := 0
			for _, r := range results {
				if r.Status == "error" {
					failed++
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				return fmt.Errorf("%d checks failed", failed)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Also check that this file can be decrypted")

	return cmd
}

func checkFileKey(file string, prefs config.Preferences) CheckResult {
	r := CheckResult{Name: filepath.Base(file), Status: "ok"}
	if err := checkDotenvFile(file); err != nil {
		r.Status, r.Message = "error", firstLine(err.Error())
		return r
	}

	keyName := dotenvx.PrivateKeyName(file)
	if os.Getenv(keyName) != "" {
		r.Message = keyName + " set in the environment"
		return r
	}
	if v, err := privateKeyFromKeysFile(file, keyName); err == nil {
		v.Destroy()
		r.Message = keyName + " found in " + dotenvx.KeysFileName
		return r
	}
	if prefs.UseKeyring {
		if _, ok, _ := dotenvx.NewKeyring().PrivateKey(file); ok {
			r.Message = keyName + " found in the keychain"
			return r
		}
	}
	r.Status, r.Message = "warn", "no "+keyName+" found; secrets cannot be revealed"
	return r
}

// displayResults shows check results in a formatted table
func displayResults(out io.Writer, results []CheckResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(w, "-----\t------\t-------\n")

	for _, r := range results {
		status := r.Status
		switch r.Status {
		case "ok":
			status = "✓ " + status
		case "error":
			status = "✗ " + status
		default:
			status = "! " + status
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.Name, status, r.Message)
	}

	_ = w.Flush()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
