package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
	"github.com/systmms/envlens/internal/envfile"
	dserrors "github.com/systmms/envlens/internal/errors"
)

func NewGetCommand(cfg *config.Config) *cobra.Command {
	var (
		file       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "get [KEY]",
		Short: "Print a decrypted secret",
		Long: `Print the decrypted value of one key. Without a key, every key of the
file is printed as a JSON object.

By default only the raw value is printed, making it suitable for scripting.

Examples:
  # Get a single value
  envlens get DATABASE_URL

  # Get a value from another file, with metadata
  envlens get API_KEY -f .env.production --json

  # Use in scripts
  export DB_URL=$(envlens get DATABASE_URL)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDotenvFile(file); err != nil {
				return err
			}
			_, client, err := loadClient(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")

			if len(args) == 0 {
				all, err := client.GetDecrypted(cmd.Context(), file)
				if err != nil {
					return dserrors.ToolFailure("get", err)
				}
				if err := encoder.Encode(all); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
				return nil
			}

			key := args[0]
			if !envfile.ValidKey(key) {
				return invalidKey(key)
			}
			value, err := client.GetSecret(cmd.Context(), key, file)
			if err != nil {
				return dserrors.ToolFailure("get", err)
			}

			if jsonOutput {
				output := map[string]interface{}{
					"key":   key,
					"value": value,
					"file":  file,
				}
				if err := encoder.Encode(output); err != nil {
					return fmt.Errorf("failed to encode JSON: %w", err)
				}
				return nil
			}
			_, _ = fmt.Fprint(out, value)
			return nil
		},
	}

	addFileFlag(cmd, &file)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format with metadata")

	return cmd
}

func invalidKey(key string) error {
	return dserrors.ConfigError{
		Field:      "key",
		Value:      key,
		Message:    "invalid key",
		Suggestion: "Your secret key must only include the characters: _ A-Z 0-9, and start with: _ A-Z",
	}
}
