package commands

import (
	"github.com/spf13/cobra"
	"github.com/systmms/envlens/internal/config"
)

// NewCompletionCommand creates the completion command for generating shell completions.
func NewCompletionCommand(_ *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for envlens.

To load completions:

Bash:
  $ source <(envlens completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ envlens completion bash > /etc/bash_completion.d/envlens
  # macOS:
  $ envlens completion bash > $(brew --prefix)/etc/bash_completion.d/envlens

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ envlens completion zsh > "${fpath[1]}/_envlens"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ envlens completion fish | source

  # To load completions for each session, execute once:
  $ envlens completion fish > ~/.config/fish/completions/envlens.fish

PowerShell:
  PS> envlens completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> envlens completion powershell > envlens.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cmd.OutOrStdout())
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}

	return cmd
}
