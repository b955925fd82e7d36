package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(nexctl completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nexctl completion bash > /etc/bash_completion.d/nexctl
  # macOS:
  $ nexctl completion bash > $(brew --prefix)/etc/bash_completion.d/nexctl

Zsh:
  $ nexctl completion zsh > "${fpath[1]}/_nexctl"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nexctl completion fish | source

  # To load completions for each session, execute once:
  $ nexctl completion fish > ~/.config/fish/completions/nexctl.fish

PowerShell:
  PS> nexctl completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		return rootCmd.GenZshCompletion(os.Stdout)
	case "fish":
		return rootCmd.GenFishCompletion(os.Stdout, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
	}
	return nil
}
