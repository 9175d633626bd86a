package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:       "completion [powershell|bash|zsh|fish]",
	Short:     "Set up shell tab completion",
	Long:      "Generate a tab completion script. Defaults to PowerShell on Windows and bash elsewhere.",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"powershell", "bash", "zsh", "fish"},
	RunE: func(cmd *cobra.Command, args []string) error {
		shell := "bash"
		if runtime.GOOS == "windows" {
			shell = "powershell"
		}
		if len(args) == 1 {
			shell = args[0]
		}

		out := cmd.OutOrStdout()
		switch shell {
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		default:
			return rootCmd.GenBashCompletionV2(out, true)
		}
	},
}
