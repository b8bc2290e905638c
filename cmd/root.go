package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "insight-rules",
	Short: "Build, validate, and deploy Contributor Insights rules",
	Long: `insight-rules - Build Contributor Insights rule bodies from declarative
descriptions and manage them in CloudWatch.

A rule description (JSON or YAML, lowercase field names) is expanded with
defaults, validated against the CloudWatchLogRule v1 schema, and rendered
into the capitalized wire JSON the control plane expects.

Commands:
  render      - Render a rule description to its wire JSON
  validate    - Check a rule description without deploying it
  deploy      - Render and publish a rule to CloudWatch
  rules       - List and manage deployed rules
  report      - Fetch top contributors for a deployed rule
  completion  - Generate shell completion scripts

Workflow:
  1. Describe:  write top-talkers.yaml
  2. Validate:  insight-rules validate --input top-talkers.yaml
  3. Deploy:    insight-rules deploy --input top-talkers.yaml --name top-talkers
  4. Inspect:   insight-rules report --name top-talkers --window 3h`,
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for insight-rules.

To load completions:

Bash:
  $ source <(insight-rules completion bash)

Zsh:
  $ insight-rules completion zsh > "${fpath[1]}/_insight-rules"

Fish:
  $ insight-rules completion fish | source

PowerShell:
  PS> insight-rules completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		switch args[0] {
		case "bash":
			err = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			err = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			err = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			err = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating completion: %v\n", err)
			os.Exit(1)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(completionCmd)
}
