package cmd

import (
	"fmt"
	"log"

	"insight-rules/internal/publisher"

	"github.com/spf13/cobra"
)

var validateInput string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a rule description without deploying it",
	Long: `Run default inference and schema validation on a rule description file
and report the first violation, if any.

Examples:
  insight-rules validate --input top-talkers.yaml
  insight-rules validate --input rule.json`,
	Run: func(cmd *cobra.Command, args []string) {
		runValidate()
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Rule description file (JSON or YAML)")
}

func runValidate() {
	if validateInput == "" {
		log.Fatal("Error: --input is required")
	}

	if _, err := publisher.RenderBody(publisher.DeployConfig{BodyFile: validateInput}); err != nil {
		log.Fatalf("Invalid rule description %s: %v", validateInput, err)
	}

	fmt.Printf("%s is a valid CloudWatchLogRule v1 description\n", validateInput)
}
