package cmd

import (
	"log"

	"insight-rules/internal/publisher"

	"github.com/spf13/cobra"
)

var (
	deployInput  string
	deployName   string
	deployState  string
	deployRegion string
	deployCustom bool
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Render and publish a rule to CloudWatch",
	Long: `Render a rule description and publish it as a Contributor Insights rule.

Examples:
  # Deploy enabled (the default state)
  insight-rules deploy --input top-talkers.yaml --name top-talkers

  # Deploy disabled, explicit region
  insight-rules deploy --input rule.json --name error-sources \
    --state DISABLED --region us-east-1

  # Deploy an unmodelled schema version verbatim
  insight-rules deploy --input exotic.json --name exotic --custom`,
	Run: func(cmd *cobra.Command, args []string) {
		runDeploy()
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployInput, "input", "i", "", "Rule description file (JSON or YAML)")
	deployCmd.Flags().StringVarP(&deployName, "name", "n", "", "Rule name")
	deployCmd.Flags().StringVar(&deployState, "state", publisher.StateEnabled, "Rule state: ENABLED or DISABLED")
	deployCmd.Flags().StringVar(&deployRegion, "region", "", "AWS region (or use AWS_REGION env var)")
	deployCmd.Flags().BoolVar(&deployCustom, "custom", false, "Skip defaulting/validation and ship the file content verbatim")
}

func runDeploy() {
	if deployInput == "" {
		log.Fatal("Error: --input is required")
	}
	if deployName == "" {
		log.Fatal("Error: --name is required")
	}

	err := publisher.DeployRule(publisher.DeployConfig{
		Region:   deployRegion,
		RuleName: deployName,
		State:    deployState,
		BodyFile: deployInput,
		Custom:   deployCustom,
	})
	if err != nil {
		log.Fatalf("Error: Failed to deploy rule: %v", err)
	}
}
