package cmd

import (
	"fmt"
	"log"

	"insight-rules/internal/formatters"
	"insight-rules/internal/publisher"

	"github.com/spf13/cobra"
)

var (
	rulesRegion string
	rulesOutput string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List and manage deployed rules",
	Long: `List the Contributor Insights rules deployed in a region, or change
their state.

Examples:
  insight-rules rules
  insight-rules rules --output json
  insight-rules rules disable top-talkers
  insight-rules rules remove top-talkers error-sources`,
	Run: func(cmd *cobra.Command, args []string) {
		runListRules()
	},
}

var rulesEnableCmd = &cobra.Command{
	Use:   "enable <name>...",
	Short: "Start evaluation of the named rules",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manageRules("enable", args)
	},
}

var rulesDisableCmd = &cobra.Command{
	Use:   "disable <name>...",
	Short: "Pause evaluation of the named rules",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manageRules("disable", args)
	},
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <name>...",
	Short: "Permanently delete the named rules",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		manageRules("remove", args)
	},
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesRegion, "region", "", "AWS region (or use AWS_REGION env var)")
	rulesCmd.Flags().StringVarP(&rulesOutput, "output", "o", "text", "Output format: text or json")

	rulesCmd.AddCommand(rulesEnableCmd)
	rulesCmd.AddCommand(rulesDisableCmd)
	rulesCmd.AddCommand(rulesRemoveCmd)
}

func rulesClient() *publisher.Client {
	var client *publisher.Client
	var err error
	if rulesRegion != "" {
		client, err = publisher.NewClient(rulesRegion)
	} else {
		client, err = publisher.NewClientFromEnv()
	}
	if err != nil {
		log.Fatalf("Error: Failed to create CloudWatch client: %v", err)
	}
	return client
}

func runListRules() {
	rules, err := rulesClient().ListRules()
	if err != nil {
		log.Fatalf("Error: Failed to list rules: %v", err)
	}

	switch rulesOutput {
	case "text":
		formatters.RulesText(rules)
	case "json":
		formatters.RulesJSON(rules)
	default:
		log.Fatalf("Error: Unknown output format: %s. Valid formats: text, json", rulesOutput)
	}
}

func manageRules(action string, names []string) {
	client := rulesClient()

	var err error
	switch action {
	case "enable":
		err = client.EnableRules(names...)
	case "disable":
		err = client.DisableRules(names...)
	case "remove":
		err = client.DeleteRules(names...)
	}
	if err != nil {
		log.Fatalf("Error: Failed to %s rules: %v", action, err)
	}

	fmt.Printf("%sd %d rule(s)\n", action, len(names))
}
