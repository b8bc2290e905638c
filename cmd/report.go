package cmd

import (
	"fmt"
	"log"
	"time"

	"insight-rules/internal/formatters"
	"insight-rules/internal/publisher"

	"github.com/spf13/cobra"
)

var (
	reportName            string
	reportRegion          string
	reportWindow          time.Duration
	reportPeriod          time.Duration
	reportMaxContributors int64
	reportOutput          string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch top contributors for a deployed rule",
	Long: `Fetch the contributor report for a rule over a trailing time window
ending now.

Examples:
  # Top contributors over the last 3 hours
  insight-rules report --name top-talkers --window 3h

  # Finer granularity, JSON output
  insight-rules report --name top-talkers --window 1h \
    --period 1m --max-contributors 25 --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		runReport()
	},
}

func init() {
	reportCmd.Flags().StringVarP(&reportName, "name", "n", "", "Rule name")
	reportCmd.Flags().StringVar(&reportRegion, "region", "", "AWS region (or use AWS_REGION env var)")
	reportCmd.Flags().DurationVar(&reportWindow, "window", 3*time.Hour, "Trailing window to report over")
	reportCmd.Flags().DurationVar(&reportPeriod, "period", 5*time.Minute, "Aggregation period")
	reportCmd.Flags().Int64Var(&reportMaxContributors, "max-contributors", 10, "Maximum number of contributors to return")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "text", "Output format: text or json")
}

func runReport() {
	if reportName == "" {
		log.Fatal("Error: --name is required")
	}

	report, err := publisher.FetchRuleReport(publisher.ReportConfig{
		Region:          reportRegion,
		RuleName:        reportName,
		Window:          reportWindow,
		Period:          reportPeriod,
		MaxContributors: reportMaxContributors,
	})
	if err != nil {
		log.Fatalf("Error: Failed to fetch report: %v", err)
	}

	switch reportOutput {
	case "text":
		fmt.Print(formatters.ReportText(report))
	case "json":
		formatters.ReportJSON(report)
	default:
		log.Fatalf("Error: Unknown output format: %s. Valid formats: text, json", reportOutput)
	}
}
