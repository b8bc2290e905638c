package formatters

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"insight-rules/internal/publisher"
)

// RulesText prints a human-readable listing of deployed rules.
func RulesText(rules []publisher.RuleInfo) {
	fmt.Printf("Contributor Insights Rules\n")
	fmt.Printf("==========================\n\n")

	if len(rules) == 0 {
		fmt.Println("(no rules deployed)")
		return
	}

	for _, rule := range rules {
		fmt.Printf("%s [%s] schema=%s\n", rule.Name, rule.State, rule.Schema)
	}
	fmt.Printf("\nTotal: %d rule(s)\n", len(rules))
}

// RulesJSON prints the rule listing as JSON.
func RulesJSON(rules []publisher.RuleInfo) {
	if rules == nil {
		rules = []publisher.RuleInfo{}
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling JSON: %v", err)
	}
	fmt.Println(string(data))
}

// ReportText renders a contributor report as readable text.
func ReportText(report *publisher.Report) string {
	var output strings.Builder

	fmt.Fprintf(&output, "Contributor Report for %s\n", report.RuleName)
	fmt.Fprintf(&output, "Window: %s .. %s\n",
		report.StartTime.Format("2006-01-02 15:04"), report.EndTime.Format("2006-01-02 15:04"))
	fmt.Fprintf(&output, "Aggregation: %s, total %.1f across ~%d unique contributor(s)\n\n",
		report.AggregationStatistic, report.AggregateValue, report.UniqueContributors)

	if len(report.Contributors) == 0 {
		output.WriteString("(no contributors in window)\n")
		return output.String()
	}

	fmt.Fprintf(&output, "Top contributors by %s:\n", strings.Join(report.KeyLabels, ", "))
	for i, contrib := range report.Contributors {
		fmt.Fprintf(&output, "%3d. %s  %.1f\n", i+1, strings.Join(contrib.Keys, " / "), contrib.AggregateValue)
	}
	return output.String()
}

// ReportJSON prints a contributor report as JSON.
func ReportJSON(report *publisher.Report) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Error marshaling JSON: %v", err)
	}
	fmt.Println(string(data))
}

// DefinitionPretty re-indents a rendered rule body for display.
func DefinitionPretty(definition string) (string, error) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(definition), &parsed); err != nil {
		return "", fmt.Errorf("failed to parse rule definition: %w", err)
	}
	data, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
