package publisher

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

// Rule states accepted by the control plane.
const (
	StateEnabled  = "ENABLED"
	StateDisabled = "DISABLED"
)

// Client publishes and manages Contributor Insights rules through the
// CloudWatch API. The rendered rule body is handed over as an opaque
// definition string.
type Client struct {
	region string
	cw     cloudwatchiface.CloudWatchAPI
}

func NewClient(region string) (*Client, error) {
	if region == "" {
		return nil, fmt.Errorf("AWS region is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Client{
		region: region,
		cw:     cloudwatch.New(sess),
	}, nil
}

func NewClientFromEnv() (*Client, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-west-1"
	}
	return NewClient(region)
}

func (c *Client) GetRegion() string {
	return c.region
}

// RuleInfo summarizes a deployed rule.
type RuleInfo struct {
	Name       string `json:"name"`
	State      string `json:"state"`
	Schema     string `json:"schema"`
	Definition string `json:"definition"`
}

// PutRule creates or replaces a rule with the given definition string.
func (c *Client) PutRule(name, state, definition string) error {
	if name == "" {
		return fmt.Errorf("rule name is required")
	}
	if state != StateEnabled && state != StateDisabled {
		return fmt.Errorf("invalid rule state %q, want %s or %s", state, StateEnabled, StateDisabled)
	}
	if strings.TrimSpace(definition) == "" {
		return fmt.Errorf("rule definition is required")
	}

	_, err := c.cw.PutInsightRule(&cloudwatch.PutInsightRuleInput{
		RuleName:       aws.String(name),
		RuleState:      aws.String(state),
		RuleDefinition: aws.String(definition),
	})
	if err != nil {
		return fmt.Errorf("failed to put rule %s: %w", name, err)
	}
	return nil
}

// DeleteRules permanently removes the named rules.
func (c *Client) DeleteRules(names ...string) error {
	out, err := c.cw.DeleteInsightRules(&cloudwatch.DeleteInsightRulesInput{
		RuleNames: aws.StringSlice(names),
	})
	if err != nil {
		return fmt.Errorf("failed to delete rules: %w", err)
	}
	return partialFailureError("delete", out.Failures)
}

// EnableRules starts evaluation of the named rules.
func (c *Client) EnableRules(names ...string) error {
	out, err := c.cw.EnableInsightRules(&cloudwatch.EnableInsightRulesInput{
		RuleNames: aws.StringSlice(names),
	})
	if err != nil {
		return fmt.Errorf("failed to enable rules: %w", err)
	}
	return partialFailureError("enable", out.Failures)
}

// DisableRules pauses evaluation of the named rules without deleting them.
func (c *Client) DisableRules(names ...string) error {
	out, err := c.cw.DisableInsightRules(&cloudwatch.DisableInsightRulesInput{
		RuleNames: aws.StringSlice(names),
	})
	if err != nil {
		return fmt.Errorf("failed to disable rules: %w", err)
	}
	return partialFailureError("disable", out.Failures)
}

// ListRules returns every rule in the account/region, following pagination.
func (c *Client) ListRules() ([]RuleInfo, error) {
	var rules []RuleInfo
	var nextToken *string

	for {
		out, err := c.cw.DescribeInsightRules(&cloudwatch.DescribeInsightRulesInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list rules: %w", err)
		}

		for _, r := range out.InsightRules {
			rules = append(rules, RuleInfo{
				Name:       aws.StringValue(r.Name),
				State:      aws.StringValue(r.State),
				Schema:     aws.StringValue(r.Schema),
				Definition: aws.StringValue(r.Definition),
			})
		}

		nextToken = out.NextToken
		if nextToken == nil {
			break
		}
	}

	return rules, nil
}

// Contributor is one ranked contributor in a report.
type Contributor struct {
	Keys           []string `json:"keys"`
	AggregateValue float64  `json:"aggregate_value"`
}

// Report holds the contributor data returned for a rule over a time window.
type Report struct {
	RuleName             string        `json:"rule_name"`
	StartTime            time.Time     `json:"start_time"`
	EndTime              time.Time     `json:"end_time"`
	KeyLabels            []string      `json:"key_labels"`
	AggregationStatistic string        `json:"aggregation_statistic"`
	AggregateValue       float64       `json:"aggregate_value"`
	UniqueContributors   int64         `json:"unique_contributors"`
	Contributors         []Contributor `json:"contributors"`
}

// FetchReport retrieves the top contributors for a rule between start and
// end, aggregated at the given period.
func (c *Client) FetchReport(name string, start, end time.Time, period time.Duration, maxContributors int64) (*Report, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name is required")
	}
	if !end.After(start) {
		return nil, fmt.Errorf("report window end %s is not after start %s", end, start)
	}

	out, err := c.cw.GetInsightRuleReport(&cloudwatch.GetInsightRuleReportInput{
		RuleName:            aws.String(name),
		StartTime:           aws.Time(start),
		EndTime:             aws.Time(end),
		Period:              aws.Int64(int64(period / time.Second)),
		MaxContributorCount: aws.Int64(maxContributors),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch report for rule %s: %w", name, err)
	}

	report := &Report{
		RuleName:             name,
		StartTime:            start,
		EndTime:              end,
		KeyLabels:            aws.StringValueSlice(out.KeyLabels),
		AggregationStatistic: aws.StringValue(out.AggregationStatistic),
		AggregateValue:       aws.Float64Value(out.AggregateValue),
		UniqueContributors:   aws.Int64Value(out.ApproximateUniqueCount),
	}
	for _, contrib := range out.Contributors {
		report.Contributors = append(report.Contributors, Contributor{
			Keys:           aws.StringValueSlice(contrib.Keys),
			AggregateValue: aws.Float64Value(contrib.ApproximateAggregateValue),
		})
	}
	return report, nil
}

// partialFailureError turns the per-rule failures of a batch call into a
// single error, or nil when every rule succeeded.
func partialFailureError(op string, failures []*cloudwatch.PartialFailure) error {
	if len(failures) == 0 {
		return nil
	}

	var parts []string
	for _, f := range failures {
		parts = append(parts, fmt.Sprintf("%s: %s",
			aws.StringValue(f.FailureResource), aws.StringValue(f.FailureDescription)))
	}
	return fmt.Errorf("failed to %s %d rule(s): %s", op, len(failures), strings.Join(parts, "; "))
}
