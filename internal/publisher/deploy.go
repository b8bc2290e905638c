package publisher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"insight-rules/internal/rulebody"
)

// DeployConfig describes one rule deployment.
type DeployConfig struct {
	Region   string
	RuleName string
	State    string
	BodyFile string
	// Custom skips defaulting and validation and ships the file content
	// verbatim, for schema versions this tool does not model.
	Custom bool
}

// ReportConfig describes a contributor-report request over a trailing
// window ending now.
type ReportConfig struct {
	Region          string
	RuleName        string
	Window          time.Duration
	Period          time.Duration
	MaxContributors int64
}

// RenderBody produces the definition string for a deployment: the full
// build pipeline for modelled descriptions, or the raw file content on the
// custom path. YAML descriptions are detected by file extension.
func RenderBody(cfg DeployConfig) (string, error) {
	if cfg.Custom {
		data, err := os.ReadFile(cfg.BodyFile)
		if err != nil {
			return "", err
		}
		return rulebody.Custom(string(data))
	}

	switch filepath.Ext(cfg.BodyFile) {
	case ".yaml", ".yml":
		return rulebody.BuildFromYAMLFile(cfg.BodyFile)
	default:
		return rulebody.BuildFromFile(cfg.BodyFile)
	}
}

// DeployRule renders the rule body and publishes it.
func DeployRule(cfg DeployConfig) error {
	definition, err := RenderBody(cfg)
	if err != nil {
		return fmt.Errorf("failed to render rule body from %s: %w", cfg.BodyFile, err)
	}

	client, err := NewClient(resolveRegion(cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to create CloudWatch client: %w", err)
	}

	state := cfg.State
	if state == "" {
		state = StateEnabled
	}

	if err := client.PutRule(cfg.RuleName, state, definition); err != nil {
		return err
	}

	fmt.Printf("Deployed rule %s (%s) in %s\n", cfg.RuleName, state, client.GetRegion())
	return nil
}

// RemoveRules deletes the named rules.
func RemoveRules(region string, names ...string) error {
	client, err := NewClient(resolveRegion(region))
	if err != nil {
		return fmt.Errorf("failed to create CloudWatch client: %w", err)
	}
	return client.DeleteRules(names...)
}

// FetchRuleReport fetches contributor data for the trailing window in the
// config.
func FetchRuleReport(cfg ReportConfig) (*Report, error) {
	client, err := NewClient(resolveRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to create CloudWatch client: %w", err)
	}

	end := time.Now()
	start := end.Add(-cfg.Window)
	return client.FetchReport(cfg.RuleName, start, end, cfg.Period, cfg.MaxContributors)
}

func resolveRegion(region string) string {
	if region != "" {
		return region
	}
	if env := os.Getenv("AWS_REGION"); env != "" {
		return env
	}
	return "eu-west-1"
}
