// Package rulebody builds, validates, and serializes Contributor Insights
// rule bodies. A RuleBody is an immutable description: Build fills in
// defaults on a copy, checks the structural constraints of the version-1
// log schema, and renders the capitalized wire JSON consumed by the
// CloudWatch control plane.
package rulebody

import (
	"encoding/json"
	"fmt"
)

// The one schema identifier this package models. Other schema versions go
// through Custom.
const (
	SchemaName    = "CloudWatchLogRule"
	SchemaVersion = 1
)

// LogFormat identifies how the referenced log groups are encoded.
type LogFormat string

const (
	LogFormatJSON LogFormat = "JSON"
	LogFormatCLF  LogFormat = "CLF"
)

// Aggregate selects how contributor values are aggregated.
type Aggregate string

const (
	AggregateOnCount Aggregate = "Count"
	AggregateOnSum   Aggregate = "Sum"
)

// Bounds imposed by the version-1 log schema.
const (
	maxContributionKeys    = 4
	maxContributionFilters = 4
)

// Schema names the rule-body schema a description targets.
type Schema struct {
	Name    string `json:"name" yaml:"name"`
	Version int    `json:"version" yaml:"version"`
}

// RuleBody describes a version-1 log-based monitoring rule. Field tags use
// the non-capitalized description names accepted by the file loaders; the
// capitalized wire names are produced only by Render.
type RuleBody struct {
	// Schema may be left nil to accept the recognized constant.
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`

	// LogGroupNames are the data sources the rule reads. Required.
	LogGroupNames []string `json:"logGroupNames" yaml:"logGroupNames"`

	// LogFormat is inferred when empty: CLF if field aliases are present,
	// JSON otherwise.
	LogFormat LogFormat `json:"logFormat,omitempty" yaml:"logFormat,omitempty"`

	// Fields aliases CLF field indexes to names. Only meaningful for CLF.
	Fields map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`

	// Keys classify contributors. At most four.
	Keys []string `json:"contributionKeys" yaml:"contributionKeys"`

	// ValueOf sorts contributors by a field's value. Only meaningful when
	// aggregating on Sum.
	ValueOf string `json:"valueField,omitempty" yaml:"valueField,omitempty"`

	// Filters narrow the included log events, AND-combined. At most four.
	Filters []Filter `json:"contributionFilters,omitempty" yaml:"contributionFilters,omitempty"`

	// AggregateOn is inferred when empty: Sum if ValueOf is set, Count
	// otherwise.
	AggregateOn Aggregate `json:"aggregation,omitempty" yaml:"aggregation,omitempty"`
}

// WithDefaults returns a copy of the description with every inferable field
// filled in. The receiver is not modified. Applying it to an already-full
// description is a no-op.
func (b RuleBody) WithDefaults() RuleBody {
	out := b
	if out.Schema == nil {
		out.Schema = &Schema{Name: SchemaName, Version: SchemaVersion}
	}
	if out.LogFormat == "" {
		if len(out.Fields) > 0 {
			out.LogFormat = LogFormatCLF
		} else {
			out.LogFormat = LogFormatJSON
		}
	}
	if out.AggregateOn == "" {
		if out.ValueOf != "" {
			out.AggregateOn = AggregateOnSum
		} else {
			out.AggregateOn = AggregateOnCount
		}
	}
	// The wire schema requires the Filters key even when no filter is set.
	if out.Filters == nil {
		out.Filters = []Filter{}
	}
	return out
}

// Validate checks the description against the version-1 log schema
// constraints. It expects defaults to have been applied already.
func (b RuleBody) Validate() error {
	if b.Schema == nil || b.Schema.Name != SchemaName || b.Schema.Version != SchemaVersion {
		return &SchemaValidationError{
			Field: "schema",
			Message: fmt.Sprintf("got %s, the only recognized schema is {%s, %d}",
				describeSchema(b.Schema), SchemaName, SchemaVersion),
		}
	}
	if n := len(b.Keys); n > maxContributionKeys {
		return &SchemaValidationError{
			Field:   "contributionKeys",
			Message: fmt.Sprintf("%d keys exceed the maximum of %d", n, maxContributionKeys),
		}
	}
	if n := len(b.Filters); n > maxContributionFilters {
		return &SchemaValidationError{
			Field:   "contributionFilters",
			Message: fmt.Sprintf("%d filters exceed the maximum of %d", n, maxContributionFilters),
		}
	}
	if len(b.LogGroupNames) == 0 {
		return &SchemaValidationError{
			Field:   "logGroupNames",
			Message: "at least one log group is required",
		}
	}
	return nil
}

func describeSchema(s *Schema) string {
	if s == nil {
		return "none"
	}
	return fmt.Sprintf("{%s, %d}", s.Name, s.Version)
}

// Render maps the description onto its capitalized wire shape. Optional
// fields that were never supplied are omitted entirely; they are never
// emitted as null.
func (b RuleBody) Render() (map[string]interface{}, error) {
	filters := make([]interface{}, 0, len(b.Filters))
	for _, f := range b.Filters {
		rendered, err := f.Render()
		if err != nil {
			return nil, err
		}
		filters = append(filters, rendered)
	}

	keys := b.Keys
	if keys == nil {
		keys = []string{}
	}
	contribution := map[string]interface{}{
		"Keys":    keys,
		"Filters": filters,
	}
	if b.ValueOf != "" {
		contribution["ValueOf"] = b.ValueOf
	}

	out := map[string]interface{}{
		"Schema": map[string]interface{}{
			"Name":    b.Schema.Name,
			"Version": b.Schema.Version,
		},
		"LogGroupNames": b.LogGroupNames,
		"LogFormat":     string(b.LogFormat),
		"Contribution":  contribution,
		"AggregateOn":   string(b.AggregateOn),
	}
	if len(b.Fields) > 0 {
		out["Fields"] = b.Fields
	}
	return out, nil
}

// Build runs the full pipeline on a description: default inference,
// validation, then rendering to the wire JSON string.
func Build(body RuleBody) (string, error) {
	full := body.WithDefaults()
	if err := full.Validate(); err != nil {
		return "", err
	}
	rendered, err := full.Render()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(rendered)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Custom serializes an already-built rule body of any schema version as-is,
// bypassing defaulting, validation, and key mapping. A raw string is
// returned verbatim; anything else is marshalled to JSON unchanged.
func Custom(body interface{}) (string, error) {
	if s, ok := body.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
