package rulebody

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Statistic selects how a field that occurs multiple times within a single
// log event contributes to a filter comparison.
type Statistic string

const (
	StatisticSum     Statistic = "SUM"
	StatisticCount   Statistic = "COUNT"
	StatisticAverage Statistic = "AVERAGE"
)

// Wire names of the filter operations.
const (
	opIn          = "In"
	opNotIn       = "NotIn"
	opStartsWith  = "StartsWith"
	opGreaterThan = "GreaterThan"
	opLessThan    = "LessThan"
	opEqualTo     = "EqualTo"
	opNotEqualTo  = "NotEqualTo"
	opIsPresent   = "IsPresent"
)

// Bounds on the operand list of the text-set operations.
const (
	minOperandValues = 1
	maxOperandValues = 10
)

// operation couples a wire key with its operand so that a filter can never
// hold a mismatched pair. A nil operation means none has been selected.
type operation struct {
	key     string
	operand interface{}
}

// Filter is a single predicate over a named log field. The zero-ish value
// returned by NewFilter has no operation selected and is not renderable
// until one of the operation methods is called. All methods are
// value-semantics: they return a modified copy and leave the receiver
// untouched.
type Filter struct {
	match      string
	op         *operation
	ignoreCase *bool
	statistic  Statistic
}

// NewFilter starts a filter inspecting the given log field.
func NewFilter(match string) Filter {
	return Filter{match: match}
}

// In matches events whose field equals one of the given values.
func (f Filter) In(values ...string) (Filter, error) {
	return f.textSet(opIn, values)
}

// NotIn matches events whose field equals none of the given values.
func (f Filter) NotIn(values ...string) (Filter, error) {
	return f.textSet(opNotIn, values)
}

// StartsWith matches events whose field starts with one of the given values.
func (f Filter) StartsWith(values ...string) (Filter, error) {
	return f.textSet(opStartsWith, values)
}

func (f Filter) textSet(key string, values []string) (Filter, error) {
	if len(values) < minOperandValues || len(values) > maxOperandValues {
		return f, &OperandCardinalityError{
			Operation: key,
			Length:    len(values),
			Min:       minOperandValues,
			Max:       maxOperandValues,
		}
	}
	f.op = &operation{key: key, operand: append([]string(nil), values...)}
	return f, nil
}

// GreaterThan matches events whose field exceeds n.
func (f Filter) GreaterThan(n float64) Filter {
	f.op = &operation{key: opGreaterThan, operand: n}
	return f
}

// LessThan matches events whose field is below n.
func (f Filter) LessThan(n float64) Filter {
	f.op = &operation{key: opLessThan, operand: n}
	return f
}

// EqualTo matches events whose field equals n.
func (f Filter) EqualTo(n float64) Filter {
	f.op = &operation{key: opEqualTo, operand: n}
	return f
}

// NotEqualTo matches events whose field differs from n.
func (f Filter) NotEqualTo(n float64) Filter {
	f.op = &operation{key: opNotEqualTo, operand: n}
	return f
}

// IsPresent matches events by whether the field exists at all.
func (f Filter) IsPresent(present bool) Filter {
	f.op = &operation{key: opIsPresent, operand: present}
	return f
}

// WithIgnoreCase makes text comparisons case-insensitive. Only meaningful
// for the text-set operations.
func (f Filter) WithIgnoreCase(ignore bool) Filter {
	f.ignoreCase = &ignore
	return f
}

// WithStatistic selects how repeated occurrences of the field within one
// event are combined before comparison.
func (f Filter) WithStatistic(s Statistic) Filter {
	f.statistic = s
	return f
}

// Render produces the capitalized wire fragment for this filter:
// {"Match": field, "<Op>": operand} plus IgnoreCase and Statistic when they
// were explicitly set. Unset options are omitted entirely.
func (f Filter) Render() (map[string]interface{}, error) {
	if f.op == nil {
		return nil, &IncompleteFilterError{Match: f.match}
	}
	out := map[string]interface{}{
		"Match":  f.match,
		f.op.key: f.op.operand,
	}
	if f.ignoreCase != nil {
		out["IgnoreCase"] = *f.ignoreCase
	}
	if f.statistic != "" {
		out["Statistic"] = string(f.statistic)
	}
	return out, nil
}

// filterSpec is the non-capitalized description shape a filter takes in
// JSON/YAML rule description files.
type filterSpec struct {
	Match       string    `json:"match" yaml:"match"`
	In          []string  `json:"in,omitempty" yaml:"in,omitempty"`
	NotIn       []string  `json:"notIn,omitempty" yaml:"notIn,omitempty"`
	StartsWith  []string  `json:"startsWith,omitempty" yaml:"startsWith,omitempty"`
	GreaterThan *float64  `json:"greaterThan,omitempty" yaml:"greaterThan,omitempty"`
	LessThan    *float64  `json:"lessThan,omitempty" yaml:"lessThan,omitempty"`
	EqualTo     *float64  `json:"equalTo,omitempty" yaml:"equalTo,omitempty"`
	NotEqualTo  *float64  `json:"notEqualTo,omitempty" yaml:"notEqualTo,omitempty"`
	IsPresent   *bool     `json:"isPresent,omitempty" yaml:"isPresent,omitempty"`
	IgnoreCase  *bool     `json:"ignoreCase,omitempty" yaml:"ignoreCase,omitempty"`
	Statistic   Statistic `json:"statistic,omitempty" yaml:"statistic,omitempty"`
}

func (s filterSpec) toFilter() (Filter, error) {
	f := NewFilter(s.Match)
	ops := 0
	var err error

	if s.In != nil {
		if f, err = f.In(s.In...); err != nil {
			return Filter{}, err
		}
		ops++
	}
	if s.NotIn != nil {
		if f, err = f.NotIn(s.NotIn...); err != nil {
			return Filter{}, err
		}
		ops++
	}
	if s.StartsWith != nil {
		if f, err = f.StartsWith(s.StartsWith...); err != nil {
			return Filter{}, err
		}
		ops++
	}
	if s.GreaterThan != nil {
		f = f.GreaterThan(*s.GreaterThan)
		ops++
	}
	if s.LessThan != nil {
		f = f.LessThan(*s.LessThan)
		ops++
	}
	if s.EqualTo != nil {
		f = f.EqualTo(*s.EqualTo)
		ops++
	}
	if s.NotEqualTo != nil {
		f = f.NotEqualTo(*s.NotEqualTo)
		ops++
	}
	if s.IsPresent != nil {
		f = f.IsPresent(*s.IsPresent)
		ops++
	}
	if ops > 1 {
		return Filter{}, fmt.Errorf("filter on %q selects %d operations, want exactly one", s.Match, ops)
	}

	if s.IgnoreCase != nil {
		f = f.WithIgnoreCase(*s.IgnoreCase)
	}
	if s.Statistic != "" {
		f = f.WithStatistic(s.Statistic)
	}
	return f, nil
}

func (f Filter) toSpec() filterSpec {
	s := filterSpec{
		Match:      f.match,
		IgnoreCase: f.ignoreCase,
		Statistic:  f.statistic,
	}
	if f.op == nil {
		return s
	}
	switch f.op.key {
	case opIn:
		s.In = f.op.operand.([]string)
	case opNotIn:
		s.NotIn = f.op.operand.([]string)
	case opStartsWith:
		s.StartsWith = f.op.operand.([]string)
	case opGreaterThan:
		n := f.op.operand.(float64)
		s.GreaterThan = &n
	case opLessThan:
		n := f.op.operand.(float64)
		s.LessThan = &n
	case opEqualTo:
		n := f.op.operand.(float64)
		s.EqualTo = &n
	case opNotEqualTo:
		n := f.op.operand.(float64)
		s.NotEqualTo = &n
	case opIsPresent:
		b := f.op.operand.(bool)
		s.IsPresent = &b
	}
	return s
}

// UnmarshalJSON decodes a filter from its description shape. A description
// selecting more than one operation is rejected; one selecting none yields
// a filter that fails at render time.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var s filterSpec
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := s.toFilter()
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalJSON encodes a filter back into its description shape.
func (f Filter) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toSpec())
}

// UnmarshalYAML decodes a filter from a YAML rule description.
func (f *Filter) UnmarshalYAML(value *yaml.Node) error {
	var s filterSpec
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := s.toFilter()
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// MarshalYAML encodes a filter back into its description shape.
func (f Filter) MarshalYAML() (interface{}, error) {
	return f.toSpec(), nil
}
