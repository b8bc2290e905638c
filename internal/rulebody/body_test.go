package rulebody

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func mustFilter(t *testing.T, f Filter, err error) Filter {
	t.Helper()
	if err != nil {
		t.Fatalf("building filter: %v", err)
	}
	return f
}

func buildToMap(t *testing.T, body RuleBody) map[string]interface{} {
	t.Helper()
	rendered, err := Build(body)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(rendered), &parsed); err != nil {
		t.Fatalf("parsing built body: %v", err)
	}
	return parsed
}

func TestBuildMinimalDescription(t *testing.T) {
	parsed := buildToMap(t, RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
	})

	if parsed["LogFormat"] != "JSON" {
		t.Errorf("LogFormat = %v, want JSON", parsed["LogFormat"])
	}
	if parsed["AggregateOn"] != "Count" {
		t.Errorf("AggregateOn = %v, want Count", parsed["AggregateOn"])
	}

	schema, ok := parsed["Schema"].(map[string]interface{})
	if !ok {
		t.Fatalf("Schema missing: %v", parsed)
	}
	if schema["Name"] != "CloudWatchLogRule" || schema["Version"] != 1.0 {
		t.Errorf("Schema = %v, want {CloudWatchLogRule, 1}", schema)
	}

	contribution, ok := parsed["Contribution"].(map[string]interface{})
	if !ok {
		t.Fatalf("Contribution missing: %v", parsed)
	}
	filters, ok := contribution["Filters"].([]interface{})
	if !ok {
		t.Fatalf("Contribution.Filters must be present as a list: %v", contribution)
	}
	if len(filters) != 0 {
		t.Errorf("Filters = %v, want empty list", filters)
	}

	if _, ok := parsed["Fields"]; ok {
		t.Error("Fields emitted although no aliases were supplied")
	}
	if _, ok := contribution["ValueOf"]; ok {
		t.Error("ValueOf emitted although no value field was supplied")
	}
}

func TestBuildInfersCLFFromFieldAliases(t *testing.T) {
	parsed := buildToMap(t, RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
		Fields:        map[string]string{"1": "x"},
	})

	if parsed["LogFormat"] != "CLF" {
		t.Errorf("LogFormat = %v, want CLF", parsed["LogFormat"])
	}
	fields, ok := parsed["Fields"].(map[string]interface{})
	if !ok || fields["1"] != "x" {
		t.Errorf("Fields = %v, want {1: x}", parsed["Fields"])
	}
}

func TestBuildInfersSumFromValueField(t *testing.T) {
	parsed := buildToMap(t, RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
		ValueOf:       "bytesTransferred",
	})

	if parsed["AggregateOn"] != "Sum" {
		t.Errorf("AggregateOn = %v, want Sum", parsed["AggregateOn"])
	}
	contribution := parsed["Contribution"].(map[string]interface{})
	if contribution["ValueOf"] != "bytesTransferred" {
		t.Errorf("ValueOf = %v, want bytesTransferred", contribution["ValueOf"])
	}
}

func TestWithDefaultsIsIdempotent(t *testing.T) {
	body := RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
		ValueOf:       "bytes",
	}

	once := body.WithDefaults()
	twice := once.WithDefaults()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("WithDefaults not idempotent: %+v != %+v", once, twice)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	body := RuleBody{
		Schema:        &Schema{Name: SchemaName, Version: SchemaVersion},
		LogGroupNames: []string{"g"},
		LogFormat:     LogFormatJSON,
		Fields:        map[string]string{"1": "x"},
		Keys:          []string{"k"},
		AggregateOn:   AggregateOnCount,
		Filters:       []Filter{},
	}

	if got := body.WithDefaults(); !reflect.DeepEqual(got, body) {
		t.Errorf("defaults changed a fully specified description: %+v != %+v", got, body)
	}
}

func TestWithDefaultsDoesNotMutateInput(t *testing.T) {
	body := RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
	}

	_ = body.WithDefaults()

	if body.Schema != nil || body.LogFormat != "" || body.AggregateOn != "" || body.Filters != nil {
		t.Errorf("WithDefaults mutated its input: %+v", body)
	}
}

func TestContributionKeysBound(t *testing.T) {
	atLimit := RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"a", "b", "c", "d"},
	}
	if _, err := Build(atLimit); err != nil {
		t.Errorf("four keys should validate, got %v", err)
	}

	over := atLimit
	over.Keys = append([]string{"a", "b", "c", "d"}, "e")
	_, err := Build(over)

	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got %v, want SchemaValidationError", err)
	}
	if schemaErr.Field != "contributionKeys" {
		t.Errorf("Field = %q, want contributionKeys", schemaErr.Field)
	}
}

func TestContributionFiltersBound(t *testing.T) {
	filter := func() Filter {
		return NewFilter("status").EqualTo(200)
	}

	atLimit := RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
		Filters:       []Filter{filter(), filter(), filter(), filter()},
	}
	if _, err := Build(atLimit); err != nil {
		t.Errorf("four filters should validate, got %v", err)
	}

	over := atLimit
	over.Filters = append(over.Filters[:4:4], filter())
	_, err := Build(over)

	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got %v, want SchemaValidationError", err)
	}
	if schemaErr.Field != "contributionFilters" {
		t.Errorf("Field = %q, want contributionFilters", schemaErr.Field)
	}
}

func TestSchemaValueEquality(t *testing.T) {
	// A caller-supplied schema that value-equals the constant must pass.
	ok := RuleBody{
		Schema:        &Schema{Name: "CloudWatchLogRule", Version: 1},
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
	}
	if _, err := Build(ok); err != nil {
		t.Errorf("matching schema rejected: %v", err)
	}

	mismatched := ok
	mismatched.Schema = &Schema{Name: "CloudWatchLogRule", Version: 2}
	_, err := Build(mismatched)

	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got %v, want SchemaValidationError", err)
	}
	if schemaErr.Field != "schema" {
		t.Errorf("Field = %q, want schema", schemaErr.Field)
	}
}

func TestMissingLogGroupsRejected(t *testing.T) {
	_, err := Build(RuleBody{Keys: []string{"k"}})

	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got %v, want SchemaValidationError", err)
	}
	if schemaErr.Field != "logGroupNames" {
		t.Errorf("Field = %q, want logGroupNames", schemaErr.Field)
	}
}

func TestBuildSurfacesIncompleteFilter(t *testing.T) {
	body := RuleBody{
		LogGroupNames: []string{"g"},
		Keys:          []string{"k"},
		Filters:       []Filter{NewFilter("status")},
	}

	_, err := Build(body)

	var incomplete *IncompleteFilterError
	if !errors.As(err, &incomplete) {
		t.Fatalf("got %v, want IncompleteFilterError", err)
	}
}

func TestBuildFullDescription(t *testing.T) {
	methodFilterValue, methodFilterErr := NewFilter("httpMethod").In("PUT", "POST")
	methodFilter := mustFilter(t, methodFilterValue, methodFilterErr)
	body := RuleBody{
		LogGroupNames: []string{"/api/requests", "/api/errors"},
		LogFormat:     LogFormatJSON,
		Keys:          []string{"sourceIp", "userAgent"},
		ValueOf:       "bytesTransferred",
		Filters: []Filter{
			methodFilter.WithIgnoreCase(true),
			NewFilter("bytesTransferred").GreaterThan(0),
		},
		AggregateOn: AggregateOnSum,
	}

	got := buildToMap(t, body)

	want := map[string]interface{}{
		"Schema": map[string]interface{}{
			"Name":    "CloudWatchLogRule",
			"Version": 1.0,
		},
		"LogGroupNames": []interface{}{"/api/requests", "/api/errors"},
		"LogFormat":     "JSON",
		"Contribution": map[string]interface{}{
			"Keys":    []interface{}{"sourceIp", "userAgent"},
			"ValueOf": "bytesTransferred",
			"Filters": []interface{}{
				map[string]interface{}{
					"Match":      "httpMethod",
					"In":         []interface{}{"PUT", "POST"},
					"IgnoreCase": true,
				},
				map[string]interface{}{
					"Match":       "bytesTransferred",
					"GreaterThan": 0.0,
				},
			},
		},
		"AggregateOn": "Sum",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("built body = %v, want %v", got, want)
	}
}

func TestBuildNeverEmitsNulls(t *testing.T) {
	parsed := buildToMap(t, RuleBody{
		LogGroupNames: []string{"g"},
	})

	var checkNoNulls func(t *testing.T, path string, v interface{})
	checkNoNulls = func(t *testing.T, path string, v interface{}) {
		switch val := v.(type) {
		case nil:
			t.Errorf("null value at %s", path)
		case map[string]interface{}:
			for k, child := range val {
				checkNoNulls(t, path+"."+k, child)
			}
		case []interface{}:
			for _, child := range val {
				checkNoNulls(t, path, child)
			}
		}
	}
	checkNoNulls(t, "$", parsed)

	contribution := parsed["Contribution"].(map[string]interface{})
	if contribution["Keys"] == nil {
		t.Error("Contribution.Keys rendered as null instead of empty list")
	}
}

func TestCustomPassthrough(t *testing.T) {
	raw := `{"Schema": {"Name": "Other", "Version": 7}, "Whatever": true}`
	got, err := Custom(raw)
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	if got != raw {
		t.Errorf("Custom changed a raw string: %q", got)
	}

	structured := map[string]interface{}{"Schema": "unmodelled", "Nested": []int{1, 2}}
	got, err = Custom(structured)
	if err != nil {
		t.Fatalf("Custom: %v", err)
	}
	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("Custom produced invalid JSON: %v", err)
	}
	if parsed["Schema"] != "unmodelled" {
		t.Errorf("Custom altered the structure: %v", parsed)
	}
}
