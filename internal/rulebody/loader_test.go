package rulebody

import (
	"encoding/json"
	"errors"
	"os"
	"reflect"
	"testing"
)

func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	f.Close()
	return f.Name()
}

func TestBuildFromFile(t *testing.T) {
	path := writeTemp(t, "rule_*.json", `{
  "logGroupNames": ["/api/requests"],
  "contributionKeys": ["sourceIp"],
  "valueField": "bytesTransferred",
  "contributionFilters": [
    {"match": "httpMethod", "in": ["PUT"], "ignoreCase": true}
  ]
}`)

	got, err := BuildFromFile(path)
	if err != nil {
		t.Fatalf("BuildFromFile: %v", err)
	}

	filter, ferr := NewFilter("httpMethod").In("PUT")
	if ferr != nil {
		t.Fatalf("In: %v", ferr)
	}
	want, err := Build(RuleBody{
		LogGroupNames: []string{"/api/requests"},
		Keys:          []string{"sourceIp"},
		ValueOf:       "bytesTransferred",
		Filters:       []Filter{filter.WithIgnoreCase(true)},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var gotParsed, wantParsed map[string]interface{}
	if err := json.Unmarshal([]byte(got), &gotParsed); err != nil {
		t.Fatalf("parsing file-built body: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &wantParsed); err != nil {
		t.Fatalf("parsing in-memory body: %v", err)
	}
	if !reflect.DeepEqual(gotParsed, wantParsed) {
		t.Errorf("file path and in-memory path disagree:\n%v\n%v", gotParsed, wantParsed)
	}
}

func TestBuildFromYAMLFile(t *testing.T) {
	path := writeTemp(t, "rule_*.yaml", `
logGroupNames:
  - /api/requests
contributionKeys:
  - sourceIp
contributionFilters:
  - match: status
    equalTo: 500
`)

	got, err := BuildFromYAMLFile(path)
	if err != nil {
		t.Fatalf("BuildFromYAMLFile: %v", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(got), &parsed); err != nil {
		t.Fatalf("parsing built body: %v", err)
	}
	contribution := parsed["Contribution"].(map[string]interface{})
	filters := contribution["Filters"].([]interface{})
	if len(filters) != 1 {
		t.Fatalf("Filters = %v, want one entry", filters)
	}
	f := filters[0].(map[string]interface{})
	if f["Match"] != "status" || f["EqualTo"] != 500.0 {
		t.Errorf("filter = %v, want {Match: status, EqualTo: 500}", f)
	}
}

func TestBuildFromFileMissingFile(t *testing.T) {
	_, err := BuildFromFile("/nonexistent/rule.json")
	if !os.IsNotExist(err) {
		t.Errorf("got %v, want file-not-exist error passed through", err)
	}
}

func TestBuildFromFileParseErrorPropagates(t *testing.T) {
	path := writeTemp(t, "rule_*.json", `{not json`)

	_, err := BuildFromFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}

	// The decoder's own error surfaces, not a wrapped validation error.
	var syntaxErr *json.SyntaxError
	var schemaErr *SchemaValidationError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("got %T, want *json.SyntaxError", err)
	}
	if errors.As(err, &schemaErr) {
		t.Errorf("parse failure reported as schema validation: %v", err)
	}
}

func TestBuildFromFileValidates(t *testing.T) {
	path := writeTemp(t, "rule_*.json", `{
  "logGroupNames": ["g"],
  "contributionKeys": ["a", "b", "c", "d", "e"]
}`)

	_, err := BuildFromFile(path)

	var schemaErr *SchemaValidationError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("got %v, want SchemaValidationError", err)
	}
}
