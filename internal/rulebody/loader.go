package rulebody

import (
	"encoding/json"
	"os"

	"gopkg.in/yaml.v3"
)

// Read and parse failures below propagate unmodified: nothing at this layer
// can add diagnostic value beyond what os and the decoders already report.

// Load reads a JSON rule description from path.
func Load(path string) (RuleBody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleBody{}, err
	}
	var body RuleBody
	if err := json.Unmarshal(data, &body); err != nil {
		return RuleBody{}, err
	}
	return body, nil
}

// LoadYAML reads a YAML rule description from path.
func LoadYAML(path string) (RuleBody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleBody{}, err
	}
	var body RuleBody
	if err := yaml.Unmarshal(data, &body); err != nil {
		return RuleBody{}, err
	}
	return body, nil
}

// BuildFromFile loads a JSON description and runs it through Build.
func BuildFromFile(path string) (string, error) {
	body, err := Load(path)
	if err != nil {
		return "", err
	}
	return Build(body)
}

// BuildFromYAMLFile loads a YAML description and runs it through Build.
func BuildFromYAMLFile(path string) (string, error) {
	body, err := LoadYAML(path)
	if err != nil {
		return "", err
	}
	return Build(body)
}
