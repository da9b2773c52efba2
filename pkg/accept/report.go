package accept

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Outcome records the evaluation of one check.
type Outcome struct {
	Name   string `yaml:"name"            json:"name"`
	Expr   string `yaml:"expr"            json:"expr"`
	Passed bool   `yaml:"passed"          json:"passed"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
}

// Summary counts check outcomes by status.
type Summary struct {
	Total  int `yaml:"total"  json:"total"`
	Passed int `yaml:"passed" json:"passed"`
	Failed int `yaml:"failed" json:"failed"`
	Errors int `yaml:"errors" json:"errors"`
}

// Report is the complete record of one acceptance run over one result
// document. Written as YAML so it can sit next to the result it judged.
type Report struct {
	Result    string    `yaml:"result"     json:"result"`
	CheckedAt string    `yaml:"checked_at" json:"checked_at"`
	Checks    []Outcome `yaml:"checks"     json:"checks"`
	Summary   Summary   `yaml:"summary"    json:"summary"`
}

// Ok reports whether every check passed.
func (r *Report) Ok() bool {
	return r.Summary.Failed == 0 && r.Summary.Errors == 0
}

// WriteReport persists a report to a YAML file.
func WriteReport(report *Report, path string) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// LoadReport reads a report back from a YAML file.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report Report
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}
