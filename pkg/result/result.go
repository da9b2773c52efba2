// Package result defines the Go struct types for simulation test-result
// documents and provides strict YAML parsing.
package result

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Result kinds. The discriminant is resolved once at the load boundary;
// downstream code branches on Kind, never on document shape.
const (
	KindCase        = "case"
	KindIteration   = "iteration"
	KindEquivalence = "equivalence"
)

// TestResult is one test execution as recorded by the simulation engine.
//
// A "case" result carries the top-level parameter set and the logged-signal
// mapping. An "iteration" result additionally carries the overrides applied
// for that iteration and an ordered list of output runs. An "equivalence"
// result wraps two parallel sub-results for comparison and exposes no
// directly-resolvable data of its own.
type TestResult struct {
	Kind              string              `yaml:"kind"                         json:"kind"                         jsonschema:"required,enum=case,enum=iteration,enum=equivalence"`
	Name              string              `yaml:"name,omitempty"               json:"name,omitempty"`
	Parameters        []ParameterOverride `yaml:"parameters,omitempty"         json:"parameters,omitempty"`
	IterationSettings []ParameterOverride `yaml:"iteration_settings,omitempty" json:"iteration_settings,omitempty"`
	Signals           map[string]*Signal  `yaml:"signals,omitempty"            json:"signals,omitempty"`
	OutputRuns        []SignalRecord      `yaml:"output_runs,omitempty"        json:"output_runs,omitempty"`
	Results           []*TestResult       `yaml:"results,omitempty"            json:"results,omitempty"`
}

// ParameterOverride is one named value supplied to the simulation in place
// of a design-time default. Value is a scalar or a string; string values are
// numeric-coerced at lookup time.
type ParameterOverride struct {
	Variable string `yaml:"variable" json:"variable" jsonschema:"required"`
	Value    any    `yaml:"value"    json:"value"    jsonschema:"required"`
}

// SignalRecord is one logged output run of an iteration result.
// Values and Times have equal length; Times is non-decreasing.
type SignalRecord struct {
	Label  string    `yaml:"label"  json:"label"  jsonschema:"required"`
	Values []float64 `yaml:"values" json:"values" jsonschema:"required"`
	Times  []float64 `yaml:"times"  json:"times"  jsonschema:"required"`
}

// Signal is a node in a logged-signal tree. A leaf holds the recorded series
// directly; a bus or structure holds an ordered list of named child signals,
// nested to arbitrary depth.
type Signal struct {
	Data   []float64     `yaml:"data,omitempty"   json:"data,omitempty"`
	Time   []float64     `yaml:"time,omitempty"   json:"time,omitempty"`
	Fields []SignalField `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// SignalField is one named element of a structured signal.
type SignalField struct {
	Name   string  `yaml:"name"   json:"name"   jsonschema:"required"`
	Signal *Signal `yaml:"signal" json:"signal" jsonschema:"required"`
}

// Leaf reports whether the signal holds a flat series with a time attribute.
func (s *Signal) Leaf() bool {
	return len(s.Fields) == 0 && s.Time != nil
}

// LoadFile reads and parses a test-result document from disk.
func LoadFile(path string) (*TestResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open result: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses a test-result document from an io.Reader with strict
// unknown-field rejection.
func Load(r io.Reader) (*TestResult, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var res TestResult
	if err := dec.Decode(&res); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &res, nil
}
