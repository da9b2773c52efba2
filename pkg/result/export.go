package result

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema produces a JSON Schema Draft 2020-12 document from
// the Go TestResult struct using invopop/jsonschema.
func GenerateJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&TestResult{})
	s.ID = "https://github.com/ormasoftchile/simres/schemas/result-v0.json"
	s.Title = "Simulation Test Result v0"
	s.Description = "Schema for simres test-result YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	return data, nil
}
