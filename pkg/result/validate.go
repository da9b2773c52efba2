package result

import (
	"encoding/json"
	"fmt"
	"strings"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidationError represents a single validation error with location context.
type ValidationError struct {
	Phase    string `json:"phase"` // structural, semantic, domain
	Path     string `json:"path"`  // JSON-path-like location (e.g., "output_runs[2].times")
	Message  string `json:"message"`
	Severity string `json:"severity"` // error, warning
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Phase, e.Path, e.Message)
}

// ValidateFile performs the full 3-phase validation pipeline on a result file.
// Phase 1: Structural (strict YAML decode)
// Phase 2: Semantic (JSON Schema validation)
// Phase 3: Domain (custom Go rules)
func ValidateFile(path string) (*TestResult, []*ValidationError) {
	var allErrors []*ValidationError

	res, err := LoadFile(path)
	if err != nil {
		allErrors = append(allErrors, &ValidationError{
			Phase:    "structural",
			Path:     "",
			Message:  err.Error(),
			Severity: "error",
		})
		return nil, allErrors
	}

	allErrors = append(allErrors, validateSemantic(res)...)
	allErrors = append(allErrors, ValidateDomain(res)...)

	if len(allErrors) > 0 {
		return res, allErrors
	}
	return res, nil
}

// validateSemantic validates the result document against the JSON Schema.
func validateSemantic(res *TestResult) []*ValidationError {
	semErr := func(msg string) []*ValidationError {
		return []*ValidationError{{Phase: "semantic", Path: "", Message: msg, Severity: "error"}}
	}

	data, err := json.Marshal(res)
	if err != nil {
		return semErr(fmt.Sprintf("marshal for schema validation: %v", err))
	}

	schemaJSON, err := GenerateJSONSchema()
	if err != nil {
		return semErr(fmt.Sprintf("generate schema: %v", err))
	}

	var schemaDoc interface{}
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return semErr(fmt.Sprintf("unmarshal schema: %v", err))
	}

	c := sjsonschema.NewCompiler()
	if err := c.AddResource("result-v0.json", schemaDoc); err != nil {
		return semErr(fmt.Sprintf("add schema resource: %v", err))
	}
	sch, err := c.Compile("result-v0.json")
	if err != nil {
		return semErr(fmt.Sprintf("compile schema: %v", err))
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return semErr(fmt.Sprintf("unmarshal document: %v", err))
	}

	if err := sch.Validate(doc); err != nil {
		var errs []*ValidationError
		if ve, ok := err.(*sjsonschema.ValidationError); ok {
			for _, cause := range flattenValidationErrors(ve) {
				errs = append(errs, &ValidationError{
					Phase:    "semantic",
					Path:     strings.Join(cause.InstanceLocation, "/"),
					Message:  fmt.Sprintf("%v", cause.ErrorKind),
					Severity: "error",
				})
			}
		} else {
			errs = append(errs, &ValidationError{
				Phase:    "semantic",
				Path:     "",
				Message:  err.Error(),
				Severity: "error",
			})
		}
		return errs
	}
	return nil
}

// flattenValidationErrors recursively collects all leaf validation errors.
func flattenValidationErrors(ve *sjsonschema.ValidationError) []*sjsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*sjsonschema.ValidationError{ve}
	}
	var flat []*sjsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

// ValidateDomain performs Phase 3 domain-level validation.
// Returns a slice of errors; empty means valid.
func ValidateDomain(res *TestResult) []*ValidationError {
	return validateDomainAt(res, "")
}

func validateDomainAt(res *TestResult, base string) []*ValidationError {
	var errs []*ValidationError
	at := func(field string) string {
		if base == "" {
			return field
		}
		return base + "." + field
	}

	switch res.Kind {
	case KindCase, KindIteration, KindEquivalence:
	default:
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     at("kind"),
			Message:  fmt.Sprintf("unknown result kind %q", res.Kind),
			Severity: "error",
		})
	}

	errs = append(errs, validateOverrides(res.Parameters, at("parameters"))...)
	errs = append(errs, validateOverrides(res.IterationSettings, at("iteration_settings"))...)

	for name, sig := range res.Signals {
		path := fmt.Sprintf("%s[%s]", at("signals"), name)
		errs = append(errs, validateSignal(sig, path)...)
	}

	for i, run := range res.OutputRuns {
		path := fmt.Sprintf("%s[%d]", at("output_runs"), i)
		if run.Label == "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path + ".label",
				Message:  "output run label must not be empty",
				Severity: "error",
			})
		}
		errs = append(errs, validateSeries(run.Values, run.Times, path)...)
	}

	if res.Kind != KindIteration {
		if len(res.IterationSettings) > 0 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     at("iteration_settings"),
				Message:  fmt.Sprintf("iteration settings are only expected on an iteration result (kind is %q)", res.Kind),
				Severity: "warning",
			})
		}
		if len(res.OutputRuns) > 0 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     at("output_runs"),
				Message:  fmt.Sprintf("output runs are only expected on an iteration result (kind is %q)", res.Kind),
				Severity: "warning",
			})
		}
	}

	if res.Kind == KindEquivalence {
		if len(res.Results) != 2 {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     at("results"),
				Message:  fmt.Sprintf("equivalence result must carry exactly 2 sub-results, got %d", len(res.Results)),
				Severity: "error",
			})
		}
		for i, sub := range res.Results {
			errs = append(errs, validateDomainAt(sub, fmt.Sprintf("%s[%d]", at("results"), i))...)
		}
	} else if len(res.Results) > 0 {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     at("results"),
			Message:  fmt.Sprintf("sub-results are only valid on an equivalence result (kind is %q)", res.Kind),
			Severity: "error",
		})
	}

	return errs
}

// validateOverrides checks variable names and flags duplicates. Duplicate
// names are a warning, not an error: the engine does not guarantee
// uniqueness even though results in practice have unique names.
func validateOverrides(overrides []ParameterOverride, base string) []*ValidationError {
	var errs []*ValidationError
	seen := make(map[string]bool, len(overrides))
	for i, ov := range overrides {
		path := fmt.Sprintf("%s[%d]", base, i)
		if ov.Variable == "" {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path + ".variable",
				Message:  "override variable must not be empty",
				Severity: "error",
			})
			continue
		}
		if seen[ov.Variable] {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path + ".variable",
				Message:  fmt.Sprintf("duplicate override for %q; first match wins at lookup", ov.Variable),
				Severity: "warning",
			})
		}
		seen[ov.Variable] = true
	}
	return errs
}

// validateSignal checks one node of a signal tree. A node is either a leaf
// (data + time) or a structure (fields), never both, never neither.
func validateSignal(sig *Signal, path string) []*ValidationError {
	if sig == nil {
		return []*ValidationError{{
			Phase:    "domain",
			Path:     path,
			Message:  "signal must not be null",
			Severity: "error",
		}}
	}
	if len(sig.Fields) > 0 {
		var errs []*ValidationError
		if sig.Data != nil || sig.Time != nil {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path,
				Message:  "structured signal must not also carry a flat series",
				Severity: "error",
			})
		}
		for i, f := range sig.Fields {
			sub := fmt.Sprintf("%s.fields[%d]", path, i)
			if f.Name == "" {
				errs = append(errs, &ValidationError{
					Phase:    "domain",
					Path:     sub + ".name",
					Message:  "field name must not be empty",
					Severity: "error",
				})
			}
			errs = append(errs, validateSignal(f.Signal, sub)...)
		}
		return errs
	}
	if sig.Time == nil {
		return []*ValidationError{{
			Phase:    "domain",
			Path:     path,
			Message:  "leaf signal must carry a time attribute",
			Severity: "error",
		}}
	}
	return validateSeries(sig.Data, sig.Time, path)
}

// validateSeries checks the series invariants shared by leaf signals and
// output runs: equal lengths, non-decreasing time.
func validateSeries(values, times []float64, path string) []*ValidationError {
	var errs []*ValidationError
	if len(values) != len(times) {
		errs = append(errs, &ValidationError{
			Phase:    "domain",
			Path:     path,
			Message:  fmt.Sprintf("values and times length mismatch (%d vs %d)", len(values), len(times)),
			Severity: "error",
		})
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			errs = append(errs, &ValidationError{
				Phase:    "domain",
				Path:     path,
				Message:  fmt.Sprintf("time must be non-decreasing (sample %d: %g < %g)", i, times[i], times[i-1]),
				Severity: "error",
			})
			break
		}
	}
	return errs
}
