// Package lookup resolves parameter overrides and logged signals out of
// simulation test-result documents.
//
// Lookups are pure, synchronous scans over small in-memory lists: no state
// is retained between calls, and the result document is never mutated.
package lookup

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/ormasoftchile/simres/pkg/result"
)

// maxSignalDepth bounds the descent into nested structured signals so a
// malformed (cyclic or absurdly deep) document cannot hang the lookup.
const maxSignalDepth = 32

// Resolver performs lookups against test-result documents.
// The zero value is ready to use and writes warnings to stderr.
type Resolver struct {
	// Warnf receives recoverable warnings, such as a parameter missing
	// from the iteration settings before the top-level fallback. Nil
	// routes warnings to stderr.
	Warnf func(format string, args ...any)
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Warnf != nil {
		r.Warnf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// ResolveParameter locates the override named name and returns its value
// coerced to a float64.
//
// Iteration results are searched iteration-settings first; a miss there
// emits a recoverable warning and falls back to the top-level parameter
// set, since an unset iteration override commonly means "unchanged from
// baseline". A miss in every location returns a NotFoundError. Equivalence
// results fail immediately with an UnsupportedModeError.
func (r *Resolver) ResolveParameter(name string, res *result.TestResult) (float64, error) {
	if name == "" {
		return 0, fmt.Errorf("parameter name must not be empty")
	}
	if res.Kind == result.KindEquivalence {
		return 0, &UnsupportedModeError{Op: "parameter lookup"}
	}

	if res.Kind == result.KindIteration {
		if ov, ok := findOverride(res.IterationSettings, name); ok {
			return CoerceFloat(ov.Value), nil
		}
		r.warnf("%q not overridden in this iteration, falling back to the parameter set", name)
	}

	if ov, ok := findOverride(res.Parameters, name); ok {
		return CoerceFloat(ov.Value), nil
	}
	return 0, &NotFoundError{Name: name, What: "parameter"}
}

// ResolveSignal locates the logged signal named name and returns its value
// and time series.
//
// Case results are searched in the named-signal mapping; structured signals
// (buses) are unwrapped to their innermost leaf series. Iteration results
// are scanned linearly for the first output run whose label matches.
func (r *Resolver) ResolveSignal(name string, res *result.TestResult) (values, times []float64, err error) {
	if name == "" {
		return nil, nil, fmt.Errorf("signal name must not be empty")
	}

	switch res.Kind {
	case result.KindEquivalence:
		return nil, nil, &UnsupportedModeError{Op: "signal lookup"}

	case result.KindIteration:
		for i := range res.OutputRuns {
			if res.OutputRuns[i].Label == name {
				return res.OutputRuns[i].Values, res.OutputRuns[i].Times, nil
			}
		}
		return nil, nil, &NotFoundError{Name: name, What: "signal"}

	default:
		if len(res.Signals) == 0 {
			return nil, nil, &NoLoggedDataError{}
		}
		sig, ok := res.Signals[name]
		if !ok {
			return nil, nil, &NotFoundError{Name: name, What: "signal"}
		}
		leaf, err := unwrapLeaf(sig)
		if err != nil {
			return nil, nil, fmt.Errorf("signal %q: %w", name, err)
		}
		return leaf.Data, leaf.Time, nil
	}
}

// findOverride scans an override list for an exact, case-sensitive match.
func findOverride(overrides []result.ParameterOverride, name string) (*result.ParameterOverride, bool) {
	for i := range overrides {
		if overrides[i].Variable == name {
			return &overrides[i], true
		}
	}
	return nil, false
}

// unwrapLeaf descends through the first field of each nested level until a
// flat series with a time attribute is reached.
func unwrapLeaf(sig *result.Signal) (*result.Signal, error) {
	for depth := 0; depth < maxSignalDepth; depth++ {
		if sig == nil {
			return nil, fmt.Errorf("nested structure terminates in a null node")
		}
		if sig.Leaf() {
			return sig, nil
		}
		if len(sig.Fields) == 0 {
			return nil, fmt.Errorf("node has neither a time attribute nor nested fields")
		}
		sig = sig.Fields[0].Signal
	}
	return nil, fmt.Errorf("nested structure exceeds depth %d", maxSignalDepth)
}

// CoerceFloat converts an override value to a float64. Numeric kinds pass
// through; strings are parsed; anything unparsable yields NaN rather than
// an error, mirroring the engine's permissive numeric coercion.
func CoerceFloat(v any) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case uint64:
		return float64(x)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// defaultResolver backs the package-level convenience functions.
var defaultResolver Resolver

// ResolveParameter resolves name using the default Resolver.
func ResolveParameter(name string, res *result.TestResult) (float64, error) {
	return defaultResolver.ResolveParameter(name, res)
}

// ResolveSignal resolves name using the default Resolver.
func ResolveSignal(name string, res *result.TestResult) (values, times []float64, err error) {
	return defaultResolver.ResolveSignal(name, res)
}
