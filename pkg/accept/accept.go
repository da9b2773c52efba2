// Package accept evaluates expression-based acceptance criteria against
// simulation test-result documents. A failed or errored check marks a
// test-authoring defect; there is nothing to retry.
package accept

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/expr-lang/expr"
	"github.com/montanaflynn/stats"
	"gopkg.in/yaml.v3"

	"github.com/ormasoftchile/simres/pkg/lookup"
	"github.com/ormasoftchile/simres/pkg/result"
)

// Check is one acceptance criterion: a boolean expression over the
// parameters and logged signals of a result document.
type Check struct {
	Name        string `yaml:"name"                  json:"name"`
	Expr        string `yaml:"expr"                  json:"expr"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// ChecksFile is the top-level document of a criteria file.
type ChecksFile struct {
	Checks []Check `yaml:"checks" json:"checks"`
}

// LoadChecksFile reads a criteria file from disk.
func LoadChecksFile(path string) (*ChecksFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checks: %w", err)
	}
	defer f.Close()
	return LoadChecks(f)
}

// LoadChecks parses a criteria file with strict unknown-field rejection.
func LoadChecks(r io.Reader) (*ChecksFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cf ChecksFile
	if err := dec.Decode(&cf); err != nil {
		return nil, fmt.Errorf("decode checks: %w", err)
	}
	for i, c := range cf.Checks {
		if c.Name == "" {
			return nil, fmt.Errorf("check %d: name must not be empty", i)
		}
		if c.Expr == "" {
			return nil, fmt.Errorf("check %q: expr must not be empty", c.Name)
		}
	}
	return &cf, nil
}

// Evaluator runs checks against a result document.
// The zero value is ready to use.
type Evaluator struct {
	Resolver *lookup.Resolver
	Trace    *TraceWriter // optional JSONL outcome trace
}

// Run evaluates every check and returns the report. resultName labels the
// report; use the result file path. A failing check is recorded, not
// returned as an error — only trace I/O failures abort the run.
func (e *Evaluator) Run(checks []Check, res *result.TestResult, resultName string) (*Report, error) {
	r := e.Resolver
	if r == nil {
		r = &lookup.Resolver{}
	}

	report := &Report{
		Result:    resultName,
		CheckedAt: time.Now().UTC().Format(time.RFC3339),
	}

	for _, c := range checks {
		outcome := evalCheck(c, r, res)
		report.Checks = append(report.Checks, outcome)
		report.Summary.Total++
		switch {
		case outcome.Error != "":
			report.Summary.Errors++
		case outcome.Passed:
			report.Summary.Passed++
		default:
			report.Summary.Failed++
		}
		if e.Trace != nil {
			if err := e.Trace.Write(resultName, &outcome); err != nil {
				return nil, fmt.Errorf("trace check %q: %w", c.Name, err)
			}
		}
	}
	return report, nil
}

// evalCheck compiles and runs one criterion expression. Lookup failures
// inside the expression surface as the check's error instead of aborting
// the whole run.
func evalCheck(c Check, r *lookup.Resolver, res *result.TestResult) Outcome {
	outcome := Outcome{Name: c.Name, Expr: c.Expr}

	rec := &envRecorder{resolver: r, res: res}
	env := rec.env()

	program, err := expr.Compile(c.Expr, expr.Env(env), expr.AsBool())
	if err != nil {
		outcome.Error = fmt.Sprintf("compile %q: %v", c.Expr, err)
		return outcome
	}
	output, err := expr.Run(program, env)
	if rec.err != nil {
		outcome.Error = rec.err.Error()
		return outcome
	}
	if err != nil {
		outcome.Error = fmt.Sprintf("eval %q: %v", c.Expr, err)
		return outcome
	}
	passed, ok := output.(bool)
	if !ok {
		outcome.Error = fmt.Sprintf("expression %q did not return bool (got %T: %v)", c.Expr, output, output)
		return outcome
	}
	outcome.Passed = passed
	return outcome
}

// envRecorder builds the expression environment and records the first
// lookup failure. Expression functions return NaN after a failure so the
// run stays deterministic; the recorded error wins over the NaN result.
type envRecorder struct {
	resolver *lookup.Resolver
	res      *result.TestResult
	err      error
}

func (rec *envRecorder) fail(err error) float64 {
	if rec.err == nil {
		rec.err = err
	}
	return math.NaN()
}

func (rec *envRecorder) param(name string) float64 {
	v, err := rec.resolver.ResolveParameter(name, rec.res)
	if err != nil {
		return rec.fail(err)
	}
	return v
}

func (rec *envRecorder) signal(name string) []float64 {
	values, _, err := rec.resolver.ResolveSignal(name, rec.res)
	if err != nil {
		rec.fail(err)
		return nil
	}
	return values
}

func (rec *envRecorder) agg(name string, fn func(stats.Float64Data) (float64, error)) float64 {
	values := rec.signal(name)
	if values == nil {
		return math.NaN()
	}
	v, err := fn(values)
	if err != nil {
		return rec.fail(fmt.Errorf("signal %q: %w", name, err))
	}
	return v
}

// env exposes the lookup-backed functions available to criterion
// expressions.
func (rec *envRecorder) env() map[string]any {
	return map[string]any{
		"param": rec.param,
		"smin": func(name string) float64 {
			return rec.agg(name, stats.Min)
		},
		"smax": func(name string) float64 {
			return rec.agg(name, stats.Max)
		},
		"mean": func(name string) float64 {
			return rec.agg(name, stats.Mean)
		},
		"stddev": func(name string) float64 {
			return rec.agg(name, stats.StandardDeviation)
		},
		"median": func(name string) float64 {
			return rec.agg(name, stats.Median)
		},
		"final": func(name string) float64 {
			values := rec.signal(name)
			if len(values) == 0 {
				return rec.fail(fmt.Errorf("signal %q: no samples", name))
			}
			return values[len(values)-1]
		},
		"count": func(name string) int {
			return len(rec.signal(name))
		},
	}
}
