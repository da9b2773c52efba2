package accept

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ormasoftchile/simres/pkg/result"
)

func fixtureResult() *result.TestResult {
	return &result.TestResult{
		Kind: result.KindCase,
		Parameters: []result.ParameterOverride{
			{Variable: "Vehicle.Mass", Value: 1450.0},
			{Variable: "Controller.Kp", Value: "2.0"},
		},
		Signals: map[string]*result.Signal{
			"speed": {Data: []float64{0, 10, 20, 18}, Time: []float64{0, 1, 2, 3}},
		},
	}
}

// TestEvaluatePassFail verifies checks are judged independently and the
// summary counts them by status.
func TestEvaluatePassFail(t *testing.T) {
	checks := []Check{
		{Name: "mass_in_range", Expr: `param("Vehicle.Mass") > 1000 && param("Vehicle.Mass") < 2000`},
		{Name: "peak_speed", Expr: `smax("speed") <= 15`},
		{Name: "settles", Expr: `final("speed") == 18`},
	}

	e := &Evaluator{}
	report, err := e.Run(checks, fixtureResult(), "case.yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if report.Summary.Total != 3 || report.Summary.Passed != 2 || report.Summary.Failed != 1 {
		t.Errorf("summary = %+v, want total 3, passed 2, failed 1", report.Summary)
	}
	if report.Ok() {
		t.Error("Ok() = true with a failed check")
	}
	if report.Checks[1].Passed {
		t.Error("peak_speed passed, want failed (smax is 20)")
	}
}

// TestEvaluateAggregates verifies the stats-backed environment functions.
func TestEvaluateAggregates(t *testing.T) {
	checks := []Check{
		{Name: "min", Expr: `smin("speed") == 0`},
		{Name: "mean", Expr: `mean("speed") == 12`},
		{Name: "median", Expr: `median("speed") == 14`},
		{Name: "count", Expr: `count("speed") == 4`},
		{Name: "spread", Expr: `stddev("speed") > 0`},
		{Name: "scaled", Expr: `smax("speed") * param("Controller.Kp") == 40`},
	}

	e := &Evaluator{}
	report, err := e.Run(checks, fixtureResult(), "case.yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, c := range report.Checks {
		if c.Error != "" {
			t.Errorf("check %q errored: %s", c.Name, c.Error)
		} else if !c.Passed {
			t.Errorf("check %q failed", c.Name)
		}
	}
}

// TestEvaluateLookupError verifies a lookup miss inside an expression
// surfaces as that check's error, not a panic or a silent pass.
func TestEvaluateLookupError(t *testing.T) {
	checks := []Check{
		{Name: "missing_param", Expr: `param("No.Such.Param") > 0`},
		{Name: "missing_signal", Expr: `smax("no_such_signal") < 1`},
	}

	e := &Evaluator{}
	report, err := e.Run(checks, fixtureResult(), "case.yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Summary.Errors != 2 {
		t.Fatalf("errors = %d, want 2", report.Summary.Errors)
	}
	if !strings.Contains(report.Checks[0].Error, "not found") {
		t.Errorf("error = %q, want lookup miss", report.Checks[0].Error)
	}
}

// TestEvaluateCompileError verifies a malformed expression is reported
// without aborting the run.
func TestEvaluateCompileError(t *testing.T) {
	checks := []Check{
		{Name: "bad", Expr: `smax("speed" <`},
		{Name: "good", Expr: `smax("speed") == 20`},
	}

	e := &Evaluator{}
	report, err := e.Run(checks, fixtureResult(), "case.yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Checks[0].Error == "" {
		t.Error("expected compile error on first check")
	}
	if !report.Checks[1].Passed {
		t.Error("second check should still run and pass")
	}
}

// TestTraceWritesJSONL verifies each outcome lands as one JSONL event.
func TestTraceWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	tracePath := filepath.Join(dir, "trace.jsonl")

	tw, err := NewTraceWriter(tracePath)
	if err != nil {
		t.Fatalf("new trace: %v", err)
	}

	checks := []Check{
		{Name: "a", Expr: `smax("speed") == 20`},
		{Name: "b", Expr: `smin("speed") == 1`},
	}
	e := &Evaluator{Trace: tw}
	if _, err := e.Run(checks, fixtureResult(), "case.yaml"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close trace: %v", err)
	}

	f, err := os.Open(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var events []TraceEvent
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var ev TraceEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			t.Fatalf("bad trace line: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].Type != "check_outcome" || events[0].Outcome.Name != "a" {
		t.Errorf("first event = %+v, want check_outcome for a", events[0])
	}
	if events[1].Outcome.Passed {
		t.Error("second outcome passed, want failed")
	}
}

// TestReportRoundTrip verifies report YAML serialization.
func TestReportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.yaml")

	e := &Evaluator{}
	report, err := e.Run([]Check{{Name: "ok", Expr: `count("speed") == 4`}}, fixtureResult(), "case.yaml")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if err := WriteReport(report, path); err != nil {
		t.Fatalf("write: %v", err)
	}

	loaded, err := LoadReport(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Result != "case.yaml" {
		t.Errorf("Result = %q, want case.yaml", loaded.Result)
	}
	if len(loaded.Checks) != 1 || !loaded.Checks[0].Passed {
		t.Errorf("Checks = %+v, want single passed check", loaded.Checks)
	}
	if !loaded.Ok() {
		t.Error("Ok() = false, want true")
	}
}

// TestLoadChecksStrict verifies unknown fields and empty names are rejected.
func TestLoadChecksStrict(t *testing.T) {
	_, err := LoadChecks(strings.NewReader("checks:\n  - name: a\n    expr: 1 > 0\n    bogus: x\n"))
	if err == nil {
		t.Error("expected unknown-field rejection")
	}

	_, err = LoadChecks(strings.NewReader("checks:\n  - name: \"\"\n    expr: 1 > 0\n"))
	if err == nil {
		t.Error("expected empty-name rejection")
	}

	cf, err := LoadChecks(strings.NewReader("checks:\n  - name: a\n    expr: 1 > 0\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cf.Checks) != 1 {
		t.Fatalf("checks = %d, want 1", len(cf.Checks))
	}
}
