// Package compare judges one logged signal of a candidate run against the
// same signal of a reference run. The candidate series is resampled onto
// the reference time base, so the two runs may log at different rates.
package compare

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/ormasoftchile/simres/pkg/lookup"
	"github.com/ormasoftchile/simres/pkg/result"
)

// Tolerance is the acceptance band: a sample deviates if
// |candidate - reference| > Abs + Rel*|reference|.
type Tolerance struct {
	Abs float64
	Rel float64
}

// Comparison is the outcome of comparing one signal across two runs.
// Only reference samples inside the candidate's time range are judged.
type Comparison struct {
	Signal    string  `yaml:"signal"     json:"signal"`
	Samples   int     `yaml:"samples"    json:"samples"`
	MaxAbs    float64 `yaml:"max_abs"    json:"max_abs"`
	MaxRel    float64 `yaml:"max_rel"    json:"max_rel"`
	WorstTime float64 `yaml:"worst_time" json:"worst_time"`
	Within    bool    `yaml:"within"     json:"within"`
}

// Signals resolves name from both result documents and compares the series.
func Signals(name string, candidate, reference *result.TestResult, tol Tolerance) (*Comparison, error) {
	r := &lookup.Resolver{}

	candValues, candTimes, err := r.ResolveSignal(name, candidate)
	if err != nil {
		return nil, fmt.Errorf("candidate: %w", err)
	}
	if err := checkSeries(candValues, candTimes); err != nil {
		return nil, fmt.Errorf("candidate signal %q: %w", name, err)
	}
	refValues, refTimes, err := r.ResolveSignal(name, reference)
	if err != nil {
		return nil, fmt.Errorf("reference: %w", err)
	}
	if err := checkSeries(refValues, refTimes); err != nil {
		return nil, fmt.Errorf("reference signal %q: %w", name, err)
	}

	candValues, candTimes = dedupeSeries(candValues, candTimes)
	if len(candTimes) < 2 {
		return nil, fmt.Errorf("candidate signal %q has %d distinct samples, need at least 2", name, len(candTimes))
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(candTimes, candValues); err != nil {
		return nil, fmt.Errorf("fit candidate %q: %w", name, err)
	}

	cmp := &Comparison{Signal: name, Within: true}
	lo, hi := candTimes[0], candTimes[len(candTimes)-1]

	var diffs, times []float64
	for i, t := range refTimes {
		if t < lo || t > hi {
			continue // no candidate data to judge against
		}
		ref := refValues[i]
		d := math.Abs(pl.Predict(t) - ref)
		diffs = append(diffs, d)
		times = append(times, t)

		if ref != 0 {
			cmp.MaxRel = math.Max(cmp.MaxRel, d/math.Abs(ref))
		}
		if d > tol.Abs+tol.Rel*math.Abs(ref) {
			cmp.Within = false
		}
	}
	if len(diffs) == 0 {
		return nil, fmt.Errorf("signal %q: candidate and reference time ranges do not overlap", name)
	}

	worst := floats.MaxIdx(diffs)
	cmp.Samples = len(diffs)
	cmp.MaxAbs = diffs[worst]
	cmp.WorstTime = times[worst]
	return cmp, nil
}

// checkSeries rejects a malformed series before any indexing or fitting.
// Interpolation requires the series invariants even when a document skipped
// validation.
func checkSeries(values, times []float64) error {
	if len(values) != len(times) {
		return fmt.Errorf("values and times length mismatch (%d vs %d)", len(values), len(times))
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return fmt.Errorf("time must be non-decreasing (sample %d: %g < %g)", i, times[i], times[i-1])
		}
	}
	return nil
}

// dedupeSeries collapses repeated timestamps, keeping the last sample at
// each instant. Simulation logs record coincident samples at solver events;
// interpolation needs a strictly increasing time base.
func dedupeSeries(values, times []float64) (v, t []float64) {
	if len(times) == 0 {
		return nil, nil
	}
	v = make([]float64, 0, len(values))
	t = make([]float64, 0, len(times))
	for i := range times {
		if len(t) > 0 && times[i] == t[len(t)-1] {
			v[len(v)-1] = values[i]
			continue
		}
		t = append(t, times[i])
		v = append(v, values[i])
	}
	return v, t
}
