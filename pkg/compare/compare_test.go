package compare

import (
	"math"
	"strings"
	"testing"

	"github.com/ormasoftchile/simres/pkg/result"
)

func runWith(values, times []float64) *result.TestResult {
	return &result.TestResult{
		Kind: result.KindCase,
		Signals: map[string]*result.Signal{
			"speed": {Data: values, Time: times},
		},
	}
}

// TestSignalsIdentical verifies an identical run compares within any tolerance.
func TestSignalsIdentical(t *testing.T) {
	ref := runWith([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3})
	cand := runWith([]float64{0, 1, 2, 3}, []float64{0, 1, 2, 3})

	cmp, err := Signals("speed", cand, ref, Tolerance{})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !cmp.Within {
		t.Error("identical runs should be within zero tolerance")
	}
	if cmp.MaxAbs != 0 {
		t.Errorf("MaxAbs = %v, want 0", cmp.MaxAbs)
	}
	if cmp.Samples != 4 {
		t.Errorf("Samples = %d, want 4", cmp.Samples)
	}
}

// TestSignalsResampling verifies a candidate logged at a different rate is
// interpolated onto the reference time base.
func TestSignalsResampling(t *testing.T) {
	// Candidate logs y=2t at half the rate; linear interpolation is exact.
	cand := runWith([]float64{0, 4, 8}, []float64{0, 2, 4})
	ref := runWith([]float64{0, 2, 4, 6, 8}, []float64{0, 1, 2, 3, 4})

	cmp, err := Signals("speed", cand, ref, Tolerance{Abs: 1e-12})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !cmp.Within {
		t.Errorf("linear signal should resample exactly, MaxAbs = %v", cmp.MaxAbs)
	}
}

// TestSignalsDeviation verifies a deviating sample is located and judged
// against the combined tolerance band.
func TestSignalsDeviation(t *testing.T) {
	ref := runWith([]float64{10, 10, 10}, []float64{0, 1, 2})
	cand := runWith([]float64{10, 10.5, 10}, []float64{0, 1, 2})

	cmp, err := Signals("speed", cand, ref, Tolerance{Abs: 0.1})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Within {
		t.Error("0.5 deviation should exceed 0.1 abs tolerance")
	}
	if math.Abs(cmp.MaxAbs-0.5) > 1e-12 {
		t.Errorf("MaxAbs = %v, want 0.5", cmp.MaxAbs)
	}
	if cmp.WorstTime != 1 {
		t.Errorf("WorstTime = %v, want 1", cmp.WorstTime)
	}
	if math.Abs(cmp.MaxRel-0.05) > 1e-12 {
		t.Errorf("MaxRel = %v, want 0.05", cmp.MaxRel)
	}

	// The same deviation passes with a relative tolerance.
	cmp, err = Signals("speed", cand, ref, Tolerance{Rel: 0.1})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !cmp.Within {
		t.Error("5% deviation should pass 10% rel tolerance")
	}
}

// TestSignalsOverlapOnly verifies reference samples outside the candidate's
// time range are not judged.
func TestSignalsOverlapOnly(t *testing.T) {
	cand := runWith([]float64{1, 1}, []float64{1, 2})
	ref := runWith([]float64{99, 1, 1, 99}, []float64{0, 1, 2, 3})

	cmp, err := Signals("speed", cand, ref, Tolerance{Abs: 1e-9})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if cmp.Samples != 2 {
		t.Errorf("Samples = %d, want 2 (overlap only)", cmp.Samples)
	}
	if !cmp.Within {
		t.Error("overlapping samples agree, should be within tolerance")
	}
}

// TestSignalsNoOverlap verifies disjoint time ranges fail.
func TestSignalsNoOverlap(t *testing.T) {
	cand := runWith([]float64{1, 1}, []float64{10, 11})
	ref := runWith([]float64{1, 1}, []float64{0, 1})

	_, err := Signals("speed", cand, ref, Tolerance{})
	if err == nil || !strings.Contains(err.Error(), "overlap") {
		t.Fatalf("err = %v, want overlap error", err)
	}
}

// TestSignalsDuplicateTimestamps verifies coincident samples collapse to a
// strictly increasing time base before fitting.
func TestSignalsDuplicateTimestamps(t *testing.T) {
	cand := runWith([]float64{0, 1, 2, 2}, []float64{0, 1, 1, 2})
	ref := runWith([]float64{0, 2, 2}, []float64{0, 1, 2})

	cmp, err := Signals("speed", cand, ref, Tolerance{Abs: 1e-9})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if !cmp.Within {
		t.Errorf("last sample at a duplicate instant should win, MaxAbs = %v", cmp.MaxAbs)
	}
}

// TestSignalsLengthMismatch verifies a series whose values and times
// lengths disagree fails with an error instead of an index panic.
func TestSignalsLengthMismatch(t *testing.T) {
	cand := runWith([]float64{0, 1}, []float64{0, 1})
	ref := runWith([]float64{1}, []float64{0, 1})

	_, err := Signals("speed", cand, ref, Tolerance{})
	if err == nil || !strings.Contains(err.Error(), "length mismatch") {
		t.Fatalf("err = %v, want length mismatch error", err)
	}
	if !strings.Contains(err.Error(), "reference") {
		t.Errorf("err = %v, want the offending side named", err)
	}

	_, err = Signals("speed", ref, cand, Tolerance{})
	if err == nil || !strings.Contains(err.Error(), "candidate") {
		t.Fatalf("err = %v, want candidate length mismatch error", err)
	}
}

// TestSignalsDecreasingTimes verifies a decreasing time base fails before
// reaching the interpolation fit.
func TestSignalsDecreasingTimes(t *testing.T) {
	cand := runWith([]float64{0, 1, 2}, []float64{0, 2, 1})
	ref := runWith([]float64{0, 1, 2}, []float64{0, 1, 2})

	_, err := Signals("speed", cand, ref, Tolerance{})
	if err == nil || !strings.Contains(err.Error(), "non-decreasing") {
		t.Fatalf("err = %v, want time ordering error", err)
	}
}

// TestSignalsMissing verifies a lookup miss on either side is reported.
func TestSignalsMissing(t *testing.T) {
	ref := runWith([]float64{1, 1}, []float64{0, 1})
	empty := &result.TestResult{Kind: result.KindCase, Signals: map[string]*result.Signal{
		"other": {Data: []float64{0}, Time: []float64{0}},
	}}

	_, err := Signals("speed", empty, ref, Tolerance{})
	if err == nil || !strings.Contains(err.Error(), "candidate") {
		t.Fatalf("err = %v, want candidate lookup error", err)
	}
}
