package ewma

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// TestColdStartDefault: in the default (cold-start-corrected) mode, the
// first Get() after the first Update(x) equals exactly x, not alpha*x,
// because current_weight starts at 0 and tracks current in lockstep.
func TestColdStartDefault(t *testing.T) {
	e := New(0.3, false)
	e.Update(10)
	if got := e.Get(); !approxEqual(got, 10, 1e-9) {
		t.Fatalf("Get() after first sample = %v, want 10", got)
	}
}

// TestColdStartFullWeight covers the full-weight branch: the first Get()
// after the first Update(x) equals alpha*x, since current_weight starts at 1.
func TestColdStartFullWeight(t *testing.T) {
	alpha := 0.5
	e := New(alpha, true)
	e.Update(10)
	want := alpha * 10
	if got := e.Get(); !approxEqual(got, want, 1e-9) {
		t.Fatalf("Get() after first sample = %v, want %v", got, want)
	}
}

// TestConvergence: repeating the same sample converges the estimate toward
// that sample regardless of alpha or cold-start mode.
func TestConvergence(t *testing.T) {
	for _, alpha := range []float64{0.05, 0.3, 0.5, 1.0} {
		for _, fullWeight := range []bool{false, true} {
			e := New(alpha, fullWeight)
			const x = 16_600_000.0
			for i := 0; i < 400; i++ {
				e.Update(x)
			}
			if got := e.Get(); !approxEqual(got, x, 1.0) {
				t.Fatalf("alpha=%v fullWeight=%v: Get() = %v, want ~%v", alpha, fullWeight, got, x)
			}
		}
	}
}

// TestGetBeforeUpdateIsZero covers the uninitialized case used throughout
// the pacer as a "no data yet" sentinel.
func TestGetBeforeUpdateIsZero(t *testing.T) {
	e := New(0.3, false)
	if got := e.Get(); got != 0 {
		t.Fatalf("Get() before any Update = %v, want 0", got)
	}
}

// TestFullWeightStartsAtZero confirms the full-weight estimator reports 0
// before any sample, same as the default mode, even though its weight
// accounting differs afterward.
func TestFullWeightStartsAtZero(t *testing.T) {
	e := New(0.5, true)
	if got := e.Get(); got != 0 {
		t.Fatalf("Get() before any Update (full weight) = %v, want 0", got)
	}
}
