// Package ewma implements a bias-corrected exponentially weighted moving
// average, the smoothing primitive the pacer builds its latency and
// throughput estimates on top of.
package ewma

// Estimator is an exponentially weighted moving average with cold-start
// bias correction. The zero value is not usable; construct one with New.
//
// Update rule on a sample x:
//
//	current        = (1-alpha)*current + alpha*x
//	current_weight = (1-alpha)*current_weight + alpha
//	get()          = 0 if current_weight == 0 else current/current_weight
//
// Access must be externally synchronized; Estimator has no lock of its own.
type Estimator struct {
	alpha         float64
	current       float64
	currentWeight float64
}

// New returns an Estimator smoothed with the given alpha.
//
// alpha is the smoothing factor: larger values mean less smoothing, so the
// estimate responds faster but noisier. fullWeight disables the cold-start
// weight correction: the estimator starts at a value of 0, weighted at
// 100%, and relaxes toward samples from there. This is what the correction
// estimator wants, since its zero is a meaningful baseline rather than "no
// data yet". Leave fullWeight false for estimators where the early samples
// should be reported at their true average instead of pulled toward 0.
func New(alpha float64, fullWeight bool) *Estimator {
	e := &Estimator{alpha: alpha}
	if fullWeight {
		e.currentWeight = 1
	}
	return e
}

// Update feeds a new sample into the estimator. Negative samples are
// accepted: the latency and throughput estimators only receive durations,
// but the correction estimator in package state receives signed deltas.
func (e *Estimator) Update(x float64) {
	e.current = (1-e.alpha)*e.current + e.alpha*x
	e.currentWeight = (1-e.alpha)*e.currentWeight + e.alpha
}

// Get returns the current estimate, or 0 if no sample has been applied yet
// (in either cold-start mode).
func (e *Estimator) Get() float64 {
	if e.currentWeight == 0 {
		return 0
	}
	return e.current / e.currentWeight
}
