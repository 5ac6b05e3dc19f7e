// Package inference performs two-proportion significance testing on binary
// outcome aggregates.
//
// Convention: the z-test uses the POOLED standard error (the same null
// variance the power package plans with); the confidence interval uses the
// UNPOOLED standard error. Mixing the two estimators across the test and
// the interval is standard practice for two-proportion comparisons, but the
// pairing is fixed here and must not drift; results are compared across
// runs byte for byte.
package inference

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInvalidParameter reports an out-of-domain alpha or a malformed aggregate.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInsufficientData reports a trial count below the accepted minimum.
	ErrInsufficientData = errors.New("insufficient data")
)

// MinTrials is the smallest trial count Evaluate accepts per variant.
// It rejects only literally empty samples; callers are expected to enforce
// the power package's recommended size before trusting a result.
const MinTrials = 1

// Aggregate holds per-variant counts for one metric.
type Aggregate struct {
	Trials    int64
	Successes int64
}

// Rate returns the observed success rate.
func (a Aggregate) Rate() float64 {
	if a.Trials == 0 {
		return 0
	}
	return float64(a.Successes) / float64(a.Trials)
}

func (a Aggregate) validate() error {
	if a.Trials < 0 || a.Successes < 0 {
		return fmt.Errorf("%w: negative counts (trials=%d successes=%d)", ErrInvalidParameter, a.Trials, a.Successes)
	}
	if a.Successes > a.Trials {
		return fmt.Errorf("%w: successes %d exceed trials %d", ErrInvalidParameter, a.Successes, a.Trials)
	}
	return nil
}

// Result is the immutable outcome of one two-proportion comparison.
type Result struct {
	RateControl   float64 `yaml:"rate_control" json:"rate_control"`
	RateTreatment float64 `yaml:"rate_treatment" json:"rate_treatment"`

	// RelativeLift is (treatment-control)/control. Meaningless when
	// LiftDefined is false (zero control rate); a zero baseline is a
	// legitimate configuration to detect, not an error.
	RelativeLift float64 `yaml:"relative_lift" json:"relative_lift"`
	LiftDefined  bool    `yaml:"lift_defined" json:"lift_defined"`

	PValue float64 `yaml:"p_value" json:"p_value"`
	CILow  float64 `yaml:"ci_low" json:"ci_low"`
	CIHigh float64 `yaml:"ci_high" json:"ci_high"`

	// Significant is PValue < alpha, and is never derived any other way
	// (in particular never from whether the CI excludes zero).
	Significant bool `yaml:"significant" json:"significant"`
}

// Evaluate runs a two-sided two-proportion z-test of treatment against
// control and a (1-alpha) confidence interval on the rate difference.
func Evaluate(control, treatment Aggregate, alpha float64) (Result, error) {
	if alpha <= 0 || alpha >= 1 {
		return Result{}, fmt.Errorf("%w: alpha %v outside (0,1)", ErrInvalidParameter, alpha)
	}
	if err := control.validate(); err != nil {
		return Result{}, fmt.Errorf("control: %w", err)
	}
	if err := treatment.validate(); err != nil {
		return Result{}, fmt.Errorf("treatment: %w", err)
	}
	if control.Trials < MinTrials {
		return Result{}, fmt.Errorf("%w: control has %d trials, need at least %d", ErrInsufficientData, control.Trials, MinTrials)
	}
	if treatment.Trials < MinTrials {
		return Result{}, fmt.Errorf("%w: treatment has %d trials, need at least %d", ErrInsufficientData, treatment.Trials, MinTrials)
	}

	pc := control.Rate()
	pt := treatment.Rate()
	nc := float64(control.Trials)
	nt := float64(treatment.Trials)
	diff := pt - pc

	res := Result{
		RateControl:   pc,
		RateTreatment: pt,
	}
	if pc != 0 {
		res.RelativeLift = diff / pc
		res.LiftDefined = true
	}

	// Test: pooled SE under the null hypothesis of equal rates.
	pooled := float64(control.Successes+treatment.Successes) / (nc + nt)
	seNull := math.Sqrt(pooled * (1 - pooled) * (1/nc + 1/nt))
	switch {
	case seNull == 0:
		// All successes or all failures in both variants: no evidence
		// either way.
		res.PValue = 1
	default:
		z := diff / seNull
		res.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(z))
	}

	// Interval: unpooled SE at the observed rates.
	seDiff := math.Sqrt(pc*(1-pc)/nc + pt*(1-pt)/nt)
	zCrit := distuv.UnitNormal.Quantile(1 - alpha/2)
	res.CILow = diff - zCrit*seDiff
	res.CIHigh = diff + zCrit*seDiff

	res.Significant = res.PValue < alpha
	return res, nil
}
