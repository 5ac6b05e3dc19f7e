// Package power computes required per-variant sample sizes for
// two-proportion experiments.
package power

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ErrInvalidParameter reports an input outside its open-interval domain.
var ErrInvalidParameter = errors.New("invalid parameter")

// RequiredSampleSize returns the minimum observations per variant for a
// two-sided two-proportion z-test at significance alpha to detect a
// relative effect of mde on baseline with the given power.
//
// mde is RELATIVE: the hypothesized treatment rate is baseline*(1+mde).
// A 10% mde on a 12% baseline targets 13.2%, never 22%.
//
// Closed-form normal approximation with the pooled variance under the null
// and the unpooled variance under the alternative:
//
//	n = ( z_{1-α/2}·sqrt(2·p̄(1−p̄)) + z_{power}·sqrt(p1(1−p1)+p2(1−p2)) )² / (p2−p1)²
//
// where p̄ = (p1+p2)/2. The result is rounded UP; rounding down would
// silently under-power the experiment.
func RequiredSampleSize(baseline, mde, alpha, power float64) (int, error) {
	if baseline <= 0 || baseline >= 1 {
		return 0, fmt.Errorf("%w: baseline rate %v outside (0,1)", ErrInvalidParameter, baseline)
	}
	if mde == 0 {
		return 0, fmt.Errorf("%w: minimum detectable effect must be non-zero", ErrInvalidParameter)
	}
	if alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("%w: alpha %v outside (0,1)", ErrInvalidParameter, alpha)
	}
	if power <= 0 || power >= 1 {
		return 0, fmt.Errorf("%w: power %v outside (0,1)", ErrInvalidParameter, power)
	}

	p1 := baseline
	p2 := baseline * (1 + mde)
	if p2 <= 0 || p2 >= 1 {
		return 0, fmt.Errorf("%w: treatment rate %v (baseline %v, mde %v) outside (0,1)",
			ErrInvalidParameter, p2, baseline, mde)
	}

	zAlpha := distuv.UnitNormal.Quantile(1 - alpha/2)
	zPower := distuv.UnitNormal.Quantile(power)

	pBar := (p1 + p2) / 2
	nullSD := math.Sqrt(2 * pBar * (1 - pBar))
	altSD := math.Sqrt(p1*(1-p1) + p2*(1-p2))

	delta := p2 - p1
	n := math.Pow(zAlpha*nullSD+zPower*altSD, 2) / (delta * delta)

	return int(math.Ceil(n)), nil
}
