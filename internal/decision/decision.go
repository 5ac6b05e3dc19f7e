// Package decision turns a primary significance result and a set of
// guardrail evaluations into a ship/hold/no-ship recommendation.
package decision

import (
	"errors"
	"fmt"
	"strings"

	"liftgate/internal/inference"
)

// ErrEmptyGuardrailSet reports that policy demanded guardrails but the
// caller supplied none. An empty guardrail list is otherwise valid: it
// simply can never trigger a Hold.
var ErrEmptyGuardrailSet = errors.New("empty guardrail set")

// Verdict is the closed set of recommendations.
type Verdict string

const (
	Ship         Verdict = "SHIP"
	Hold         Verdict = "HOLD"
	DoNotShip    Verdict = "DO_NOT_SHIP"
	Inconclusive Verdict = "INCONCLUSIVE"
)

// Decision is the terminal pipeline output.
type Decision struct {
	Verdict       Verdict
	Justification string
}

// GuardrailResult pairs a guardrail metric's inference result with its
// configured harm threshold (a relative lift, e.g. -0.02).
type GuardrailResult struct {
	Name          string
	Result        inference.Result
	HarmThreshold float64
}

// Violated reports whether this guardrail blocks shipping under the policy.
// The threshold comparison is strict: lift must fall BELOW the threshold.
// With RequireSignificance set (the default), an underpowered guardrail is
// "no evidence of harm" and never blocks on its own.
func (g GuardrailResult) Violated(policy Policy) bool {
	if !g.Result.LiftDefined {
		return false
	}
	if policy.RequireSignificance && !g.Result.Significant {
		return false
	}
	return g.Result.RelativeLift < g.HarmThreshold
}

// Policy configures the guardrail rules that the source system kept in
// code. Guardrails are deliberately NOT corrected for multiple testing;
// adding a correction here would change shipping decisions.
type Policy struct {
	// RequireSignificance gates Hold on the guardrail's own test reaching
	// significance, not just a large negative lift.
	RequireSignificance bool `yaml:"require_significance"`
	// MinGuardrails, when positive, makes an empty guardrail set an error
	// rather than a trivially safe configuration.
	MinGuardrails int `yaml:"min_guardrails"`
}

// DefaultPolicy matches the source system: strict threshold, significance
// required, guardrails optional.
func DefaultPolicy() Policy {
	return Policy{RequireSignificance: true}
}

// Decide applies the fixed precedence order:
//
//  1. primary not significant          -> Inconclusive
//  2. significant negative lift        -> DoNotShip
//  3. any violated guardrail           -> Hold
//  4. otherwise                        -> Ship
//
// Every guardrail is evaluated with no short-circuit, so the justification
// can name every violation, not just the first.
func Decide(primary inference.Result, guardrails []GuardrailResult, policy Policy) (Decision, error) {
	if policy.MinGuardrails > 0 && len(guardrails) < policy.MinGuardrails {
		return Decision{}, fmt.Errorf("%w: policy requires %d guardrail(s), got %d",
			ErrEmptyGuardrailSet, policy.MinGuardrails, len(guardrails))
	}

	if !primary.Significant {
		return Decision{
			Verdict:       Inconclusive,
			Justification: fmt.Sprintf("no significant improvement (p=%.4f); keep control and collect more data", primary.PValue),
		}, nil
	}

	if primary.LiftDefined && primary.RelativeLift < 0 {
		return Decision{
			Verdict: DoNotShip,
			Justification: fmt.Sprintf("significant NEGATIVE lift %+.2f%% (p=%.4f); treatment harms the primary metric",
				primary.RelativeLift*100, primary.PValue),
		}, nil
	}

	var violations []string
	for _, g := range guardrails {
		if g.Violated(policy) {
			violations = append(violations,
				fmt.Sprintf("%s lift %+.2f%% below threshold %+.2f%%", g.Name, g.Result.RelativeLift*100, g.HarmThreshold*100))
		}
	}
	if len(violations) > 0 {
		return Decision{
			Verdict:       Hold,
			Justification: "positive lift but guardrail violation: " + strings.Join(violations, "; "),
		}, nil
	}

	return Decision{
		Verdict: Ship,
		Justification: fmt.Sprintf("statistically significant gain %+.2f%% (p=%.4f) with safe guardrails",
			primary.RelativeLift*100, primary.PValue),
	}, nil
}
