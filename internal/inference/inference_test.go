package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate_CanonicalScenario(t *testing.T) {
	// 12% control vs 14.94% treatment at 10,000 per variant: a +24.5%
	// relative lift that is overwhelmingly significant.
	control := Aggregate{Trials: 10000, Successes: 1200}
	treatment := Aggregate{Trials: 10000, Successes: 1494}

	res, err := Evaluate(control, treatment, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if math.Abs(res.RateControl-0.12) > 1e-12 {
		t.Errorf("RateControl = %v, want 0.12", res.RateControl)
	}
	if math.Abs(res.RateTreatment-0.1494) > 1e-12 {
		t.Errorf("RateTreatment = %v, want 0.1494", res.RateTreatment)
	}
	if !res.LiftDefined {
		t.Fatal("LiftDefined = false, want true")
	}
	if math.Abs(res.RelativeLift-0.245) > 1e-9 {
		t.Errorf("RelativeLift = %v, want 0.245", res.RelativeLift)
	}
	if math.Abs(res.PValue-1.134271787606167e-09) > 1e-12 {
		t.Errorf("PValue = %v, want ~1.1343e-09", res.PValue)
	}
	if !res.Significant {
		t.Error("Significant = false, want true")
	}
	if math.Abs(res.CILow-0.019945745637682834) > 1e-9 {
		t.Errorf("CILow = %v", res.CILow)
	}
	if math.Abs(res.CIHigh-0.03885425436231718) > 1e-9 {
		t.Errorf("CIHigh = %v", res.CIHigh)
	}
	if res.CILow > res.CIHigh {
		t.Error("interval bounds out of order")
	}
}

func TestEvaluate_Recomputation_BitIdentical(t *testing.T) {
	control := Aggregate{Trials: 5000, Successes: 600}
	treatment := Aggregate{Trials: 5000, Successes: 690}

	first, err := Evaluate(control, treatment, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	second, err := Evaluate(control, treatment, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("recomputation differs (-first +second):\n%s", diff)
	}
}

func TestEvaluate_SwapSymmetry(t *testing.T) {
	a := Aggregate{Trials: 8000, Successes: 960}
	b := Aggregate{Trials: 8200, Successes: 1107}

	fwd, err := Evaluate(a, b, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	rev, err := Evaluate(b, a, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// The p-value does not care which arm is called treatment.
	if math.Abs(fwd.PValue-rev.PValue) > 1e-12 {
		t.Errorf("p-value not symmetric: %v vs %v", fwd.PValue, rev.PValue)
	}
	// The rate difference flips sign, so the interval mirrors.
	if math.Abs(fwd.CILow+rev.CIHigh) > 1e-12 || math.Abs(fwd.CIHigh+rev.CILow) > 1e-12 {
		t.Errorf("interval not mirrored: [%v,%v] vs [%v,%v]", fwd.CILow, fwd.CIHigh, rev.CILow, rev.CIHigh)
	}
	// Lifts have opposite signs (magnitudes differ because the base changes).
	if (fwd.RelativeLift > 0) == (rev.RelativeLift > 0) {
		t.Errorf("lift signs should differ: %v vs %v", fwd.RelativeLift, rev.RelativeLift)
	}
}

func TestEvaluate_ZeroControlRate(t *testing.T) {
	control := Aggregate{Trials: 1000, Successes: 0}
	treatment := Aggregate{Trials: 1000, Successes: 40}

	res, err := Evaluate(control, treatment, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.LiftDefined {
		t.Error("LiftDefined = true with zero control rate, want false")
	}
	if res.PValue <= 0 || res.PValue >= 1 {
		t.Errorf("PValue = %v, want in (0,1)", res.PValue)
	}
}

func TestEvaluate_NoVariation(t *testing.T) {
	// All failures everywhere: pooled SE is zero, no evidence either way.
	res, err := Evaluate(Aggregate{Trials: 100}, Aggregate{Trials: 100}, 0.05)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if res.PValue != 1 {
		t.Errorf("PValue = %v, want 1", res.PValue)
	}
	if res.Significant {
		t.Error("Significant = true with no variation")
	}
}

func TestEvaluate_InsufficientData(t *testing.T) {
	good := Aggregate{Trials: 100, Successes: 10}
	empty := Aggregate{}

	if _, err := Evaluate(empty, good, 0.05); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty control: err = %v, want ErrInsufficientData", err)
	}
	if _, err := Evaluate(good, empty, 0.05); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("empty treatment: err = %v, want ErrInsufficientData", err)
	}
}

func TestEvaluate_InvalidInputs(t *testing.T) {
	good := Aggregate{Trials: 100, Successes: 10}

	tests := []struct {
		name               string
		control, treatment Aggregate
		alpha              float64
	}{
		{"alpha zero", good, good, 0},
		{"alpha one", good, good, 1},
		{"successes exceed trials", Aggregate{Trials: 10, Successes: 11}, good, 0.05},
		{"negative successes", good, Aggregate{Trials: 10, Successes: -1}, 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.control, tt.treatment, tt.alpha)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestEvaluate_SignificantFlagTracksAlpha(t *testing.T) {
	control := Aggregate{Trials: 1000, Successes: 100}
	treatment := Aggregate{Trials: 1000, Successes: 125}

	loose, err := Evaluate(control, treatment, 0.10)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	strict, err := Evaluate(control, treatment, 0.01)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// Same data, same p-value; only the flag moves with alpha.
	if loose.PValue != strict.PValue {
		t.Errorf("p-value should not depend on alpha: %v vs %v", loose.PValue, strict.PValue)
	}
	if loose.Significant != (loose.PValue < 0.10) {
		t.Error("Significant must equal PValue < alpha at alpha=0.10")
	}
	if strict.Significant != (strict.PValue < 0.01) {
		t.Error("Significant must equal PValue < alpha at alpha=0.01")
	}
}

func TestAggregate_Rate(t *testing.T) {
	if r := (Aggregate{Trials: 200, Successes: 30}).Rate(); math.Abs(r-0.15) > 1e-12 {
		t.Errorf("Rate = %v, want 0.15", r)
	}
	if r := (Aggregate{}).Rate(); r != 0 {
		t.Errorf("Rate of empty aggregate = %v, want 0", r)
	}
}
