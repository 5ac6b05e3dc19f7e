package power

import (
	"errors"
	"testing"
)

func TestRequiredSampleSize_CanonicalConfig(t *testing.T) {
	// 12% baseline, 10% relative MDE (target 13.2%), alpha 0.05, power 0.80.
	n, err := RequiredSampleSize(0.12, 0.10, 0.05, 0.80)
	if err != nil {
		t.Fatalf("RequiredSampleSize: %v", err)
	}
	if n != 12004 {
		t.Errorf("n = %d, want 12004", n)
	}
}

func TestRequiredSampleSize_KnownValues(t *testing.T) {
	tests := []struct {
		name                       string
		baseline, mde, alpha, powr float64
		want                       int
	}{
		{"base", 0.12, 0.10, 0.05, 0.80, 12004},
		{"smaller mde", 0.12, 0.05, 0.05, 0.80, 47036},
		{"higher power", 0.12, 0.10, 0.05, 0.90, 16070},
		{"stricter alpha", 0.12, 0.10, 0.01, 0.80, 17862},
		{"stricter alpha higher power", 0.12, 0.05, 0.01, 0.90, 89168},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := RequiredSampleSize(tt.baseline, tt.mde, tt.alpha, tt.powr)
			if err != nil {
				t.Fatalf("RequiredSampleSize: %v", err)
			}
			if n != tt.want {
				t.Errorf("n = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestRequiredSampleSize_Monotonicity(t *testing.T) {
	base, err := RequiredSampleSize(0.12, 0.10, 0.05, 0.80)
	if err != nil {
		t.Fatalf("RequiredSampleSize: %v", err)
	}

	smallerAlpha, _ := RequiredSampleSize(0.12, 0.10, 0.01, 0.80)
	if smallerAlpha < base {
		t.Errorf("decreasing alpha should not decrease n: %d < %d", smallerAlpha, base)
	}

	morePower, _ := RequiredSampleSize(0.12, 0.10, 0.05, 0.95)
	if morePower < base {
		t.Errorf("increasing power should not decrease n: %d < %d", morePower, base)
	}

	smallerMDE, _ := RequiredSampleSize(0.12, 0.02, 0.05, 0.80)
	if smallerMDE < base {
		t.Errorf("decreasing mde should not decrease n: %d < %d", smallerMDE, base)
	}
}

func TestRequiredSampleSize_NegativeEffect(t *testing.T) {
	// Powering a harm-detection experiment (negative relative effect) is
	// symmetric and legal as long as the target rate stays in (0,1).
	n, err := RequiredSampleSize(0.12, -0.10, 0.05, 0.80)
	if err != nil {
		t.Fatalf("RequiredSampleSize: %v", err)
	}
	if n <= 0 {
		t.Errorf("n = %d, want positive", n)
	}
}

func TestRequiredSampleSize_InvalidParameters(t *testing.T) {
	tests := []struct {
		name                       string
		baseline, mde, alpha, powr float64
	}{
		{"baseline zero", 0, 0.10, 0.05, 0.80},
		{"baseline one", 1, 0.10, 0.05, 0.80},
		{"baseline negative", -0.1, 0.10, 0.05, 0.80},
		{"mde zero", 0.12, 0, 0.05, 0.80},
		{"alpha zero", 0.12, 0.10, 0, 0.80},
		{"alpha one", 0.12, 0.10, 1, 0.80},
		{"power zero", 0.12, 0.10, 0.05, 0},
		{"power one", 0.12, 0.10, 0.05, 1},
		{"treatment rate above one", 0.6, 0.9, 0.05, 0.80},
		{"treatment rate below zero", 0.5, -1.5, 0.05, 0.80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RequiredSampleSize(tt.baseline, tt.mde, tt.alpha, tt.powr)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("err = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
