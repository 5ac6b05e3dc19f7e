package display_test

import (
	"testing"

	"liftgate/internal/display"
)

func TestVerdict(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"SHIP", "Ship"},
		{"HOLD", "Hold"},
		{"DO_NOT_SHIP", "Do Not Ship"},
		{"INCONCLUSIVE", "Inconclusive"},
		{"UNKNOWN_CODE", "UNKNOWN_CODE"},
	}
	for _, tc := range tests {
		if got := display.Verdict(tc.code); got != tc.want {
			t.Errorf("Verdict(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestVerdictWithCode(t *testing.T) {
	if got := display.VerdictWithCode("SHIP"); got != "Ship (SHIP)" {
		t.Errorf("VerdictWithCode(SHIP) = %q", got)
	}
	if got := display.VerdictWithCode("x"); got != "x" {
		t.Errorf("VerdictWithCode(x) = %q", got)
	}
}

func TestVerdictGlyph_CoversAllVerdicts(t *testing.T) {
	for _, code := range []string{"SHIP", "HOLD", "DO_NOT_SHIP", "INCONCLUSIVE"} {
		if display.VerdictGlyph(code) == "" {
			t.Errorf("VerdictGlyph(%q) is empty", code)
		}
	}
	if display.VerdictGlyph("other") != "" {
		t.Error("VerdictGlyph(other) should be empty")
	}
}

func TestMetricRole(t *testing.T) {
	if display.MetricRole(true) != "primary" {
		t.Error("MetricRole(true) should be primary")
	}
	if display.MetricRole(false) != "guardrail" {
		t.Error("MetricRole(false) should be guardrail")
	}
}
