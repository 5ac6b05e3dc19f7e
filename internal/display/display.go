// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown reports, and logs.
// Keep raw codes for YAML fields, map keys, and equality comparisons.
package display

// --- Verdicts ---

var verdicts = map[string]string{
	"SHIP":         "Ship",
	"HOLD":         "Hold",
	"DO_NOT_SHIP":  "Do Not Ship",
	"INCONCLUSIVE": "Inconclusive",
}

// Verdict returns the human-readable name for a verdict code.
// Unknown codes are returned as-is.
func Verdict(code string) string {
	if name, ok := verdicts[code]; ok {
		return name
	}
	return code
}

// VerdictWithCode returns "Ship (SHIP)" format.
func VerdictWithCode(code string) string {
	if name, ok := verdicts[code]; ok {
		return name + " (" + code + ")"
	}
	return code
}

// VerdictGlyph returns a terminal marker for a verdict code.
func VerdictGlyph(code string) string {
	switch code {
	case "SHIP":
		return "✅"
	case "HOLD":
		return "⏸"
	case "DO_NOT_SHIP":
		return "🛑"
	case "INCONCLUSIVE":
		return "⚠️"
	default:
		return ""
	}
}

// --- Metric roles ---

// MetricRole names a result row: "primary" for the deciding metric,
// "guardrail" for everything else.
func MetricRole(isPrimary bool) string {
	if isPrimary {
		return "primary"
	}
	return "guardrail"
}
