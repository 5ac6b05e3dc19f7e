package format

import "fmt"

// FmtRate formats a proportion as a percentage, e.g. 0.1234 -> "12.34%".
func FmtRate(r float64) string {
	return fmt.Sprintf("%.2f%%", r*100)
}

// FmtLift formats a relative lift with an explicit sign, e.g. "+24.50%".
func FmtLift(lift float64, defined bool) string {
	if !defined {
		return "undefined (zero baseline)"
	}
	return fmt.Sprintf("%+.2f%%", lift*100)
}

// FmtPValue formats a p-value, switching to scientific notation below 0.0001.
func FmtPValue(p float64) string {
	if p > 0 && p < 0.0001 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.4f", p)
}

// FmtCount formats a count with K/M suffix for readability.
func FmtCount(n int64) string {
	if n >= 1_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000.0)
	}
	if n >= 10_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000.0)
	}
	return fmt.Sprintf("%d", n)
}

// BoolMark returns "✓" for true and "✗" for false.
func BoolMark(v bool) string {
	if v {
		return "✓"
	}
	return "✗"
}
