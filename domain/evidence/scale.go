package evidence

import "math"

// VerbalScale is the verbal equivalent of a likelihood ratio
type VerbalScale string

const (
	ScaleNeutral          VerbalScale = "neutral"
	ScaleWeak             VerbalScale = "weak support"
	ScaleModerate         VerbalScale = "moderate support"
	ScaleModeratelyStrong VerbalScale = "moderately strong support"
	ScaleStrong           VerbalScale = "strong support"
	ScaleVeryStrong       VerbalScale = "very strong support"
	ScaleExtremelyStrong  VerbalScale = "extremely strong support"
	ScaleUndefined        VerbalScale = "undefined"
)

// ScaleFor maps a ratio onto the verbal scale. Ratios below one are read as
// support for the second proposition with the reciprocal magnitude.
func ScaleFor(lr float64) VerbalScale {
	if math.IsNaN(lr) || lr < 0 {
		return ScaleUndefined
	}
	if lr == 0 || math.IsInf(lr, 1) {
		return ScaleExtremelyStrong
	}
	m := lr
	if m < 1 {
		m = 1 / m
	}
	switch {
	case m == 1:
		return ScaleNeutral
	case m < 10:
		return ScaleWeak
	case m < 100:
		return ScaleModerate
	case m < 1000:
		return ScaleModeratelyStrong
	case m < 10000:
		return ScaleStrong
	case m < 1e6:
		return ScaleVeryStrong
	default:
		return ScaleExtremelyStrong
	}
}

// Favouring names which of the two labels the ratio supports
func Favouring(lr float64, first, second string) string {
	switch {
	case math.IsNaN(lr):
		return ""
	case lr > 1:
		return first
	case lr < 1:
		return second
	default:
		return ""
	}
}
