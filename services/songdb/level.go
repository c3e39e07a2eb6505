package songdb

import (
	"math"
	"strconv"
	"strings"
)

// FormatLevel renders a constant as its display level: a fractional
// part of at least .5 gets a trailing "+".
func FormatLevel(constant float64) string {
	if constant <= 0 {
		return ""
	}
	whole := int(math.Floor(constant))
	if constant-math.Floor(constant) >= 0.5 {
		return strconv.Itoa(whole) + "+"
	}
	return strconv.Itoa(whole)
}

// ConstantForLevel inverts FormatLevel for levels 1 through 10, where
// per-song variance is small enough that the integer (or integer+0.5)
// default is accepted as the constant. higher levels must be sourced
// externally.
func ConstantForLevel(level string) (float64, bool) {
	plus := strings.HasSuffix(level, "+")
	base := strings.TrimSuffix(level, "+")

	whole, err := strconv.Atoi(strings.TrimSpace(base))
	if err != nil {
		return 0, false
	}
	if whole < 1 || whole > 10 {
		return 0, false
	}

	if plus {
		return float64(whole) + 0.5, true
	}
	return float64(whole), true
}
