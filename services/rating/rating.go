// Package rating computes per-performance rating values and the
// best/new selection that averages into a player rating.
package rating

import "math"

// score band boundaries, game point scale tops out at 1010000
const (
	scoreSSSPlus = 1009000
	scoreSSS     = 1007500
	scoreSSPlus  = 1005000
	scoreSS      = 1000000
	scoreS       = 975000
)

// Value computes one performance's rating value from the chart
// constant and the score. total over score in [0, 1010000], zero below
// the S boundary.
func Value(constant float64, score int) float64 {
	switch {
	case score >= scoreSSSPlus:
		return constant + 2.15
	case score >= scoreSSS:
		return constant + 2.00 + float64(score-scoreSSS)*0.0001
	case score >= scoreSSPlus:
		return constant + 1.50 + float64(score-scoreSSPlus)*0.0002
	case score >= scoreSS:
		return constant + 1.00 + float64(score-scoreSS)*0.0001
	case score >= scoreS:
		return constant + float64(score-scoreS)*0.00004
	default:
		return 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
