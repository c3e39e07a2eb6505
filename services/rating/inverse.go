package rating

// combo bonus offsets applied by the game on top of the score-derived
// rating delta
const (
	BonusFullCombo          = 0.50
	BonusAllJustice         = 1.00
	BonusAllJusticeCritical = 1.25
)

// ConstantFromValue solves Value for the chart constant given a score
// and the observed rating value. false when the score sits below the
// contribution floor, where every constant maps to zero.
func ConstantFromValue(score int, value float64) (float64, bool) {
	switch {
	case score >= scoreSSSPlus:
		return value - 2.15, true
	case score >= scoreSSS:
		return value - 2.00 - float64(score-scoreSSS)*0.0001, true
	case score >= scoreSSPlus:
		return value - 1.50 - float64(score-scoreSSPlus)*0.0002, true
	case score >= scoreSS:
		return value - 1.00 - float64(score-scoreSS)*0.0001, true
	case score >= scoreS:
		return value - float64(score-scoreS)*0.00004, true
	default:
		return 0, false
	}
}

// ConstantFromDelta is the dashboard's manual constant calculator: it
// recovers the chart constant from a score, the aggregate rating delta
// the player observed, and the combo bonus their lamp earned.
func ConstantFromDelta(score int, delta float64, bonus float64) (float64, bool) {
	return ConstantFromValue(score, delta-bonus)
}
