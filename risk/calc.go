package risk

import "math"

// Direction is the side of a trade.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// Outcome classifies a trade by its net P/L.
type Outcome string

const (
	Win       Outcome = "win"
	Loss      Outcome = "loss"
	Breakeven Outcome = "breakeven"
)

// OutcomeOf returns the outcome for a net P/L in cents.
func OutcomeOf(pnlCents int64) Outcome {
	switch {
	case pnlCents > 0:
		return Win
	case pnlCents < 0:
		return Loss
	default:
		return Breakeven
	}
}

// RMultiple expresses a P/L as a multiple of the amount risked.
// Non-positive risk yields 0 rather than a division error.
func RMultiple(pnlCents, riskCents int64) float64 {
	if riskCents <= 0 {
		return 0
	}
	return float64(pnlCents) / float64(riskCents)
}

// DrawdownPercent is the decline of equity from the peak, in percent.
// Returns 0 whenever equity is at or above the peak, so the result is
// always in [0, 100).
func DrawdownPercent(equityCents, peakCents int64) float64 {
	if peakCents <= 0 || equityCents >= peakCents {
		return 0
	}
	return float64(peakCents-equityCents) / float64(peakCents) * 100
}

// RoundCents rounds a fractional cent amount to the nearest whole cent.
func RoundCents(x float64) int64 {
	return int64(math.Round(x))
}
