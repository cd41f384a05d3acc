package risk

import (
	"math"

	"github.com/rustyeddy/risksim/policy"
)

// ResolveCalculation turns one loss-recovery step into an absolute risk
// amount. Every variant is total; callers clamp the result to a 1-cent
// floor before sizing.
func ResolveCalculation(calc policy.RiskCalculation, baseRiskCents, previousRiskCents int64) int64 {
	switch c := calc.(type) {
	case policy.PercentOfBase:
		return int64(math.Round(float64(baseRiskCents) * c.Percent / 100))
	case policy.SameAsPrevious:
		if previousRiskCents > 0 {
			return previousRiskCents
		}
		return baseRiskCents
	case policy.FixedCents:
		return c.AmountCents
	default:
		return baseRiskCents
	}
}
