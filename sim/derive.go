package sim

import (
	"fmt"
	"math"

	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/risk"
)

// derivedRisk is the sized-up plan for one trade before skip evaluation.
type derivedRisk struct {
	amountCents  int64
	reason       string
	maxContracts int64

	// phase the trade executes under; also the phase the state falls
	// through to when a recovery sequence runs out.
	phase Phase
}

func deriveRisk(st runState, p policy.Params, isT1 bool) derivedRisk {
	var d derivedRisk
	if p.Mode == policy.ModeAdvanced && p.Advanced != nil {
		d = deriveAdvanced(st, p.Advanced, isT1)
	} else {
		d = deriveSimple(st, p)
	}
	if d.amountCents < 1 {
		d.amountCents = 1
	}
	return d
}

func deriveSimple(st runState, p policy.Params) derivedRisk {
	base := p.SimpleBaseRiskCents()
	r := p.Simple

	d := derivedRisk{amountCents: base, reason: "Base risk", phase: PhaseBase}
	if r == nil {
		return d
	}

	switch {
	case r.ReduceRiskAfterLoss && st.consecLosses > 0:
		factor := math.Pow(r.RiskReductionFactor, float64(st.consecLosses))
		d.amountCents = risk.RoundCents(float64(base) * factor)
		d.reason = fmt.Sprintf("Reduced to %.1f%% of base after %d consecutive loss(es)",
			factor*100, st.consecLosses)
	case r.IncreaseRiskAfterWin && st.lastWinPnl > 0:
		bonus := risk.RoundCents(float64(st.lastWinPnl) * r.WinIncreasePercent / 100)
		d.amountCents = base + bonus
		d.reason = fmt.Sprintf("Increased by %d¢ reinvested from the previous win", bonus)
	}
	return d
}

func deriveAdvanced(st runState, cfg *policy.DecisionTreeConfig, isT1 bool) derivedRisk {
	base := sizingBaseRisk(st, cfg)
	d := derivedRisk{
		amountCents:  base,
		reason:       "Base risk",
		maxContracts: cfg.BaseTrade.MaxContracts,
		phase:        st.phase,
	}

	switch {
	case isT1:
		// T1 always trades the base risk regardless of yesterday's phase.
		d.reason = "Base risk (first trade of the day)"
		d.phase = PhaseBase

	case st.phase == PhaseLossRecovery:
		seq := cfg.LossRecovery.Sequence
		if st.recoveryIndex < len(seq) {
			step := seq[st.recoveryIndex]
			d.amountCents = risk.ResolveCalculation(step.Calculation, base, st.previousRisk)
			d.reason = fmt.Sprintf("Loss recovery step %d of %d", st.recoveryIndex+1, len(seq))
			if step.MaxContracts > 0 {
				d.maxContracts = step.MaxContracts
			}
		} else {
			// Sequence exhausted without StopAfterSequence: back to base.
			d.reason = "Recovery sequence exhausted, back to base risk"
			d.phase = PhaseNormal
		}

	case st.phase == PhaseGainMode:
		if gm, ok := cfg.GainMode.(policy.Compounding); ok {
			d.amountCents = risk.RoundCents(float64(st.dayGains) * gm.ReinvestmentPercent / 100)
			d.reason = fmt.Sprintf("Compounding %.0f%% of %d¢ day gains",
				gm.ReinvestmentPercent, st.dayGains)
		}

	case st.phase == PhaseNormal:
		d.reason = "Base risk"
	}

	if cfg.CascadingLimits != nil && cfg.CascadingLimits.Action == policy.ActionReduceRisk {
		if beyondCascadingLimit(st, cfg.CascadingLimits) {
			d.amountCents = risk.RoundCents(float64(d.amountCents) * 0.5)
			d.reason += ", halved beyond cascading loss limit"
		}
	}

	if cfg.DrawdownControl != nil {
		dd := risk.DrawdownPercent(st.equity, st.peak)
		if dd >= cfg.DrawdownControl.RecoveryThresholdPercent {
			for _, tier := range cfg.DrawdownControl.Tiers {
				if dd < tier.DrawdownPercent {
					continue
				}
				switch tier.Action {
				case policy.TierPause:
					d.amountCents = 1
					d.reason = fmt.Sprintf("Paused at %.1f%% drawdown", dd)
				case policy.TierReduceRisk:
					d.amountCents = risk.RoundCents(float64(d.amountCents) * (1 - tier.ReducePercent/100))
					d.reason += fmt.Sprintf(", reduced %.0f%% at %.1f%% drawdown", tier.ReducePercent, dd)
				}
				break
			}
		}
	}

	return d
}

func beyondCascadingLimit(st runState, lim *policy.CascadingLimits) bool {
	if lim.MonthlyLossCents > 0 && st.monthlyPnl <= -lim.MonthlyLossCents {
		return true
	}
	if lim.WeeklyLossCents > 0 && st.weeklyPnl <= -lim.WeeklyLossCents {
		return true
	}
	return false
}

// sizingBaseRisk derives the per-trade risk anchor from the configured
// sizing mode and the run's own equity and win statistics.
func sizingBaseRisk(st runState, cfg *policy.DecisionTreeConfig) int64 {
	base := cfg.BaseTrade.RiskCents

	switch rs := cfg.RiskSizing.(type) {
	case policy.PercentOfBalance:
		return risk.RoundCents(float64(st.equity) * rs.RiskPercent / 100)

	case policy.FixedRatio:
		profit := st.equity - st.initialBalance
		var levels int64
		if profit > 0 && rs.DeltaCents > 0 {
			levels = profit / rs.DeltaCents
		}
		return rs.BaseContractRiskCents * (1 + levels)

	case policy.KellyFractional:
		if st.wins == 0 || st.losses == 0 {
			return base
		}
		w := float64(st.wins) / float64(st.wins+st.losses)
		avgWin := float64(st.grossWinCents) / float64(st.wins)
		avgLoss := float64(st.grossLossCents) / float64(st.losses)
		if avgLoss <= 0 {
			return base
		}
		k := w - (1-w)/(avgWin/avgLoss)
		if k <= 0 {
			return base
		}
		div := rs.Divisor
		if div < 1 {
			div = 1
		}
		return risk.RoundCents(float64(st.equity) * k / div)

	default:
		return base
	}
}
