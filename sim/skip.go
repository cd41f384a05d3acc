package sim

import "github.com/rustyeddy/risksim/policy"

// evaluateSkip decides whether a trade is excluded and why. The chain is
// evaluated in fixed priority order; the first matching condition wins.
// plannedRiskCents is the provisionally derived risk, used as the
// worst-case loss for the "would be hit" daily-limit check.
func evaluateSkip(st runState, tr *TradeForSimulation, p policy.Params, plannedRiskCents int64) Status {
	// 1. No usable stop-loss.
	if tr.StopLoss == nil || *tr.StopLoss == tr.EntryPrice {
		return SkipNoStopLoss
	}

	// Cascading limits only stop trading under the stopTrading action;
	// reduceRisk is handled inside risk derivation instead.
	cascadeStops := true
	if p.Mode == policy.ModeAdvanced && p.Advanced != nil && p.Advanced.CascadingLimits != nil {
		cascadeStops = p.Advanced.CascadingLimits.Action == policy.ActionStopTrading
	}

	// 2. Monthly loss ceiling.
	if cascadeStops && p.Limits.MonthlyLossCents > 0 && st.monthlyPnl <= -p.Limits.MonthlyLossCents {
		return SkipMonthlyLimit
	}

	// 3. Weekly loss ceiling.
	if cascadeStops && p.Limits.WeeklyLossCents > 0 && st.weeklyPnl <= -p.Limits.WeeklyLossCents {
		return SkipWeeklyLimit
	}

	// 4. Daily loss ceiling: already hit, or this trade's full risk would
	// cross it.
	if lim := p.Limits.DailyLossCents; lim > 0 {
		if st.dayLimitHit || st.dailyPnl <= -lim || st.dailyPnl-plannedRiskCents <= -lim {
			return SkipDailyLimit
		}
	}

	// 5. Daily profit target. The flag alone is enough: compounding's
	// stop-on-first-loss raises it without any cents target configured.
	if st.dayTargetHit {
		return SkipDailyTarget
	}
	if tgt := p.Limits.DailyTargetCents; tgt > 0 && st.dailyPnl >= tgt {
		return SkipDailyTarget
	}

	switch p.Mode {
	case policy.ModeSimple:
		if p.Simple != nil {
			// 6. Daily trade budget. Skipped trades consume it too.
			if p.Simple.MaxDailyTrades > 0 && st.dayTradeCount-1 >= p.Simple.MaxDailyTrades {
				return SkipMaxTrades
			}
			// 7. Loss streak gate.
			if p.Simple.MaxConsecutiveLosses > 0 && st.consecLosses >= p.Simple.MaxConsecutiveLosses {
				return SkipConsecutiveLoss
			}
		}

	case policy.ModeAdvanced:
		if cfg := p.Advanced; cfg != nil {
			// 8. Recovery sequence exhausted with stop-after-sequence.
			if st.phase == PhaseLossRecovery &&
				st.recoveryIndex >= len(cfg.LossRecovery.Sequence) &&
				cfg.LossRecovery.StopAfterSequence {
				return SkipRecoveryComplete
			}
			// 9. Single-target gain mode allows no further trades.
			if st.phase == PhaseGainMode {
				if _, single := cfg.GainMode.(policy.SingleTarget); single {
					return SkipGainStop
				}
			}
		}
	}

	return StatusExecuted
}

func skipReason(s Status) string {
	switch s {
	case SkipNoStopLoss:
		return "No usable stop-loss on the original trade"
	case SkipMonthlyLimit:
		return "Monthly loss limit reached"
	case SkipWeeklyLimit:
		return "Weekly loss limit reached"
	case SkipDailyLimit:
		return "Daily loss limit reached"
	case SkipDailyTarget:
		return "Daily profit target reached"
	case SkipMaxTrades:
		return "Daily trade budget exhausted"
	case SkipConsecutiveLoss:
		return "Maximum consecutive losses reached"
	case SkipRecoveryComplete:
		return "Loss-recovery sequence complete"
	case SkipGainStop:
		return "Gain target policy stops further trades"
	default:
		return ""
	}
}
