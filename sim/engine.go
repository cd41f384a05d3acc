package sim

import (
	"time"

	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/risk"
)

// Run replays a pre-sorted historical trade log through the configured
// money-management policy and returns the full counterfactual result.
//
// The engine is deterministic and performs no I/O: identical inputs always
// produce an identical result. Params must have passed policy validation;
// the loop itself has no error path.
func Run(trades []TradeForSimulation, params policy.Params) RiskSimulationResult {
	loc := time.UTC
	if params.Timezone != "" {
		if l, err := time.LoadLocation(params.Timezone); err == nil {
			loc = l
		}
	}

	st := newRunState(params.AccountBalanceCents)
	sims := make([]SimulatedTrade, 0, len(trades))
	curve := make([]EquityCurvePoint, 0, len(trades))

	for i := range trades {
		var rec SimulatedTrade
		st, rec = step(st, &trades[i], params, loc)
		sims = append(sims, rec)
		curve = append(curve, EquityCurvePoint{
			TradeID:              trades[i].ID,
			Time:                 trades[i].EntryTime,
			OriginalEquityCents:  st.originalEquity,
			SimulatedEquityCents: st.equity,
		})
	}
	if st.dayKey != "" {
		st = flushDay(st)
	}

	result := RiskSimulationResult{
		Params:      params,
		Summary:     buildSummary(trades, sims, params, st),
		Trades:      sims,
		EquityCurve: curve,
		Weeks:       buildWeekTraces(sims, st.days, loc, params.Limits.WeeklyLossCents),
	}
	if len(trades) > 0 {
		result.StartDate = trades[0].EntryTime
		result.EndDate = trades[len(trades)-1].EntryTime
	}
	return result
}

// step advances the state machine by one trade. It is a pure function of
// its inputs, which keeps every transition independently testable.
func step(st runState, tr *TradeForSimulation, p policy.Params, loc *time.Location) (runState, SimulatedTrade) {
	st = crossBoundaries(st, tr.EntryTime, p, loc)

	tradeNo := st.dayTradeCount
	st.dayTradeCount++
	isT1 := st.dayExecuted == 0

	// The original stream always advances, executed or not: it is the
	// "what would have happened anyway" comparison line.
	st.originalEquity += tr.PnlCents

	plan := deriveRisk(st, p, isT1)
	status := evaluateSkip(st, tr, p, plan.amountCents)

	rec := SimulatedTrade{
		TradeID:              tr.ID,
		EntryTime:            tr.EntryTime,
		Asset:                tr.Asset,
		Status:               status,
		OriginalPositionSize: tr.PositionSize,
		OriginalPnlCents:     tr.PnlCents,
		OriginalRMultiple:    tr.RMultiple,
		DayPhase:             st.phase,
		DayTradeNumber:       tradeNo + 1,
	}

	if status != StatusExecuted {
		switch status {
		case SkipDailyLimit:
			st.dayLimitHit = true
		case SkipDailyTarget:
			st.dayTargetHit = true
		}
		rec.RiskReason = skipReason(status)
		rec.EquityAfterCents = st.equity
		rec.DrawdownPercent = risk.DrawdownPercent(st.equity, st.peak)
		rec.ConsecutiveLosses = st.consecLosses
		return st, rec
	}

	sized := risk.SizePosition(risk.SizeInputs{
		RiskBudgetCents: plan.amountCents,
		EntryPrice:      tr.EntryPrice,
		StopPrice:       *tr.StopLoss,
		TickSize:        tr.TickSize,
		TickValueCents:  tr.TickValueCents,
		MinStopDistance: minStopDistance(p),
		MaxContracts:    plan.maxContracts,
	})
	pnl := risk.PnL(risk.PnLInputs{
		EntryPrice:      tr.EntryPrice,
		ExitPrice:       tr.ExitPrice,
		Direction:       tr.Direction,
		Contracts:       sized.Contracts,
		TickSize:        tr.TickSize,
		TickValueCents:  tr.TickValueCents,
		CommissionCents: tr.CommissionCents,
		FeesCents:       tr.FeesCents,
	})

	net := pnl.NetCents
	outcome := risk.OutcomeOf(net)

	st.equity += net
	if st.equity > st.peak {
		st.peak = st.equity
	}
	st.dailyPnl += net
	st.weeklyPnl += net
	st.monthlyPnl += net
	st.dayExecuted++
	st.previousRisk = plan.amountCents

	switch outcome {
	case risk.Win:
		st.consecLosses = 0
		st.wins++
		st.grossWinCents += net
		st.lastWinPnl = net
	case risk.Loss:
		st.consecLosses++
		st.losses++
		st.grossLossCents += -net
		st.lastWinPnl = 0
	}

	if lim := p.Limits.DailyLossCents; lim > 0 && st.dailyPnl <= -lim {
		st.dayLimitHit = true
	}
	if tgt := p.Limits.DailyTargetCents; tgt > 0 && st.dailyPnl >= tgt {
		st.dayTargetHit = true
	}

	st.phase = plan.phase
	if p.Mode == policy.ModeAdvanced && p.Advanced != nil {
		st = transition(st, p.Advanced, isT1, outcome, net)
	}

	posSize := sized.Contracts
	simPnl := net
	simR := risk.RMultiple(net, sized.ActualRiskCents)

	rec.SimulatedPositionSize = &posSize
	rec.SimulatedPnlCents = &simPnl
	rec.SimulatedRMultiple = &simR
	rec.RiskAmountCents = plan.amountCents
	rec.RiskReason = plan.reason
	rec.DayPhase = plan.phase
	rec.EquityAfterCents = st.equity
	rec.DrawdownPercent = risk.DrawdownPercent(st.equity, st.peak)
	rec.ConsecutiveLosses = st.consecLosses
	return st, rec
}

// crossBoundaries applies day/week/month resets before any per-trade logic.
func crossBoundaries(st runState, at time.Time, p policy.Params, loc *time.Location) runState {
	dk := dayKeyOf(at, loc)
	if dk != st.dayKey {
		if st.dayKey != "" {
			st = flushDay(st)
		}
		st.dayKey = dk
		st.dailyPnl = 0
		st.dayTradeCount = 0
		st.dayExecuted = 0
		st.dayGains = 0
		st.phase = PhaseBase
		st.recoveryIndex = 0
		st.previousRisk = 0
		st.lastWinPnl = 0
		st.dayLimitHit = false
		st.dayTargetHit = false
		if p.Mode == policy.ModeSimple && p.Simple != nil &&
			p.Simple.ConsecutiveLossScope != policy.ScopeGlobal {
			st.consecLosses = 0
		}
	}

	if mk := monthKeyOf(at, loc); mk != st.monthKey {
		st.monthKey = mk
		st.monthlyPnl = 0
	}
	if wk := weekKeyOf(at, loc); wk != st.weekKey {
		st.weekKey = wk
		st.weeklyPnl = 0
	}
	return st
}

// transition applies the advanced-mode phase machine strictly after the
// trade's outcome is known. phaseAtTrade is already in st.phase.
func transition(st runState, cfg *policy.DecisionTreeConfig, isT1 bool, outcome risk.Outcome, netCents int64) runState {
	gainTarget := int64(0)
	switch gm := cfg.GainMode.(type) {
	case policy.SingleTarget:
		gainTarget = gm.DailyTargetCents
	case policy.Compounding:
		gainTarget = gm.DailyTargetCents
	}

	markTarget := func(st runState) runState {
		if gainTarget > 0 && st.dayGains >= gainTarget {
			st.dayTargetHit = true
		}
		return st
	}

	switch {
	case isT1:
		switch outcome {
		case risk.Loss:
			st.phase = PhaseLossRecovery
			st.recoveryIndex = 0
		case risk.Win:
			st.dayGains += netCents
			st.phase = PhaseGainMode
			st = markTarget(st)
		}

	case st.phase == PhaseLossRecovery:
		if outcome == risk.Win && !cfg.LossRecovery.ExecuteAllRegardless {
			st.dayGains += netCents
			st.phase = PhaseGainMode
			st = markTarget(st)
		} else {
			st.recoveryIndex++
		}

	case st.phase == PhaseGainMode:
		if gm, ok := cfg.GainMode.(policy.Compounding); ok {
			switch outcome {
			case risk.Loss:
				if gm.StopOnFirstLoss {
					st.dayTargetHit = true
				}
			case risk.Win:
				st.dayGains += netCents
				st = markTarget(st)
			}
		}
	}

	return st
}

func minStopDistance(p policy.Params) float64 {
	if p.Mode == policy.ModeAdvanced && p.Advanced != nil {
		return p.Advanced.BaseTrade.MinStopDistance
	}
	return 0
}
