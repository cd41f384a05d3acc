package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/risk"
)

// Test instrument: tick 0.25 worth 1250 cents, entries at 100.00 with the
// stop at 99.50, so each contract risks exactly 2500 cents and a full win
// or loss moves the account by the planned risk amount.
const (
	testTick      = 0.25
	testTickValue = 1250
)

func entryAt(day, slot int) time.Time {
	base := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	return base.AddDate(0, 0, day).Add(time.Duration(slot) * 15 * time.Minute)
}

func testTrade(id string, entry time.Time, exitOffset float64) TradeForSimulation {
	stop := 99.50
	perContract := int64(exitOffset/testTick) * testTickValue
	return TradeForSimulation{
		ID:             id,
		EntryTime:      entry,
		ExitTime:       entry.Add(5 * time.Minute),
		Asset:          "NQ",
		Direction:      risk.Long,
		EntryPrice:     100.00,
		ExitPrice:      100.00 + exitOffset,
		StopLoss:       &stop,
		PositionSize:   2,
		PnlCents:       perContract * 2,
		Outcome:        risk.OutcomeOf(perContract),
		RMultiple:      float64(perContract) / 5000,
		TickSize:       testTick,
		TickValueCents: testTickValue,
	}
}

// winAt gains one full risk unit per contract; lossAt loses one.
func winAt(id string, entry time.Time) TradeForSimulation {
	return testTrade(id, entry, 0.50)
}

func lossAt(id string, entry time.Time) TradeForSimulation {
	return testTrade(id, entry, -0.50)
}

func flatAt(id string, entry time.Time) TradeForSimulation {
	return testTrade(id, entry, 0)
}

func noStopAt(id string, entry time.Time) TradeForSimulation {
	tr := testTrade(id, entry, 0.50)
	tr.StopLoss = nil
	return tr
}

func simpleParams(rules policy.SimpleRules) policy.Params {
	return policy.Resolve(policy.ModeSimple, 10_000_000, &rules, nil, "UTC")
}

func advancedParams(cfg policy.DecisionTreeConfig) policy.Params {
	return policy.Resolve(policy.ModeAdvanced, 10_000_000, nil, &cfg, "UTC")
}

func TestRun_NoStopLossSkipped(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{noStopAt("t1", entryAt(0, 0))}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	require.Len(t, res.Trades, 1)
	got := res.Trades[0]
	assert.Equal(t, SkipNoStopLoss, got.Status)
	assert.Nil(t, got.SimulatedPnlCents)
	assert.Nil(t, got.SimulatedPositionSize)
	assert.Nil(t, got.SimulatedRMultiple)
	assert.Equal(t, int64(10_000_000), got.EquityAfterCents)
	assert.Contains(t, got.RiskReason, "stop-loss")
	assert.Equal(t, 1, res.Summary.SkipCounts[SkipNoStopLoss])
}

func TestRun_StopOnEntrySkipped(t *testing.T) {
	t.Parallel()

	tr := winAt("t1", entryAt(0, 0))
	entry := tr.EntryPrice
	tr.StopLoss = &entry

	res := Run([]TradeForSimulation{tr}, simpleParams(policy.SimpleRules{RiskPercent: 1}))
	assert.Equal(t, SkipNoStopLoss, res.Trades[0].Status)
}

func TestRun_SimpleBaseRiskSizing(t *testing.T) {
	t.Parallel()

	// 1% of $100k risks $1000: 40 contracts at 2500 cents each.
	trades := []TradeForSimulation{winAt("t1", entryAt(0, 0))}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	got := res.Trades[0]
	require.Equal(t, StatusExecuted, got.Status)
	assert.Equal(t, int64(100_000), got.RiskAmountCents)
	assert.Equal(t, int64(40), *got.SimulatedPositionSize)
	assert.Equal(t, int64(100_000), *got.SimulatedPnlCents)
	assert.InDelta(t, 1.0, *got.SimulatedRMultiple, 1e-9)
	assert.Equal(t, int64(10_100_000), got.EquityAfterCents)
	assert.Equal(t, 1, got.DayTradeNumber)
}

func TestRun_SimpleReduceRiskAfterLoss(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		lossAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:         1,
		ReduceRiskAfterLoss: true,
		RiskReductionFactor: 0.5,
	}))

	require.Len(t, res.Trades, 3)
	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, int64(50_000), res.Trades[1].RiskAmountCents)
	assert.Equal(t, int64(25_000), res.Trades[2].RiskAmountCents)
	assert.Contains(t, res.Trades[1].RiskReason, "Reduced")
	assert.Equal(t, 1, res.Trades[1].ConsecutiveLosses)
	assert.Equal(t, 2, res.Trades[2].ConsecutiveLosses)
	assert.Equal(t, int64(20), *res.Trades[1].SimulatedPositionSize)
}

func TestRun_SimpleIncreaseRiskAfterWin(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:          1,
		IncreaseRiskAfterWin: true,
		WinIncreasePercent:   30,
	}))

	// 30% of the 100000-cent win reinvested on top of the base.
	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, int64(130_000), res.Trades[1].RiskAmountCents)
	assert.Contains(t, res.Trades[1].RiskReason, "Increased")
	assert.Equal(t, int64(52), *res.Trades[1].SimulatedPositionSize)
}

func TestRun_DailyLimitWouldBeHit(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
		winAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:         1,
		DailyLossLimitCents: 150_000,
	}))

	// After the first -100000 loss the day has 50000 of headroom left, so
	// the next 100000-cent risk would cross the limit.
	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, SkipDailyLimit, res.Trades[1].Status)
	assert.Equal(t, SkipDailyLimit, res.Trades[2].Status)
	assert.Equal(t, 1, res.Summary.DaysHitDailyLimit)
	assert.Equal(t, 2, res.Summary.SkipCounts[SkipDailyLimit])

	require.Len(t, res.Weeks, 1)
	require.Len(t, res.Weeks[0].Days, 1)
	assert.True(t, res.Weeks[0].Days[0].HitDailyLimit)
}

func TestRun_DailyLimitExactHeadroomSkips(t *testing.T) {
	t.Parallel()

	// A trade whose full risk lands exactly on the ceiling counts as
	// hitting it.
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:         1,
		DailyLossLimitCents: 200_000,
	}))

	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, SkipDailyLimit, res.Trades[1].Status)
}

func TestRun_DailyTargetStopsDay(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:      1,
		DailyTargetCents: 100_000,
	}))

	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, SkipDailyTarget, res.Trades[1].Status)
	assert.Equal(t, 1, res.Summary.DaysHitDailyTarget)

	require.Len(t, res.Weeks, 1)
	assert.True(t, res.Weeks[0].Days[0].HitDailyTarget)
}

func TestRun_MaxDailyTradesCountsSkips(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		winAt("t3", entryAt(0, 2)),
		winAt("t4", entryAt(0, 3)),
		winAt("t5", entryAt(1, 0)), // next day, budget resets
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:    1,
		MaxDailyTrades: 2,
	}))

	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, StatusExecuted, res.Trades[1].Status)
	assert.Equal(t, SkipMaxTrades, res.Trades[2].Status)
	assert.Equal(t, SkipMaxTrades, res.Trades[3].Status)
	assert.Equal(t, StatusExecuted, res.Trades[4].Status)
	assert.Equal(t, 4, res.Trades[3].DayTradeNumber)
	assert.Equal(t, 1, res.Trades[4].DayTradeNumber)
}

func TestRun_ConsecutiveLossGate(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		winAt("t3", entryAt(0, 2)),
		winAt("t4", entryAt(1, 0)),
	}

	t.Run("dailyScopeResetsNextDay", func(t *testing.T) {
		t.Parallel()
		res := Run(trades, simpleParams(policy.SimpleRules{
			RiskPercent:          1,
			MaxConsecutiveLosses: 2,
		}))

		assert.Equal(t, SkipConsecutiveLoss, res.Trades[2].Status)
		assert.Equal(t, StatusExecuted, res.Trades[3].Status)
	})

	t.Run("globalScopeCarriesOver", func(t *testing.T) {
		t.Parallel()
		res := Run(trades, simpleParams(policy.SimpleRules{
			RiskPercent:          1,
			MaxConsecutiveLosses: 2,
			ConsecutiveLossScope: policy.ScopeGlobal,
		}))

		assert.Equal(t, SkipConsecutiveLoss, res.Trades[2].Status)
		assert.Equal(t, SkipConsecutiveLoss, res.Trades[3].Status)
	})
}

func TestRun_WeeklyLimit(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)), // Tue 2024-01-02
		lossAt("t2", entryAt(1, 0)), // Wed, same ISO week
		winAt("t3", entryAt(1, 1)),
		winAt("t4", entryAt(7, 0)), // next week, limit releases
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:          1,
		WeeklyLossLimitCents: 150_000,
	}))

	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, StatusExecuted, res.Trades[1].Status)
	assert.Equal(t, SkipWeeklyLimit, res.Trades[2].Status)
	assert.Equal(t, StatusExecuted, res.Trades[3].Status)

	require.Len(t, res.Weeks, 2)
	assert.True(t, res.Weeks[0].HitWeeklyLimit)
	assert.False(t, res.Weeks[1].HitWeeklyLimit)
}

func TestRun_MonthlyLimitOutranksWeekly(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		winAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:           1,
		WeeklyLossLimitCents:  150_000,
		MonthlyLossLimitCents: 150_000,
	}))

	assert.Equal(t, SkipMonthlyLimit, res.Trades[2].Status)
}

func TestRun_SkipPriorityNoStopLossFirst(t *testing.T) {
	t.Parallel()

	// Day limit is already blown, but a missing stop still wins the chain.
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		noStopAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{
		RiskPercent:         1,
		DailyLossLimitCents: 100_000,
	}))

	assert.Equal(t, SkipNoStopLoss, res.Trades[1].Status)
}

func TestRun_AdvancedLossRecoverySequence(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 100_000},
		LossRecovery: policy.LossRecovery{
			Sequence: []policy.RecoveryStep{
				{Calculation: policy.PercentOfBase{Percent: 50}},
				{Calculation: policy.SameAsPrevious{}},
			},
			StopAfterSequence: true,
		},
		GainMode:   policy.Compounding{ReinvestmentPercent: 30},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		lossAt("t3", entryAt(0, 2)),
		winAt("t4", entryAt(0, 3)),
		winAt("t5", entryAt(1, 0)), // new day starts back at base
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, PhaseBase, res.Trades[0].DayPhase)

	assert.Equal(t, int64(50_000), res.Trades[1].RiskAmountCents)
	assert.Equal(t, PhaseLossRecovery, res.Trades[1].DayPhase)
	assert.Contains(t, res.Trades[1].RiskReason, "step 1 of 2")

	assert.Equal(t, int64(50_000), res.Trades[2].RiskAmountCents)
	assert.Contains(t, res.Trades[2].RiskReason, "step 2 of 2")

	assert.Equal(t, SkipRecoveryComplete, res.Trades[3].Status)

	assert.Equal(t, StatusExecuted, res.Trades[4].Status)
	assert.Equal(t, int64(100_000), res.Trades[4].RiskAmountCents)
	assert.Equal(t, PhaseBase, res.Trades[4].DayPhase)
}

func TestRun_AdvancedRecoveryWinEntersCompounding(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 100_000},
		LossRecovery: policy.LossRecovery{
			Sequence: []policy.RecoveryStep{
				{Calculation: policy.PercentOfBase{Percent: 50}},
			},
		},
		GainMode:   policy.Compounding{ReinvestmentPercent: 30},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)), // recovery win: +50000, flips to gain mode
		winAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, int64(50_000), res.Trades[1].RiskAmountCents)
	assert.Equal(t, PhaseGainMode, res.Trades[2].DayPhase)
	// 30% of the 50000-cent day gains.
	assert.Equal(t, int64(15_000), res.Trades[2].RiskAmountCents)
	assert.Contains(t, res.Trades[2].RiskReason, "Compounding")
}

func TestRun_AdvancedSingleTargetStopsAfterFirstWin(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade:  policy.BaseTrade{RiskCents: 100_000},
		GainMode:   policy.SingleTarget{DailyTargetCents: 200_000},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, StatusExecuted, res.Trades[0].Status)
	assert.Equal(t, SkipGainStop, res.Trades[1].Status)
}

func TestRun_AdvancedCompoundingStopOnFirstLoss(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade:  policy.BaseTrade{RiskCents: 100_000},
		GainMode:   policy.Compounding{ReinvestmentPercent: 50, StopOnFirstLoss: true},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),  // +100000, enter gain mode
		lossAt("t2", entryAt(0, 1)), // gain-mode loss ends the day
		winAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, StatusExecuted, res.Trades[1].Status)
	assert.Equal(t, int64(50_000), res.Trades[1].RiskAmountCents)
	assert.Equal(t, SkipDailyTarget, res.Trades[2].Status)
}

func TestRun_AdvancedPercentOfBalanceSizing(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade:  policy.BaseTrade{RiskCents: 100_000},
		GainMode:   policy.Compounding{ReinvestmentPercent: 30},
		RiskSizing: policy.PercentOfBalance{RiskPercent: 1},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(1, 0)),
	}
	res := Run(trades, advancedParams(cfg))

	// T1 risks 1% of the starting 10000000; T2 risks 1% of the grown equity.
	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, int64(101_000), res.Trades[1].RiskAmountCents)
}

func TestRun_AdvancedFixedRatioSizing(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 100_000},
		GainMode:  policy.Compounding{ReinvestmentPercent: 30},
		RiskSizing: policy.FixedRatio{
			BaseContractRiskCents: 100_000,
			DeltaCents:            150_000,
		},
		LimitMode: policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)), // profit 0: still on the first rung
		winAt("t2", entryAt(1, 0)), // profit 100000, below the 150000 delta
		winAt("t3", entryAt(2, 0)), // profit 200000 clears one delta level
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, int64(100_000), res.Trades[1].RiskAmountCents)
	assert.Equal(t, int64(200_000), res.Trades[2].RiskAmountCents)
}

func TestRun_AdvancedKellySizing(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade:  policy.BaseTrade{RiskCents: 100_000},
		GainMode:   policy.Compounding{ReinvestmentPercent: 30},
		RiskSizing: policy.KellyFractional{Divisor: 2},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		testTrade("t2", entryAt(1, 0), 1.00), // +2R win
		winAt("t3", entryAt(2, 0)),
	}
	res := Run(trades, advancedParams(cfg))

	// Without both a win and a loss on record Kelly falls back to base.
	assert.Equal(t, int64(100_000), res.Trades[0].RiskAmountCents)
	assert.Equal(t, int64(100_000), res.Trades[1].RiskAmountCents)

	// After -100000 and +200000: w=0.5, payoff 2, k = 0.5 - 0.5/2 = 0.25,
	// halved by the divisor against equity 10100000.
	assert.Equal(t, int64(1_262_500), res.Trades[2].RiskAmountCents)
}

func TestRun_CascadingReduceRiskHalvesInsteadOfSkipping(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 100_000},
		GainMode:  policy.Compounding{ReinvestmentPercent: 30},
		CascadingLimits: &policy.CascadingLimits{
			WeeklyLossCents: 150_000,
			Action:          policy.ActionReduceRisk,
		},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(1, 0)), // weekly now -200000, beyond the limit
		winAt("t3", entryAt(2, 0)),
	}
	res := Run(trades, advancedParams(cfg))

	require.Equal(t, StatusExecuted, res.Trades[2].Status)
	assert.Equal(t, int64(50_000), res.Trades[2].RiskAmountCents)
	assert.Contains(t, res.Trades[2].RiskReason, "halved")
}

func TestRun_DrawdownTierReducesRisk(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 400_000},
		GainMode:  policy.Compounding{ReinvestmentPercent: 30},
		DrawdownControl: &policy.DrawdownControl{
			Tiers: []policy.DrawdownTier{
				{DrawdownPercent: 3, Action: policy.TierReduceRisk, ReducePercent: 50},
			},
			RecoveryThresholdPercent: 2,
		},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)), // -400000, 4% drawdown
		winAt("t2", entryAt(1, 0)),
	}
	res := Run(trades, advancedParams(cfg))

	assert.Equal(t, int64(200_000), res.Trades[1].RiskAmountCents)
	assert.Contains(t, res.Trades[1].RiskReason, "drawdown")
}

func TestRun_DrawdownTierPausesAtOneCent(t *testing.T) {
	t.Parallel()

	cfg := policy.DecisionTreeConfig{
		BaseTrade: policy.BaseTrade{RiskCents: 600_000},
		GainMode:  policy.Compounding{ReinvestmentPercent: 30},
		DrawdownControl: &policy.DrawdownControl{
			Tiers: []policy.DrawdownTier{
				{DrawdownPercent: 5, Action: policy.TierPause},
			},
			RecoveryThresholdPercent: 2,
		},
		RiskSizing: policy.FixedSizing{},
		LimitMode:  policy.LimitFixed,
	}
	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)), // -600000, 6% drawdown
		winAt("t2", entryAt(1, 0)),
	}
	res := Run(trades, advancedParams(cfg))

	// A paused trade still executes but cannot afford a single contract.
	got := res.Trades[1]
	require.Equal(t, StatusExecuted, got.Status)
	assert.Equal(t, int64(1), got.RiskAmountCents)
	assert.Contains(t, got.RiskReason, "Paused")
	assert.Equal(t, int64(0), *got.SimulatedPositionSize)
	assert.Equal(t, int64(0), *got.SimulatedPnlCents)
	assert.Equal(t, int64(9_400_000), got.EquityAfterCents)
}

func TestRun_Deterministic(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
		noStopAt("t3", entryAt(0, 2)),
		winAt("t4", entryAt(1, 0)),
		lossAt("t5", entryAt(7, 0)),
	}
	params := simpleParams(policy.SimpleRules{
		RiskPercent:         1,
		DailyLossLimitCents: 300_000,
		ReduceRiskAfterLoss: true,
		RiskReductionFactor: 0.5,
	})

	first := Run(trades, params)
	second := Run(trades, params)
	assert.Equal(t, first, second)
}

func TestRun_StructuralInvariants(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
		noStopAt("t3", entryAt(0, 2)),
		lossAt("t4", entryAt(0, 3)),
		flatAt("t5", entryAt(1, 0)),
		winAt("t6", entryAt(1, 1)),
	}
	params := simpleParams(policy.SimpleRules{
		RiskPercent:          1,
		MaxConsecutiveLosses: 2,
		DailyLossLimitCents:  250_000,
	})
	res := Run(trades, params)

	// Every trade is accounted for exactly once.
	skipped := 0
	for _, n := range res.Summary.SkipCounts {
		skipped += n
	}
	assert.Equal(t, res.Summary.TotalTrades, res.Summary.ExecutedTrades+skipped)
	assert.Len(t, res.Trades, res.Summary.TotalTrades)
	assert.Len(t, res.EquityCurve, res.Summary.TotalTrades)

	// Simulated fields are present exactly when the trade executed, and the
	// executed P/L re-adds to the final equity.
	var sum int64
	for _, tr := range res.Trades {
		if tr.Status == StatusExecuted {
			require.NotNil(t, tr.SimulatedPnlCents)
			require.NotNil(t, tr.SimulatedPositionSize)
			require.NotNil(t, tr.SimulatedRMultiple)
			sum += *tr.SimulatedPnlCents
		} else {
			assert.Nil(t, tr.SimulatedPnlCents)
			assert.Nil(t, tr.SimulatedPositionSize)
			assert.Nil(t, tr.SimulatedRMultiple)
		}
	}
	final := res.EquityCurve[len(res.EquityCurve)-1]
	assert.Equal(t, params.AccountBalanceCents+sum, final.SimulatedEquityCents)
	assert.Equal(t, params.AccountBalanceCents+sum, params.AccountBalanceCents+res.Summary.Simulated.TotalPnlCents)

	// The original line is the plain cumulative sum of historical P/L.
	var orig int64
	for i, tr := range trades {
		orig += tr.PnlCents
		assert.Equal(t, params.AccountBalanceCents+orig, res.EquityCurve[i].OriginalEquityCents)
	}

	assert.Equal(t, trades[0].EntryTime, res.StartDate)
	assert.Equal(t, trades[len(trades)-1].EntryTime, res.EndDate)
}

func TestRun_TimezoneShiftsDayBoundary(t *testing.T) {
	t.Parallel()

	// 23:30 and 00:30 UTC straddle midnight UTC but fall on the same
	// trading day in New York.
	late := time.Date(2024, 1, 2, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 1, 3, 0, 30, 0, 0, time.UTC)
	trades := []TradeForSimulation{
		winAt("t1", late),
		winAt("t2", early),
	}

	utc := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1, MaxDailyTrades: 1}))
	assert.Equal(t, StatusExecuted, utc.Trades[1].Status)

	ny := policy.Resolve(policy.ModeSimple, 10_000_000,
		&policy.SimpleRules{RiskPercent: 1, MaxDailyTrades: 1}, nil, "America/New_York")
	nyRes := Run(trades, ny)
	assert.Equal(t, SkipMaxTrades, nyRes.Trades[1].Status)
}

func TestRun_EmptyLog(t *testing.T) {
	t.Parallel()

	res := Run(nil, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	assert.Zero(t, res.Summary.TotalTrades)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Weeks)
	assert.True(t, res.StartDate.IsZero())
}
