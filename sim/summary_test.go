package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/risksim/policy"
)

func TestSummary_ComparesStreams(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		flatAt("t3", entryAt(0, 2)),
		noStopAt("t4", entryAt(0, 3)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))
	sum := res.Summary

	assert.Equal(t, 4, sum.TotalTrades)
	assert.Equal(t, 3, sum.ExecutedTrades)

	// Every skip reason is present even when its count is zero.
	require.Len(t, sum.SkipCounts, len(SkipStatuses))
	assert.Equal(t, 1, sum.SkipCounts[SkipNoStopLoss])
	assert.Equal(t, 0, sum.SkipCounts[SkipDailyLimit])

	// Original: +5000, -5000, 0, +5000. Simulated: +100000, -100000, 0.
	assert.Equal(t, int64(5000), sum.Original.TotalPnlCents)
	assert.Equal(t, int64(0), sum.Simulated.TotalPnlCents)
	assert.Equal(t, int64(-5000), sum.PnlDeltaCents)

	assert.Equal(t, 1, sum.Simulated.Wins)
	assert.Equal(t, 1, sum.Simulated.Losses)
	assert.Equal(t, 1, sum.Simulated.Breakeven)

	// Breakeven trades stay out of the win-rate denominator.
	assert.InDelta(t, 50.0, sum.Simulated.WinRate, 1e-9)
	assert.InDelta(t, 1.0, sum.Simulated.ProfitFactor, 1e-9)
}

func TestSummary_ProfitFactorSentinel(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		winAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	assert.Equal(t, ProfitFactorCap, res.Summary.Simulated.ProfitFactor)
	assert.Equal(t, ProfitFactorCap, res.Summary.Original.ProfitFactor)
}

func TestSummary_AllLossesZeroProfitFactor(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		lossAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	assert.Zero(t, res.Summary.Simulated.ProfitFactor)
	assert.Zero(t, res.Summary.Simulated.WinRate)
}

func TestSummary_MaxDrawdown(t *testing.T) {
	t.Parallel()

	// Peak after t1 is 10100000; the two losses bottom out at 9900000,
	// a 1.980...% decline from peak.
	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),
		lossAt("t2", entryAt(0, 1)),
		lossAt("t3", entryAt(0, 2)),
	}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	want := float64(10_100_000-9_900_000) / float64(10_100_000) * 100
	assert.InDelta(t, want, res.Summary.Simulated.MaxDrawdownPercent, 1e-9)
}

func TestSummary_AvgRSkipsZeroes(t *testing.T) {
	t.Parallel()

	trades := []TradeForSimulation{
		winAt("t1", entryAt(0, 0)),  // +1R
		winAt("t2", entryAt(0, 1)),  // +1R
		flatAt("t3", entryAt(0, 2)), // 0R, excluded
	}
	res := Run(trades, simpleParams(policy.SimpleRules{RiskPercent: 1}))

	// Averaging over the two non-zero trades, not all three.
	assert.InDelta(t, 1.0, res.Summary.Simulated.AvgR, 1e-9)
}
