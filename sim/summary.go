package sim

import (
	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/risk"
)

// ProfitFactorCap is the sentinel reported when there is gross profit but
// no gross loss.
const ProfitFactorCap = 9999.0

// StreamStats are the aggregate performance numbers for one trade stream.
type StreamStats struct {
	TotalPnlCents      int64   `json:"totalPnlCents"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	Breakeven          int     `json:"breakeven"`
	WinRate            float64 `json:"winRate"`
	ProfitFactor       float64 `json:"profitFactor"`
	MaxDrawdownPercent float64 `json:"maxDrawdownPercent"`
	AvgR               float64 `json:"avgR"`
}

// SimulationSummary compares the original stream against the simulated
// executed subset.
type SimulationSummary struct {
	TotalTrades    int            `json:"totalTrades"`
	ExecutedTrades int            `json:"executedTrades"`
	SkipCounts     map[Status]int `json:"skipCounts"`

	Original  StreamStats `json:"original"`
	Simulated StreamStats `json:"simulated"`

	PnlDeltaCents      int64   `json:"pnlDeltaCents"`
	WinRateDelta       float64 `json:"winRateDelta"`
	ProfitFactorDelta  float64 `json:"profitFactorDelta"`
	MaxDrawdownDelta   float64 `json:"maxDrawdownDelta"`
	AvgRDelta          float64 `json:"avgRDelta"`
	DaysHitDailyLimit  int     `json:"daysHitDailyLimit"`
	DaysHitDailyTarget int     `json:"daysHitDailyTarget"`
}

func buildSummary(trades []TradeForSimulation, sims []SimulatedTrade, p policy.Params, st runState) SimulationSummary {
	sum := SimulationSummary{
		TotalTrades:        len(trades),
		SkipCounts:         make(map[Status]int, len(SkipStatuses)),
		DaysHitDailyLimit:  st.daysLimitHit(),
		DaysHitDailyTarget: st.daysTargetHit(),
	}
	for _, s := range SkipStatuses {
		sum.SkipCounts[s] = 0
	}

	var orig streamAcc
	orig.reset(p.AccountBalanceCents)
	for i := range trades {
		orig.add(trades[i].PnlCents, trades[i].RMultiple)
	}
	sum.Original = orig.stats()

	var simAcc streamAcc
	simAcc.reset(p.AccountBalanceCents)
	for i := range sims {
		if sims[i].Status != StatusExecuted {
			sum.SkipCounts[sims[i].Status]++
			continue
		}
		sum.ExecutedTrades++
		r := 0.0
		if sims[i].SimulatedRMultiple != nil {
			r = *sims[i].SimulatedRMultiple
		}
		simAcc.add(*sims[i].SimulatedPnlCents, r)
	}
	sum.Simulated = simAcc.stats()

	sum.PnlDeltaCents = sum.Simulated.TotalPnlCents - sum.Original.TotalPnlCents
	sum.WinRateDelta = sum.Simulated.WinRate - sum.Original.WinRate
	sum.ProfitFactorDelta = sum.Simulated.ProfitFactor - sum.Original.ProfitFactor
	sum.MaxDrawdownDelta = sum.Simulated.MaxDrawdownPercent - sum.Original.MaxDrawdownPercent
	sum.AvgRDelta = sum.Simulated.AvgR - sum.Original.AvgR

	return sum
}

// streamAcc folds one trade stream into StreamStats with a running
// peak-equity walk for max drawdown.
type streamAcc struct {
	equity, peak int64
	total        int64
	wins, losses int
	breakeven    int
	grossWin     int64
	grossLoss    int64
	maxDD        float64
	rSum         float64
	rCount       int
}

func (a *streamAcc) reset(balanceCents int64) {
	a.equity = balanceCents
	a.peak = balanceCents
}

func (a *streamAcc) add(pnlCents int64, rMultiple float64) {
	a.total += pnlCents
	a.equity += pnlCents
	if a.equity > a.peak {
		a.peak = a.equity
	}
	if dd := risk.DrawdownPercent(a.equity, a.peak); dd > a.maxDD {
		a.maxDD = dd
	}

	switch risk.OutcomeOf(pnlCents) {
	case risk.Win:
		a.wins++
		a.grossWin += pnlCents
	case risk.Loss:
		a.losses++
		a.grossLoss += -pnlCents
	default:
		a.breakeven++
	}
	if rMultiple != 0 {
		a.rSum += rMultiple
		a.rCount++
	}
}

func (a *streamAcc) stats() StreamStats {
	s := StreamStats{
		TotalPnlCents:      a.total,
		Wins:               a.wins,
		Losses:             a.losses,
		Breakeven:          a.breakeven,
		MaxDrawdownPercent: a.maxDD,
	}

	// Breakeven trades are excluded from the win-rate denominator.
	if decided := a.wins + a.losses; decided > 0 {
		s.WinRate = float64(a.wins) / float64(decided) * 100
	}

	switch {
	case a.grossLoss > 0:
		s.ProfitFactor = float64(a.grossWin) / float64(a.grossLoss)
	case a.grossWin > 0:
		s.ProfitFactor = ProfitFactorCap
	}

	if a.rCount > 0 {
		s.AvgR = a.rSum / float64(a.rCount)
	}
	return s
}
