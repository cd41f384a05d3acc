package sim

import (
	"fmt"
	"time"
)

// Calendar keys are plain strings derived in the caller's timezone so
// boundary detection never depends on ambient state.

func dayKeyOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func weekKeyOf(t time.Time, loc *time.Location) string {
	y, w := t.In(loc).ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

func monthKeyOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01")
}

// dayMeta is the finalized record of one trading day, flushed when the
// next day begins.
type dayMeta struct {
	key        string
	weekKey    string
	limitHit   bool
	targetHit  bool
	finalPhase Phase
}

// runState is the accumulator threaded through the per-trade fold. step
// takes it by value and returns the successor, so each transition is a
// pure function of (state, trade, params).
type runState struct {
	initialBalance int64
	equity         int64
	peak           int64
	originalEquity int64

	dayKey   string
	weekKey  string
	monthKey string

	dailyPnl   int64
	weeklyPnl  int64
	monthlyPnl int64

	dayTradeCount int // every trade seen today, skipped included
	dayExecuted   int
	dayGains      int64
	phase         Phase
	recoveryIndex int
	previousRisk  int64

	consecLosses int
	lastWinPnl   int64

	dayLimitHit  bool
	dayTargetHit bool

	wins           int
	losses         int
	grossWinCents  int64
	grossLossCents int64

	days []dayMeta
}

func newRunState(balanceCents int64) runState {
	return runState{
		initialBalance: balanceCents,
		equity:         balanceCents,
		peak:           balanceCents,
		originalEquity: balanceCents,
		phase:          PhaseBase,
	}
}

// flushDay folds the closing day's flags into the run-level day records.
func flushDay(st runState) runState {
	st.days = append(st.days, dayMeta{
		key:        st.dayKey,
		weekKey:    st.weekKey,
		limitHit:   st.dayLimitHit,
		targetHit:  st.dayTargetHit,
		finalPhase: st.phase,
	})
	return st
}

func (st runState) daysLimitHit() int {
	n := 0
	for _, d := range st.days {
		if d.limitHit {
			n++
		}
	}
	return n
}

func (st runState) daysTargetHit() int {
	n := 0
	for _, d := range st.days {
		if d.targetHit {
			n++
		}
	}
	return n
}
