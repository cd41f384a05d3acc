package sim

import (
	"sort"
	"time"
)

// DayTrace groups one calendar day's simulated trades with its aggregates.
type DayTrace struct {
	DateKey string `json:"dateKey"`
	WeekKey string `json:"weekKey"`

	Trades []SimulatedTrade `json:"trades"`

	ExecutedCount  int   `json:"executedCount"`
	SkippedCount   int   `json:"skippedCount"`
	PnlCents       int64 `json:"pnlCents"`
	HitDailyLimit  bool  `json:"hitDailyLimit"`
	HitDailyTarget bool  `json:"hitDailyTarget"`
	FinalPhase     Phase `json:"finalPhase"`
}

// WeekTrace is the drill-down unit the UI renders: a week of day traces.
type WeekTrace struct {
	WeekKey        string     `json:"weekKey"`
	Days           []DayTrace `json:"days"`
	PnlCents       int64      `json:"pnlCents"`
	HitWeeklyLimit bool       `json:"hitWeeklyLimit"`
}

// buildWeekTraces regroups the flat simulated-trade list into week → day
// hierarchies. Week membership follows each trade's original date. Weeks
// and the days within them are sorted by key.
func buildWeekTraces(sims []SimulatedTrade, days []dayMeta, loc *time.Location, weeklyLimitCents int64) []WeekTrace {
	if len(sims) == 0 {
		return nil
	}

	meta := make(map[string]dayMeta, len(days))
	for _, d := range days {
		meta[d.key] = d
	}

	dayTraces := make(map[string]*DayTrace)
	var dayKeys []string
	for i := range sims {
		dk := dayKeyOf(sims[i].EntryTime, loc)
		dt, ok := dayTraces[dk]
		if !ok {
			dt = &DayTrace{DateKey: dk, WeekKey: weekKeyOf(sims[i].EntryTime, loc)}
			if m, found := meta[dk]; found {
				dt.HitDailyLimit = m.limitHit
				dt.HitDailyTarget = m.targetHit
				dt.FinalPhase = m.finalPhase
			}
			dayTraces[dk] = dt
			dayKeys = append(dayKeys, dk)
		}
		dt.Trades = append(dt.Trades, sims[i])
		if sims[i].Status == StatusExecuted {
			dt.ExecutedCount++
			dt.PnlCents += *sims[i].SimulatedPnlCents
		} else {
			dt.SkippedCount++
		}
	}
	sort.Strings(dayKeys)

	weekTraces := make(map[string]*WeekTrace)
	var weekKeys []string
	for _, dk := range dayKeys {
		dt := dayTraces[dk]
		wt, ok := weekTraces[dt.WeekKey]
		if !ok {
			wt = &WeekTrace{WeekKey: dt.WeekKey}
			weekTraces[dt.WeekKey] = wt
			weekKeys = append(weekKeys, dt.WeekKey)
		}
		wt.Days = append(wt.Days, *dt)
		wt.PnlCents += dt.PnlCents
	}
	sort.Strings(weekKeys)

	out := make([]WeekTrace, 0, len(weekKeys))
	for _, wk := range weekKeys {
		wt := weekTraces[wk]
		if weeklyLimitCents > 0 && wt.PnlCents <= -weeklyLimitCents {
			wt.HitWeeklyLimit = true
		}
		for _, d := range wt.Days {
			for _, t := range d.Trades {
				if t.Status == SkipWeeklyLimit {
					wt.HitWeeklyLimit = true
				}
			}
		}
		out = append(out, *wt)
	}
	return out
}
