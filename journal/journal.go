// Package journal persists simulation runs so past replays can be
// compared and audited.
package journal

import (
	"encoding/json"
	"time"

	"github.com/rustyeddy/risksim/sim"
)

// RunRecord mirrors the runs table: one row per engine invocation.
type RunRecord struct {
	RunID   string
	Created time.Time
	Mode    string
	Params  []byte // params JSON, for reproducibility

	TotalTrades    int
	ExecutedTrades int
	SkippedTrades  int

	OriginalPnlCents  int64
	SimulatedPnlCents int64
	PnlDeltaCents     int64

	OriginalMaxDDPct  float64
	SimulatedMaxDDPct float64
	OriginalWinRate   float64
	SimulatedWinRate  float64

	StartDate time.Time
	EndDate   time.Time
}

// NewRunRecord flattens an engine result into a journal row.
func NewRunRecord(runID string, res sim.RiskSimulationResult) RunRecord {
	params, _ := json.Marshal(res.Params)
	skipped := res.Summary.TotalTrades - res.Summary.ExecutedTrades

	return RunRecord{
		RunID:             runID,
		Created:           time.Now().UTC(),
		Mode:              string(res.Params.Mode),
		Params:            params,
		TotalTrades:       res.Summary.TotalTrades,
		ExecutedTrades:    res.Summary.ExecutedTrades,
		SkippedTrades:     skipped,
		OriginalPnlCents:  res.Summary.Original.TotalPnlCents,
		SimulatedPnlCents: res.Summary.Simulated.TotalPnlCents,
		PnlDeltaCents:     res.Summary.PnlDeltaCents,
		OriginalMaxDDPct:  res.Summary.Original.MaxDrawdownPercent,
		SimulatedMaxDDPct: res.Summary.Simulated.MaxDrawdownPercent,
		OriginalWinRate:   res.Summary.Original.WinRate,
		SimulatedWinRate:  res.Summary.Simulated.WinRate,
		StartDate:         res.StartDate,
		EndDate:           res.EndDate,
	}
}

type Journal interface {
	RecordRun(RunRecord) error
	RecordTrades(runID string, trades []sim.SimulatedTrade) error
	Close() error
}
