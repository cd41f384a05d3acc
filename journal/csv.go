package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/risksim/sim"
)

type CSVJournal struct {
	runs   *csv.Writer
	trades *csv.Writer
	rf, tf *os.File
}

func NewCSV(runsPath, tradesPath string) (*CSVJournal, error) {
	rf, err := os.Create(runsPath)
	if err != nil {
		return nil, err
	}
	tf, err := os.Create(tradesPath)
	if err != nil {
		return nil, err
	}

	rw := csv.NewWriter(rf)
	tw := csv.NewWriter(tf)

	if err := rw.Write([]string{
		"run_id", "created", "mode", "total_trades", "executed_trades", "skipped_trades",
		"original_pnl_cents", "simulated_pnl_cents", "pnl_delta_cents",
		"original_max_dd_pct", "simulated_max_dd_pct",
		"original_win_rate", "simulated_win_rate", "start_date", "end_date",
	}); err != nil {
		return nil, err
	}
	if err := tw.Write([]string{
		"run_id", "trade_id", "entry_time", "asset", "status", "original_pnl_cents",
		"simulated_pnl_cents", "simulated_position_size", "simulated_r_multiple",
		"risk_amount_cents", "risk_reason", "day_phase", "equity_after_cents", "drawdown_percent",
	}); err != nil {
		return nil, err
	}

	rw.Flush()
	if err := rw.Error(); err != nil {
		return nil, err
	}
	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{rw, tw, rf, tf}, nil
}

func (j *CSVJournal) RecordRun(r RunRecord) error {
	err := j.runs.Write([]string{
		r.RunID,
		r.Created.Format(time.RFC3339),
		r.Mode,
		d(r.TotalTrades),
		d(r.ExecutedTrades),
		d(r.SkippedTrades),
		c(r.OriginalPnlCents),
		c(r.SimulatedPnlCents),
		c(r.PnlDeltaCents),
		f(r.OriginalMaxDDPct),
		f(r.SimulatedMaxDDPct),
		f(r.OriginalWinRate),
		f(r.SimulatedWinRate),
		r.StartDate.Format(time.RFC3339),
		r.EndDate.Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	j.runs.Flush()
	return j.runs.Error()
}

func (j *CSVJournal) RecordTrades(runID string, trades []sim.SimulatedTrade) error {
	for i := range trades {
		t := &trades[i]

		simPnl, simSize, simR := "", "", ""
		if t.SimulatedPnlCents != nil {
			simPnl = c(*t.SimulatedPnlCents)
		}
		if t.SimulatedPositionSize != nil {
			simSize = c(*t.SimulatedPositionSize)
		}
		if t.SimulatedRMultiple != nil {
			simR = f(*t.SimulatedRMultiple)
		}

		err := j.trades.Write([]string{
			runID,
			t.TradeID,
			t.EntryTime.Format(time.RFC3339),
			t.Asset,
			string(t.Status),
			c(t.OriginalPnlCents),
			simPnl,
			simSize,
			simR,
			c(t.RiskAmountCents),
			t.RiskReason,
			string(t.DayPhase),
			c(t.EquityAfterCents),
			f(t.DrawdownPercent),
		})
		if err != nil {
			return err
		}
	}
	j.trades.Flush()
	return j.trades.Error()
}

func (j *CSVJournal) Close() error {
	j.runs.Flush()
	if err := j.runs.Error(); err != nil {
		return err
	}
	j.trades.Flush()
	if err := j.trades.Error(); err != nil {
		return err
	}

	if err := j.rf.Close(); err != nil {
		return err
	}
	return j.tf.Close()
}

func d(x int) string   { return strconv.Itoa(x) }
func c(x int64) string { return strconv.FormatInt(x, 10) }
func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 4, 64)
}
