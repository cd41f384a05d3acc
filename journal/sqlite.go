package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/risksim/sim"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordRun(r RunRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO runs
		(run_id, created, mode, params, total_trades, executed_trades, skipped_trades,
		 original_pnl_cents, simulated_pnl_cents, pnl_delta_cents,
		 original_max_dd_pct, simulated_max_dd_pct, original_win_rate, simulated_win_rate,
		 start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Mode, string(r.Params),
		r.TotalTrades, r.ExecutedTrades, r.SkippedTrades,
		r.OriginalPnlCents, r.SimulatedPnlCents, r.PnlDeltaCents,
		r.OriginalMaxDDPct, r.SimulatedMaxDDPct, r.OriginalWinRate, r.SimulatedWinRate,
		r.StartDate, r.EndDate,
	)
	return err
}

func (j *SQLiteJournal) RecordTrades(runID string, trades []sim.SimulatedTrade) error {
	tx, err := j.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO run_trades
		(run_id, trade_id, entry_time, asset, status, original_pnl_cents,
		 simulated_pnl_cents, simulated_position_size, simulated_r_multiple,
		 risk_amount_cents, risk_reason, day_phase, equity_after_cents, drawdown_percent)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range trades {
		t := &trades[i]

		// nil pointers become SQL NULLs for skipped trades.
		var simPnl, simSize sql.NullInt64
		var simR sql.NullFloat64
		if t.SimulatedPnlCents != nil {
			simPnl = sql.NullInt64{Int64: *t.SimulatedPnlCents, Valid: true}
		}
		if t.SimulatedPositionSize != nil {
			simSize = sql.NullInt64{Int64: *t.SimulatedPositionSize, Valid: true}
		}
		if t.SimulatedRMultiple != nil {
			simR = sql.NullFloat64{Float64: *t.SimulatedRMultiple, Valid: true}
		}

		if _, err := stmt.Exec(
			runID, t.TradeID, t.EntryTime, t.Asset, string(t.Status), t.OriginalPnlCents,
			simPnl, simSize, simR,
			t.RiskAmountCents, t.RiskReason, string(t.DayPhase),
			t.EquityAfterCents, t.DrawdownPercent,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetRun loads a single run header.
func (j *SQLiteJournal) GetRun(ctx context.Context, runID string) (RunRecord, error) {
	var r RunRecord
	var params string

	err := j.db.QueryRowContext(ctx, `
		SELECT run_id, created, mode, params, total_trades, executed_trades, skipped_trades,
		       original_pnl_cents, simulated_pnl_cents, pnl_delta_cents,
		       original_max_dd_pct, simulated_max_dd_pct, original_win_rate, simulated_win_rate,
		       start_date, end_date
		FROM runs WHERE run_id = ?`, runID).Scan(
		&r.RunID, &r.Created, &r.Mode, &params,
		&r.TotalTrades, &r.ExecutedTrades, &r.SkippedTrades,
		&r.OriginalPnlCents, &r.SimulatedPnlCents, &r.PnlDeltaCents,
		&r.OriginalMaxDDPct, &r.SimulatedMaxDDPct, &r.OriginalWinRate, &r.SimulatedWinRate,
		&r.StartDate, &r.EndDate,
	)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %q: %w", runID, err)
	}
	r.Params = []byte(params)
	return r, nil
}

// ListTradesByRun returns the persisted trade trace of one run, in entry
// order.
func (j *SQLiteJournal) ListTradesByRun(ctx context.Context, runID string) ([]sim.SimulatedTrade, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT trade_id, entry_time, asset, status, original_pnl_cents,
		       simulated_pnl_cents, simulated_position_size, simulated_r_multiple,
		       risk_amount_cents, risk_reason, day_phase, equity_after_cents, drawdown_percent
		FROM run_trades WHERE run_id = ? ORDER BY entry_time`, runID)
	if err != nil {
		return nil, fmt.Errorf("list trades for run %q: %w", runID, err)
	}
	defer rows.Close()

	var out []sim.SimulatedTrade
	for rows.Next() {
		var t sim.SimulatedTrade
		var status, phase string
		var simPnl, simSize sql.NullInt64
		var simR sql.NullFloat64

		if err := rows.Scan(
			&t.TradeID, &t.EntryTime, &t.Asset, &status, &t.OriginalPnlCents,
			&simPnl, &simSize, &simR,
			&t.RiskAmountCents, &t.RiskReason, &phase,
			&t.EquityAfterCents, &t.DrawdownPercent,
		); err != nil {
			return nil, err
		}
		t.Status = sim.Status(status)
		t.DayPhase = sim.Phase(phase)
		if simPnl.Valid {
			t.SimulatedPnlCents = &simPnl.Int64
		}
		if simSize.Valid {
			t.SimulatedPositionSize = &simSize.Int64
		}
		if simR.Valid {
			t.SimulatedRMultiple = &simR.Float64
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
