// Package tradelog loads historical trade logs exported as CSV, including
// xz-compressed exports and zipped broker archives.
package tradelog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/xyproto/unzip"

	"github.com/rustyeddy/risksim/risk"
	"github.com/rustyeddy/risksim/sim"
)

// Columns, in order. A header row is detected by the first cell.
var columns = []string{
	"id", "entry_time", "exit_time", "asset", "direction",
	"entry_price", "exit_price", "stop_loss",
	"position_size", "pnl_cents", "outcome", "r_multiple",
	"tick_size", "tick_value_cents", "commission_cents", "fees_cents",
}

// Load reads a trade log from path. Supported inputs: plain .csv, .csv.xz,
// and .zip archives containing a single .csv. Trades are returned sorted
// ascending by entry time, as the engine requires.
func Load(path string) ([]sim.TradeForSimulation, error) {
	switch {
	case strings.HasSuffix(path, ".zip"):
		return loadZip(path)
	case strings.HasSuffix(path, ".xz"):
		return loadXZ(path)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open trade log: %w", err)
		}
		defer f.Close()
		return Parse(f)
	}
}

func loadXZ(path string) ([]sim.TradeForSimulation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trade log: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("xz reader for %s: %w", path, err)
	}
	return Parse(r)
}

func loadZip(path string) ([]sim.TradeForSimulation, error) {
	dir, err := os.MkdirTemp("", "risksim-import-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	if err := unzip.Extract(path, dir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	var csvPath string
	err = filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(p), ".csv") {
			csvPath = p
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if csvPath == "" {
		return nil, fmt.Errorf("archive %s contains no .csv trade log", path)
	}

	f, err := os.Open(csvPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads trade rows from r.
func Parse(r io.Reader) ([]sim.TradeForSimulation, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var trades []sim.TradeForSimulation
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("trade log row %d: %w", line+1, err)
		}
		line++
		if len(row) == 0 {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), columns[0]) {
			continue
		}

		tr, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("trade log row %d: %w", line, err)
		}
		trades = append(trades, tr)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].EntryTime.Before(trades[j].EntryTime)
	})
	return trades, nil
}

func parseRow(row []string) (sim.TradeForSimulation, error) {
	var tr sim.TradeForSimulation
	if len(row) < len(columns) {
		return tr, fmt.Errorf("need %d columns, got %d", len(columns), len(row))
	}

	var err error
	get := func(i int) string { return strings.TrimSpace(row[i]) }

	tr.ID = get(0)
	if tr.EntryTime, err = parseTime(get(1)); err != nil {
		return tr, fmt.Errorf("entry_time: %w", err)
	}
	if tr.ExitTime, err = parseTime(get(2)); err != nil {
		return tr, fmt.Errorf("exit_time: %w", err)
	}
	tr.Asset = get(3)

	switch d := risk.Direction(strings.ToLower(get(4))); d {
	case risk.Long, risk.Short:
		tr.Direction = d
	default:
		return tr, fmt.Errorf("direction: %q is not long or short", get(4))
	}

	if tr.EntryPrice, err = parseFloat(get(5)); err != nil {
		return tr, fmt.Errorf("entry_price: %w", err)
	}
	if tr.ExitPrice, err = parseFloat(get(6)); err != nil {
		return tr, fmt.Errorf("exit_price: %w", err)
	}
	if s := get(7); s != "" {
		sl, err := parseFloat(s)
		if err != nil {
			return tr, fmt.Errorf("stop_loss: %w", err)
		}
		tr.StopLoss = &sl
	}

	if tr.PositionSize, err = parseInt(get(8)); err != nil {
		return tr, fmt.Errorf("position_size: %w", err)
	}
	if tr.PnlCents, err = parseInt(get(9)); err != nil {
		return tr, fmt.Errorf("pnl_cents: %w", err)
	}
	tr.Outcome = risk.Outcome(strings.ToLower(get(10)))
	if tr.Outcome == "" {
		tr.Outcome = risk.OutcomeOf(tr.PnlCents)
	}
	if tr.RMultiple, err = parseFloat(get(11)); err != nil {
		return tr, fmt.Errorf("r_multiple: %w", err)
	}
	if tr.TickSize, err = parseFloat(get(12)); err != nil {
		return tr, fmt.Errorf("tick_size: %w", err)
	}
	if tr.TickValueCents, err = parseInt(get(13)); err != nil {
		return tr, fmt.Errorf("tick_value_cents: %w", err)
	}
	if tr.CommissionCents, err = parseInt(get(14)); err != nil {
		return tr, fmt.Errorf("commission_cents: %w", err)
	}
	if tr.FeesCents, err = parseInt(get(15)); err != nil {
		return tr, fmt.Errorf("fees_cents: %w", err)
	}

	return tr, nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339Nano, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, fmt.Errorf("bad time %q: %w", s, err)
	}
	return t, nil
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}
