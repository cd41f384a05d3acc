// Package sim is the replay engine: a deterministic state machine that
// walks an ordered historical trade log, applies a money-management policy
// to each trade, and reports the counterfactual outcome.
package sim

import (
	"time"

	"github.com/rustyeddy/risksim/policy"
)

// RiskSimulationResult is the engine's single output. It is created once
// per invocation, never mutated afterwards, and owned entirely by the
// caller. JSON-serializable for the UI and for batch aggregation.
type RiskSimulationResult struct {
	Params      policy.Params      `json:"params"`
	Summary     SimulationSummary  `json:"summary"`
	Trades      []SimulatedTrade   `json:"trades"`
	EquityCurve []EquityCurvePoint `json:"equityCurve"`
	Weeks       []WeekTrace        `json:"weeks"`
	StartDate   time.Time          `json:"startDate"`
	EndDate     time.Time          `json:"endDate"`
}
