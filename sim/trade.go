package sim

import (
	"time"

	"github.com/rustyeddy/risksim/risk"
)

// TradeForSimulation is one historical trade, already normalized into
// engine-native units. Never mutated by the engine.
type TradeForSimulation struct {
	ID        string         `json:"id"`
	EntryTime time.Time      `json:"entryTime"`
	ExitTime  time.Time      `json:"exitTime"`
	Asset     string         `json:"asset"`
	Direction risk.Direction `json:"direction"`

	EntryPrice float64  `json:"entryPrice"`
	ExitPrice  float64  `json:"exitPrice"`
	StopLoss   *float64 `json:"stopLoss,omitempty"`

	PositionSize int64        `json:"positionSize"`
	PnlCents     int64        `json:"pnlCents"`
	Outcome      risk.Outcome `json:"outcome"`
	RMultiple    float64      `json:"rMultiple"`

	TickSize        float64 `json:"tickSize"`
	TickValueCents  int64   `json:"tickValueCents"`
	CommissionCents int64   `json:"commissionCents"`
	FeesCents       int64   `json:"feesCents"`
}

// Status is the simulation outcome of a single trade.
type Status string

const (
	StatusExecuted Status = "executed"

	SkipNoStopLoss       Status = "skipped_no_sl"
	SkipMonthlyLimit     Status = "skipped_monthly_limit"
	SkipWeeklyLimit      Status = "skipped_weekly_limit"
	SkipDailyLimit       Status = "skipped_daily_limit"
	SkipDailyTarget      Status = "skipped_daily_target"
	SkipMaxTrades        Status = "skipped_max_trades"
	SkipConsecutiveLoss  Status = "skipped_consecutive_loss"
	SkipRecoveryComplete Status = "skipped_recovery_complete"
	SkipGainStop         Status = "skipped_gain_stop"
)

// SkipStatuses lists every skip reason, in evaluation priority order.
var SkipStatuses = []Status{
	SkipNoStopLoss,
	SkipMonthlyLimit,
	SkipWeeklyLimit,
	SkipDailyLimit,
	SkipDailyTarget,
	SkipMaxTrades,
	SkipConsecutiveLoss,
	SkipRecoveryComplete,
	SkipGainStop,
}

// Phase is the simulation's mode within a trading day.
type Phase string

const (
	PhaseBase         Phase = "base"
	PhaseLossRecovery Phase = "loss_recovery"
	PhaseGainMode     Phase = "gain_mode"
	PhaseNormal       Phase = "normal"
)

// SimulatedTrade is one trade's replay outcome. The Simulated* pointers are
// nil exactly when Status is not "executed".
type SimulatedTrade struct {
	TradeID   string    `json:"tradeId"`
	EntryTime time.Time `json:"entryTime"`
	Asset     string    `json:"asset"`
	Status    Status    `json:"status"`

	OriginalPositionSize int64   `json:"originalPositionSize"`
	OriginalPnlCents     int64   `json:"originalPnlCents"`
	OriginalRMultiple    float64 `json:"originalRMultiple"`

	SimulatedPositionSize *int64   `json:"simulatedPositionSize"`
	SimulatedPnlCents     *int64   `json:"simulatedPnlCents"`
	SimulatedRMultiple    *float64 `json:"simulatedRMultiple"`

	RiskAmountCents int64  `json:"riskAmountCents"`
	RiskReason      string `json:"riskReason"`

	DayPhase          Phase   `json:"dayPhase"`
	DayTradeNumber    int     `json:"dayTradeNumber"`
	EquityAfterCents  int64   `json:"equityAfterCents"`
	DrawdownPercent   float64 `json:"drawdownPercent"`
	ConsecutiveLosses int     `json:"consecutiveLosses"`
}

// EquityCurvePoint compares original and simulated cumulative equity after
// each trade, for charting.
type EquityCurvePoint struct {
	TradeID              string    `json:"tradeId"`
	Time                 time.Time `json:"time"`
	OriginalEquityCents  int64     `json:"originalEquityCents"`
	SimulatedEquityCents int64     `json:"simulatedEquityCents"`
}
