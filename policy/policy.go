// Package policy holds the money-management configuration a simulation run
// replays historical trades against. It is pure data: the sim package owns
// all behavior.
package policy

// RiskCalculation is one way of deriving a loss-recovery step's risk amount.
// Exactly one of PercentOfBase, SameAsPrevious or FixedCents.
type RiskCalculation interface {
	isRiskCalculation()
}

// PercentOfBase scales the configured base risk.
type PercentOfBase struct {
	Percent float64 `json:"percent"`
}

// SameAsPrevious repeats the previously resolved risk.
type SameAsPrevious struct{}

// FixedCents is a literal risk amount.
type FixedCents struct {
	AmountCents int64 `json:"amountCents"`
}

func (PercentOfBase) isRiskCalculation()  {}
func (SameAsPrevious) isRiskCalculation() {}
func (FixedCents) isRiskCalculation()     {}

// GainMode controls what happens after the day turns profitable.
// Exactly one of SingleTarget or Compounding.
type GainMode interface {
	isGainMode()
}

// SingleTarget stops the day once a fixed gain is reached.
type SingleTarget struct {
	DailyTargetCents int64 `json:"dailyTargetCents"`
}

// Compounding reinvests a share of the day's accumulated gains into the
// next trade's risk. DailyTargetCents of 0 means no target.
type Compounding struct {
	ReinvestmentPercent float64 `json:"reinvestmentPercent"`
	StopOnFirstLoss     bool    `json:"stopOnFirstLoss"`
	DailyTargetCents    int64   `json:"dailyTargetCents,omitempty"`
}

func (SingleTarget) isGainMode() {}
func (Compounding) isGainMode()  {}

// RiskSizingMode derives the base risk for each trade.
type RiskSizingMode interface {
	isRiskSizingMode()
}

// FixedSizing always uses the configured base risk.
type FixedSizing struct{}

// PercentOfBalance risks a share of current equity.
type PercentOfBalance struct {
	RiskPercent float64 `json:"riskPercent"`
}

// FixedRatio grows risk by one base unit per DeltaCents of accumulated
// profit (Jones-style fixed ratio).
type FixedRatio struct {
	DeltaCents            int64 `json:"deltaCents"`
	BaseContractRiskCents int64 `json:"baseContractRiskCents"`
}

// KellyFractional risks a divided Kelly fraction of equity, computed from
// the run's own win statistics.
type KellyFractional struct {
	Divisor float64 `json:"divisor"`
}

func (FixedSizing) isRiskSizingMode()      {}
func (PercentOfBalance) isRiskSizingMode() {}
func (FixedRatio) isRiskSizingMode()       {}
func (KellyFractional) isRiskSizingMode()  {}

// BaseTrade is the per-trade risk anchor.
type BaseTrade struct {
	RiskCents       int64   `json:"riskCents"`
	MaxContracts    int64   `json:"maxContracts,omitempty"`
	MinStopDistance float64 `json:"minStopDistance,omitempty"`
}

// RecoveryStep is one entry of the loss-recovery sequence. MaxContracts,
// when set, overrides the base-trade cap for this step only.
type RecoveryStep struct {
	Calculation  RiskCalculation
	MaxContracts int64
}

// LossRecovery describes how risk evolves after the day opens with a loss.
type LossRecovery struct {
	Sequence []RecoveryStep `json:"sequence"`

	// ExecuteAllRegardless keeps walking the sequence even after a
	// recovery win instead of flipping into gain mode.
	ExecuteAllRegardless bool `json:"executeAllRegardless"`

	// StopAfterSequence skips the rest of the day once the sequence is
	// exhausted.
	StopAfterSequence bool `json:"stopAfterSequence"`
}

// LimitAction is what a cascading limit does once breached.
type LimitAction string

const (
	ActionStopTrading LimitAction = "stopTrading"
	ActionReduceRisk  LimitAction = "reduceRisk"
)

// CascadingLimits are weekly and monthly loss ceilings in cents. A zero
// ceiling disables that boundary.
type CascadingLimits struct {
	WeeklyLossCents  int64       `json:"weeklyLossCents,omitempty"`
	MonthlyLossCents int64       `json:"monthlyLossCents,omitempty"`
	Action           LimitAction `json:"action"`
}

// TierAction is the response to a drawdown-control tier being met.
type TierAction string

const (
	TierReduceRisk TierAction = "reduceRisk"
	TierPause      TierAction = "pause"
)

// DrawdownTier is one rung of the drawdown ladder. Tiers are checked in the
// configured order and only the first match applies.
type DrawdownTier struct {
	DrawdownPercent float64    `json:"drawdownPercent"`
	Action          TierAction `json:"action"`
	ReducePercent   float64    `json:"reducePercent,omitempty"`
}

type DrawdownControl struct {
	Tiers []DrawdownTier `json:"tiers"`

	// RecoveryThresholdPercent disengages all tiers once drawdown falls
	// back under it.
	RecoveryThresholdPercent float64 `json:"recoveryThresholdPercent"`
}

// ConsecutiveLossAction is the response to a run of losing days.
type ConsecutiveLossAction string

const (
	LossActionReduceRisk ConsecutiveLossAction = "reduceRisk"
	LossActionStopDay    ConsecutiveLossAction = "stopDay"
	LossActionPauseWeek  ConsecutiveLossAction = "pauseWeek"
)

type ConsecutiveLossRule struct {
	ConsecutiveDays int                   `json:"consecutiveDays"`
	Action          ConsecutiveLossAction `json:"action"`
	ReducePercent   float64               `json:"reducePercent,omitempty"`
}

// LimitMode selects how daily/weekly/monthly ceilings are expressed.
type LimitMode string

const (
	LimitFixed     LimitMode = "fixed"
	LimitPercent   LimitMode = "percent"
	LimitRMultiple LimitMode = "rmultiple"
)

// FixedLimits are ceilings in literal cents.
type FixedLimits struct {
	DailyLossCents int64 `json:"dailyLossCents"`
}

// PercentLimits are ceilings as a percent of the initial balance.
type PercentLimits struct {
	DailyLossPercent   float64 `json:"dailyLossPercent"`
	WeeklyLossPercent  float64 `json:"weeklyLossPercent,omitempty"`
	MonthlyLossPercent float64 `json:"monthlyLossPercent,omitempty"`
}

// RLimits are ceilings as multiples of the base risk.
type RLimits struct {
	DailyLossR   float64 `json:"dailyLossR"`
	WeeklyLossR  float64 `json:"weeklyLossR,omitempty"`
	MonthlyLossR float64 `json:"monthlyLossR,omitempty"`
}

// DecisionTreeConfig is the full advanced policy under test.
type DecisionTreeConfig struct {
	BaseTrade            BaseTrade             `json:"baseTrade"`
	LossRecovery         LossRecovery          `json:"lossRecovery"`
	GainMode             GainMode              `json:"gainMode"`
	CascadingLimits      *CascadingLimits      `json:"cascadingLimits,omitempty"`
	DrawdownControl      *DrawdownControl      `json:"drawdownControl,omitempty"`
	ConsecutiveLossRules []ConsecutiveLossRule `json:"consecutiveLossRules,omitempty"`
	RiskSizing           RiskSizingMode        `json:"riskSizing"`
	LimitMode            LimitMode             `json:"limitMode"`
	LimitsFixed          *FixedLimits          `json:"limitsFixed,omitempty"`
	LimitsPercent        *PercentLimits        `json:"limitsPercent,omitempty"`
	LimitsR              *RLimits              `json:"limitsR,omitempty"`
}
