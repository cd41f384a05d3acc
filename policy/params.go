package policy

import "math"

// Mode discriminates the params union.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeAdvanced Mode = "advanced"
)

// ConsecutiveLossScope controls whether a simple-mode loss streak survives
// the day boundary.
type ConsecutiveLossScope string

const (
	ScopeDaily  ConsecutiveLossScope = "daily"
	ScopeGlobal ConsecutiveLossScope = "global"
)

// SimpleRules are the flat-percentage money-management rules.
type SimpleRules struct {
	// RiskPercent of the initial balance risked per trade.
	RiskPercent float64 `json:"riskPercent"`

	// MaxDailyTrades and MaxConsecutiveLosses of 0 disable those gates.
	MaxDailyTrades       int                  `json:"maxDailyTrades,omitempty"`
	MaxConsecutiveLosses int                  `json:"maxConsecutiveLosses,omitempty"`
	ConsecutiveLossScope ConsecutiveLossScope `json:"consecutiveLossScope,omitempty"`

	ReduceRiskAfterLoss bool    `json:"reduceRiskAfterLoss,omitempty"`
	RiskReductionFactor float64 `json:"riskReductionFactor,omitempty"`

	IncreaseRiskAfterWin bool    `json:"increaseRiskAfterWin,omitempty"`
	WinIncreasePercent   float64 `json:"winIncreasePercent,omitempty"`

	// Ceilings in cents; 0 disables.
	DailyLossLimitCents   int64 `json:"dailyLossLimitCents,omitempty"`
	DailyTargetCents      int64 `json:"dailyTargetCents,omitempty"`
	WeeklyLossLimitCents  int64 `json:"weeklyLossLimitCents,omitempty"`
	MonthlyLossLimitCents int64 `json:"monthlyLossLimitCents,omitempty"`
}

// ResolvedLimits are the loss/target ceilings in cents after the limit mode
// has been applied. A zero value disables the corresponding gate.
type ResolvedLimits struct {
	DailyLossCents   int64 `json:"dailyLossCents"`
	DailyTargetCents int64 `json:"dailyTargetCents"`
	WeeklyLossCents  int64 `json:"weeklyLossCents"`
	MonthlyLossCents int64 `json:"monthlyLossCents"`
}

// Params is the tagged union handed to the simulation engine. Exactly one
// of Simple or Advanced is set, matching Mode.
type Params struct {
	Mode                Mode                `json:"mode"`
	AccountBalanceCents int64               `json:"accountBalanceCents"`
	Timezone            string              `json:"timezone,omitempty"`
	Simple              *SimpleRules        `json:"simple,omitempty"`
	Advanced            *DecisionTreeConfig `json:"advanced,omitempty"`
	Limits              ResolvedLimits      `json:"limits"`
}

// SimpleBaseRiskCents is the simple-mode per-trade risk anchor.
func (p Params) SimpleBaseRiskCents() int64 {
	if p.Simple == nil {
		return 0
	}
	return int64(math.Round(float64(p.AccountBalanceCents) * p.Simple.RiskPercent / 100))
}

// Resolve builds engine-ready Params from a validated profile. It converts
// percent- and R-expressed ceilings into cents against the initial balance
// and base risk; the engine itself only ever sees cents.
func Resolve(mode Mode, balanceCents int64, simple *SimpleRules, advanced *DecisionTreeConfig, tz string) Params {
	p := Params{
		Mode:                mode,
		AccountBalanceCents: balanceCents,
		Timezone:            tz,
		Simple:              simple,
		Advanced:            advanced,
	}

	switch mode {
	case ModeSimple:
		if simple != nil {
			p.Limits = ResolvedLimits{
				DailyLossCents:   simple.DailyLossLimitCents,
				DailyTargetCents: simple.DailyTargetCents,
				WeeklyLossCents:  simple.WeeklyLossLimitCents,
				MonthlyLossCents: simple.MonthlyLossLimitCents,
			}
		}
	case ModeAdvanced:
		if advanced != nil {
			p.Limits = resolveAdvancedLimits(balanceCents, advanced)
		}
	}

	return p
}

func resolveAdvancedLimits(balanceCents int64, cfg *DecisionTreeConfig) ResolvedLimits {
	var lim ResolvedLimits

	pctOf := func(pct float64) int64 {
		return int64(math.Round(float64(balanceCents) * pct / 100))
	}
	rOf := func(r float64) int64 {
		return int64(math.Round(float64(cfg.BaseTrade.RiskCents) * r))
	}

	switch cfg.LimitMode {
	case LimitPercent:
		if cfg.LimitsPercent != nil {
			lim.DailyLossCents = pctOf(cfg.LimitsPercent.DailyLossPercent)
			lim.WeeklyLossCents = pctOf(cfg.LimitsPercent.WeeklyLossPercent)
			lim.MonthlyLossCents = pctOf(cfg.LimitsPercent.MonthlyLossPercent)
		}
	case LimitRMultiple:
		if cfg.LimitsR != nil {
			lim.DailyLossCents = rOf(cfg.LimitsR.DailyLossR)
			lim.WeeklyLossCents = rOf(cfg.LimitsR.WeeklyLossR)
			lim.MonthlyLossCents = rOf(cfg.LimitsR.MonthlyLossR)
		}
	default: // fixed
		if cfg.LimitsFixed != nil {
			lim.DailyLossCents = cfg.LimitsFixed.DailyLossCents
		}
	}

	// Fixed-cents cascading limits win over the limit-mode expression when
	// both are present.
	if cfg.CascadingLimits != nil {
		if cfg.CascadingLimits.WeeklyLossCents > 0 {
			lim.WeeklyLossCents = cfg.CascadingLimits.WeeklyLossCents
		}
		if cfg.CascadingLimits.MonthlyLossCents > 0 {
			lim.MonthlyLossCents = cfg.CascadingLimits.MonthlyLossCents
		}
	}

	// The daily target always comes from the gain mode.
	switch gm := cfg.GainMode.(type) {
	case SingleTarget:
		lim.DailyTargetCents = gm.DailyTargetCents
	case Compounding:
		lim.DailyTargetCents = gm.DailyTargetCents
	}

	return lim
}
