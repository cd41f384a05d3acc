package policy

import "fmt"

const (
	maxRecoverySteps       = 10
	maxDrawdownTiers       = 5
	maxConsecutiveLossRule = 5
)

// Validate enforces the schema boundary the simulation engine relies on:
// anything that passes here is safe to replay without further checks.
// Errors carry the offending field path.
func (p Params) Validate() error {
	if p.AccountBalanceCents <= 0 {
		return fmt.Errorf("accountBalanceCents: must be a positive number of cents")
	}

	switch p.Mode {
	case ModeSimple:
		if p.Simple == nil {
			return fmt.Errorf("simple: required when mode is %q", ModeSimple)
		}
		if p.Advanced != nil {
			return fmt.Errorf("advanced: must be empty when mode is %q", ModeSimple)
		}
		return p.Simple.validate()
	case ModeAdvanced:
		if p.Advanced == nil {
			return fmt.Errorf("advanced: required when mode is %q", ModeAdvanced)
		}
		if p.Simple != nil {
			return fmt.Errorf("simple: must be empty when mode is %q", ModeAdvanced)
		}
		return p.Advanced.validate()
	default:
		return fmt.Errorf("mode: must be %q or %q", ModeSimple, ModeAdvanced)
	}
}

func percentIn(path string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%s: must be between %g and %g", path, lo, hi)
	}
	return nil
}

func nonNegativeCents(path string, v int64) error {
	if v < 0 {
		return fmt.Errorf("%s: must not be negative", path)
	}
	return nil
}

func (r *SimpleRules) validate() error {
	if err := percentIn("simple.riskPercent", r.RiskPercent, 0.01, 100); err != nil {
		return err
	}
	if r.MaxDailyTrades < 0 {
		return fmt.Errorf("simple.maxDailyTrades: must not be negative")
	}
	if r.MaxConsecutiveLosses < 0 {
		return fmt.Errorf("simple.maxConsecutiveLosses: must not be negative")
	}
	switch r.ConsecutiveLossScope {
	case "", ScopeDaily, ScopeGlobal:
	default:
		return fmt.Errorf("simple.consecutiveLossScope: must be %q or %q", ScopeDaily, ScopeGlobal)
	}
	if r.ReduceRiskAfterLoss {
		if r.RiskReductionFactor <= 0 || r.RiskReductionFactor >= 1 {
			return fmt.Errorf("simple.riskReductionFactor: must be between 0 and 1 exclusive")
		}
	}
	if r.IncreaseRiskAfterWin {
		if err := percentIn("simple.winIncreasePercent", r.WinIncreasePercent, 0, 100); err != nil {
			return err
		}
	}
	for path, v := range map[string]int64{
		"simple.dailyLossLimitCents":   r.DailyLossLimitCents,
		"simple.dailyTargetCents":      r.DailyTargetCents,
		"simple.weeklyLossLimitCents":  r.WeeklyLossLimitCents,
		"simple.monthlyLossLimitCents": r.MonthlyLossLimitCents,
	} {
		if err := nonNegativeCents(path, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *DecisionTreeConfig) validate() error {
	if c.BaseTrade.RiskCents <= 0 {
		return fmt.Errorf("advanced.baseTrade.riskCents: must be a positive number of cents")
	}
	if c.BaseTrade.MaxContracts < 0 {
		return fmt.Errorf("advanced.baseTrade.maxContracts: must not be negative")
	}
	if c.BaseTrade.MinStopDistance < 0 {
		return fmt.Errorf("advanced.baseTrade.minStopDistance: must not be negative")
	}

	if len(c.LossRecovery.Sequence) > maxRecoverySteps {
		return fmt.Errorf("advanced.lossRecovery.sequence: at most %d steps", maxRecoverySteps)
	}
	for i, step := range c.LossRecovery.Sequence {
		path := fmt.Sprintf("advanced.lossRecovery.sequence[%d]", i)
		if step.MaxContracts < 0 {
			return fmt.Errorf("%s.maxContracts: must not be negative", path)
		}
		switch calc := step.Calculation.(type) {
		case PercentOfBase:
			if err := percentIn(path+".percent", calc.Percent, 0.01, 1000); err != nil {
				return err
			}
		case SameAsPrevious:
		case FixedCents:
			if calc.AmountCents <= 0 {
				return fmt.Errorf("%s.amountCents: must be a positive number of cents", path)
			}
		default:
			return fmt.Errorf("%s: missing risk calculation", path)
		}
	}

	switch gm := c.GainMode.(type) {
	case SingleTarget:
		if gm.DailyTargetCents <= 0 {
			return fmt.Errorf("advanced.gainMode.dailyTargetCents: must be a positive number of cents")
		}
	case Compounding:
		if err := percentIn("advanced.gainMode.reinvestmentPercent", gm.ReinvestmentPercent, 0, 100); err != nil {
			return err
		}
		if err := nonNegativeCents("advanced.gainMode.dailyTargetCents", gm.DailyTargetCents); err != nil {
			return err
		}
	default:
		return fmt.Errorf("advanced.gainMode: required")
	}

	if c.CascadingLimits != nil {
		if err := nonNegativeCents("advanced.cascadingLimits.weeklyLossCents", c.CascadingLimits.WeeklyLossCents); err != nil {
			return err
		}
		if err := nonNegativeCents("advanced.cascadingLimits.monthlyLossCents", c.CascadingLimits.MonthlyLossCents); err != nil {
			return err
		}
		switch c.CascadingLimits.Action {
		case ActionStopTrading, ActionReduceRisk:
		default:
			return fmt.Errorf("advanced.cascadingLimits.action: must be %q or %q", ActionStopTrading, ActionReduceRisk)
		}
	}

	if c.DrawdownControl != nil {
		if len(c.DrawdownControl.Tiers) > maxDrawdownTiers {
			return fmt.Errorf("advanced.drawdownControl.tiers: at most %d tiers", maxDrawdownTiers)
		}
		for i, tier := range c.DrawdownControl.Tiers {
			path := fmt.Sprintf("advanced.drawdownControl.tiers[%d]", i)
			if err := percentIn(path+".drawdownPercent", tier.DrawdownPercent, 0, 100); err != nil {
				return err
			}
			switch tier.Action {
			case TierReduceRisk:
				if err := percentIn(path+".reducePercent", tier.ReducePercent, 0, 100); err != nil {
					return err
				}
			case TierPause:
			default:
				return fmt.Errorf("%s.action: must be %q or %q", path, TierReduceRisk, TierPause)
			}
		}
		if err := percentIn("advanced.drawdownControl.recoveryThresholdPercent",
			c.DrawdownControl.RecoveryThresholdPercent, 0, 100); err != nil {
			return err
		}
	}

	if len(c.ConsecutiveLossRules) > maxConsecutiveLossRule {
		return fmt.Errorf("advanced.consecutiveLossRules: at most %d rules", maxConsecutiveLossRule)
	}
	for i, rule := range c.ConsecutiveLossRules {
		path := fmt.Sprintf("advanced.consecutiveLossRules[%d]", i)
		if rule.ConsecutiveDays <= 0 {
			return fmt.Errorf("%s.consecutiveDays: must be positive", path)
		}
		switch rule.Action {
		case LossActionReduceRisk:
			if err := percentIn(path+".reducePercent", rule.ReducePercent, 0, 100); err != nil {
				return err
			}
		case LossActionStopDay, LossActionPauseWeek:
		default:
			return fmt.Errorf("%s.action: must be one of %q, %q, %q",
				path, LossActionReduceRisk, LossActionStopDay, LossActionPauseWeek)
		}
	}

	switch rs := c.RiskSizing.(type) {
	case FixedSizing, nil:
	case PercentOfBalance:
		if err := percentIn("advanced.riskSizing.riskPercent", rs.RiskPercent, 0.01, 100); err != nil {
			return err
		}
	case FixedRatio:
		if rs.DeltaCents <= 0 {
			return fmt.Errorf("advanced.riskSizing.deltaCents: must be a positive number of cents")
		}
		if rs.BaseContractRiskCents <= 0 {
			return fmt.Errorf("advanced.riskSizing.baseContractRiskCents: must be a positive number of cents")
		}
	case KellyFractional:
		if rs.Divisor < 1 {
			return fmt.Errorf("advanced.riskSizing.divisor: must be at least 1")
		}
	default:
		return fmt.Errorf("advanced.riskSizing: unknown sizing mode")
	}

	switch c.LimitMode {
	case "", LimitFixed:
		if c.LimitsFixed != nil {
			if err := nonNegativeCents("advanced.limitsFixed.dailyLossCents", c.LimitsFixed.DailyLossCents); err != nil {
				return err
			}
		}
	case LimitPercent:
		if c.LimitsPercent == nil {
			return fmt.Errorf("advanced.limitsPercent: required when limitMode is %q", LimitPercent)
		}
		for path, v := range map[string]float64{
			"advanced.limitsPercent.dailyLossPercent":   c.LimitsPercent.DailyLossPercent,
			"advanced.limitsPercent.weeklyLossPercent":  c.LimitsPercent.WeeklyLossPercent,
			"advanced.limitsPercent.monthlyLossPercent": c.LimitsPercent.MonthlyLossPercent,
		} {
			if err := percentIn(path, v, 0, 100); err != nil {
				return err
			}
		}
	case LimitRMultiple:
		if c.LimitsR == nil {
			return fmt.Errorf("advanced.limitsR: required when limitMode is %q", LimitRMultiple)
		}
		for path, v := range map[string]float64{
			"advanced.limitsR.dailyLossR":   c.LimitsR.DailyLossR,
			"advanced.limitsR.weeklyLossR":  c.LimitsR.WeeklyLossR,
			"advanced.limitsR.monthlyLossR": c.LimitsR.MonthlyLossR,
		} {
			if v < 0 {
				return fmt.Errorf("%s: must not be negative", path)
			}
		}
	default:
		return fmt.Errorf("advanced.limitMode: must be one of %q, %q, %q", LimitFixed, LimitPercent, LimitRMultiple)
	}

	return nil
}
