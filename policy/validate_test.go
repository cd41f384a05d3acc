package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSimple() Params {
	return Params{
		Mode:                ModeSimple,
		AccountBalanceCents: 10_000_000,
		Simple: &SimpleRules{
			RiskPercent:    1,
			MaxDailyTrades: 5,
		},
	}
}

func validAdvanced() Params {
	return Params{
		Mode:                ModeAdvanced,
		AccountBalanceCents: 10_000_000,
		Advanced: &DecisionTreeConfig{
			BaseTrade: BaseTrade{RiskCents: 100_000},
			LossRecovery: LossRecovery{
				Sequence: []RecoveryStep{
					{Calculation: PercentOfBase{Percent: 50}},
					{Calculation: SameAsPrevious{}},
				},
			},
			GainMode:   Compounding{ReinvestmentPercent: 30},
			RiskSizing: FixedSizing{},
			LimitMode:  LimitFixed,
			LimitsFixed: &FixedLimits{
				DailyLossCents: 200_000,
			},
		},
	}
}

func TestValidate_SimpleOK(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validSimple().Validate())
}

func TestValidate_AdvancedOK(t *testing.T) {
	t.Parallel()
	assert.NoError(t, validAdvanced().Validate())
}

func TestValidate_FailureFieldPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr string
	}{
		{
			name:    "nonPositiveBalance",
			mutate:  func(p *Params) { p.AccountBalanceCents = 0 },
			wantErr: "accountBalanceCents",
		},
		{
			name:    "unknownMode",
			mutate:  func(p *Params) { p.Mode = "turbo" },
			wantErr: "mode",
		},
		{
			name: "bothBranchesSet",
			mutate: func(p *Params) {
				p.Advanced = validAdvanced().Advanced
			},
			wantErr: "advanced: must be empty",
		},
		{
			name:    "riskPercentTooHigh",
			mutate:  func(p *Params) { p.Simple.RiskPercent = 250 },
			wantErr: "simple.riskPercent",
		},
		{
			name: "reductionFactorOutOfRange",
			mutate: func(p *Params) {
				p.Simple.ReduceRiskAfterLoss = true
				p.Simple.RiskReductionFactor = 1.5
			},
			wantErr: "simple.riskReductionFactor",
		},
		{
			name:    "badScope",
			mutate:  func(p *Params) { p.Simple.ConsecutiveLossScope = "hourly" },
			wantErr: "simple.consecutiveLossScope",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validSimple()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_AdvancedFailureFieldPaths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*DecisionTreeConfig)
		wantErr string
	}{
		{
			name:    "zeroBaseRisk",
			mutate:  func(c *DecisionTreeConfig) { c.BaseTrade.RiskCents = 0 },
			wantErr: "advanced.baseTrade.riskCents",
		},
		{
			name: "tooManyRecoverySteps",
			mutate: func(c *DecisionTreeConfig) {
				c.LossRecovery.Sequence = make([]RecoveryStep, 11)
				for i := range c.LossRecovery.Sequence {
					c.LossRecovery.Sequence[i] = RecoveryStep{Calculation: SameAsPrevious{}}
				}
			},
			wantErr: "advanced.lossRecovery.sequence",
		},
		{
			name: "stepMissingCalculation",
			mutate: func(c *DecisionTreeConfig) {
				c.LossRecovery.Sequence = []RecoveryStep{{}}
			},
			wantErr: "advanced.lossRecovery.sequence[0]",
		},
		{
			name: "stepPercentTooLow",
			mutate: func(c *DecisionTreeConfig) {
				c.LossRecovery.Sequence = []RecoveryStep{{Calculation: PercentOfBase{Percent: 0}}}
			},
			wantErr: "advanced.lossRecovery.sequence[0].percent",
		},
		{
			name:    "missingGainMode",
			mutate:  func(c *DecisionTreeConfig) { c.GainMode = nil },
			wantErr: "advanced.gainMode",
		},
		{
			name:    "singleTargetNeedsTarget",
			mutate:  func(c *DecisionTreeConfig) { c.GainMode = SingleTarget{} },
			wantErr: "advanced.gainMode.dailyTargetCents",
		},
		{
			name: "badCascadingAction",
			mutate: func(c *DecisionTreeConfig) {
				c.CascadingLimits = &CascadingLimits{WeeklyLossCents: 100, Action: "explode"}
			},
			wantErr: "advanced.cascadingLimits.action",
		},
		{
			name: "tooManyDrawdownTiers",
			mutate: func(c *DecisionTreeConfig) {
				tiers := make([]DrawdownTier, 6)
				for i := range tiers {
					tiers[i] = DrawdownTier{DrawdownPercent: float64(i + 1), Action: TierPause}
				}
				c.DrawdownControl = &DrawdownControl{Tiers: tiers, RecoveryThresholdPercent: 1}
			},
			wantErr: "advanced.drawdownControl.tiers",
		},
		{
			name: "tooManyLossRules",
			mutate: func(c *DecisionTreeConfig) {
				rules := make([]ConsecutiveLossRule, 6)
				for i := range rules {
					rules[i] = ConsecutiveLossRule{ConsecutiveDays: i + 1, Action: LossActionStopDay}
				}
				c.ConsecutiveLossRules = rules
			},
			wantErr: "advanced.consecutiveLossRules",
		},
		{
			name: "kellyDivisorBelowOne",
			mutate: func(c *DecisionTreeConfig) {
				c.RiskSizing = KellyFractional{Divisor: 0.5}
			},
			wantErr: "advanced.riskSizing.divisor",
		},
		{
			name: "percentModeNeedsLimits",
			mutate: func(c *DecisionTreeConfig) {
				c.LimitMode = LimitPercent
				c.LimitsPercent = nil
			},
			wantErr: "advanced.limitsPercent",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validAdvanced()
			tt.mutate(p.Advanced)
			err := p.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolve_SimpleLimits(t *testing.T) {
	t.Parallel()

	p := Resolve(ModeSimple, 10_000_000, &SimpleRules{
		RiskPercent:          1,
		DailyLossLimitCents:  200_000,
		DailyTargetCents:     150_000,
		WeeklyLossLimitCents: 500_000,
	}, nil, "UTC")

	assert.Equal(t, int64(100_000), p.SimpleBaseRiskCents())
	assert.Equal(t, int64(200_000), p.Limits.DailyLossCents)
	assert.Equal(t, int64(150_000), p.Limits.DailyTargetCents)
	assert.Equal(t, int64(500_000), p.Limits.WeeklyLossCents)
	assert.Zero(t, p.Limits.MonthlyLossCents)
}

func TestResolve_AdvancedPercentLimits(t *testing.T) {
	t.Parallel()

	cfg := validAdvanced().Advanced
	cfg.LimitMode = LimitPercent
	cfg.LimitsFixed = nil
	cfg.LimitsPercent = &PercentLimits{
		DailyLossPercent:  2,
		WeeklyLossPercent: 5,
	}

	p := Resolve(ModeAdvanced, 10_000_000, nil, cfg, "UTC")

	assert.Equal(t, int64(200_000), p.Limits.DailyLossCents)
	assert.Equal(t, int64(500_000), p.Limits.WeeklyLossCents)
}

func TestResolve_AdvancedRLimits(t *testing.T) {
	t.Parallel()

	cfg := validAdvanced().Advanced
	cfg.LimitMode = LimitRMultiple
	cfg.LimitsFixed = nil
	cfg.LimitsR = &RLimits{DailyLossR: 3, WeeklyLossR: 6}

	p := Resolve(ModeAdvanced, 10_000_000, nil, cfg, "UTC")

	assert.Equal(t, int64(300_000), p.Limits.DailyLossCents)
	assert.Equal(t, int64(600_000), p.Limits.WeeklyLossCents)
}

func TestResolve_CascadingCentsWinOverMode(t *testing.T) {
	t.Parallel()

	cfg := validAdvanced().Advanced
	cfg.LimitMode = LimitPercent
	cfg.LimitsFixed = nil
	cfg.LimitsPercent = &PercentLimits{DailyLossPercent: 2, WeeklyLossPercent: 5}
	cfg.CascadingLimits = &CascadingLimits{
		WeeklyLossCents:  444_000,
		MonthlyLossCents: 999_000,
		Action:           ActionStopTrading,
	}

	p := Resolve(ModeAdvanced, 10_000_000, nil, cfg, "UTC")

	assert.Equal(t, int64(444_000), p.Limits.WeeklyLossCents)
	assert.Equal(t, int64(999_000), p.Limits.MonthlyLossCents)
}

func TestResolve_DailyTargetFromGainMode(t *testing.T) {
	t.Parallel()

	cfg := validAdvanced().Advanced
	cfg.GainMode = SingleTarget{DailyTargetCents: 120_000}

	p := Resolve(ModeAdvanced, 10_000_000, nil, cfg, "UTC")

	assert.Equal(t, int64(120_000), p.Limits.DailyTargetCents)
}
