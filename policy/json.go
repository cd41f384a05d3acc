package policy

import (
	"encoding/json"
	"fmt"
)

// The sum types serialize with a "type" discriminator so profiles stored as
// JSON round-trip losslessly.

type recoveryStepJSON struct {
	Type         string  `json:"type"`
	Percent      float64 `json:"percent,omitempty"`
	AmountCents  int64   `json:"amountCents,omitempty"`
	MaxContracts int64   `json:"maxContracts,omitempty"`
}

func (s RecoveryStep) MarshalJSON() ([]byte, error) {
	out := recoveryStepJSON{MaxContracts: s.MaxContracts}
	switch c := s.Calculation.(type) {
	case PercentOfBase:
		out.Type = "percentOfBase"
		out.Percent = c.Percent
	case SameAsPrevious:
		out.Type = "sameAsPrevious"
	case FixedCents:
		out.Type = "fixedCents"
		out.AmountCents = c.AmountCents
	default:
		return nil, fmt.Errorf("recovery step: unknown calculation %T", s.Calculation)
	}
	return json.Marshal(out)
}

func (s *RecoveryStep) UnmarshalJSON(data []byte) error {
	var in recoveryStepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	s.MaxContracts = in.MaxContracts
	switch in.Type {
	case "percentOfBase":
		s.Calculation = PercentOfBase{Percent: in.Percent}
	case "sameAsPrevious":
		s.Calculation = SameAsPrevious{}
	case "fixedCents":
		s.Calculation = FixedCents{AmountCents: in.AmountCents}
	default:
		return fmt.Errorf("recovery step: unknown calculation type %q", in.Type)
	}
	return nil
}

type gainModeJSON struct {
	Type                string  `json:"type"`
	DailyTargetCents    int64   `json:"dailyTargetCents,omitempty"`
	ReinvestmentPercent float64 `json:"reinvestmentPercent,omitempty"`
	StopOnFirstLoss     bool    `json:"stopOnFirstLoss,omitempty"`
}

func marshalGainMode(gm GainMode) (json.RawMessage, error) {
	switch m := gm.(type) {
	case SingleTarget:
		return json.Marshal(gainModeJSON{Type: "singleTarget", DailyTargetCents: m.DailyTargetCents})
	case Compounding:
		return json.Marshal(gainModeJSON{
			Type:                "compounding",
			DailyTargetCents:    m.DailyTargetCents,
			ReinvestmentPercent: m.ReinvestmentPercent,
			StopOnFirstLoss:     m.StopOnFirstLoss,
		})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("gain mode: unknown variant %T", gm)
	}
}

func unmarshalGainMode(data []byte) (GainMode, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var in gainModeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	switch in.Type {
	case "singleTarget":
		return SingleTarget{DailyTargetCents: in.DailyTargetCents}, nil
	case "compounding":
		return Compounding{
			DailyTargetCents:    in.DailyTargetCents,
			ReinvestmentPercent: in.ReinvestmentPercent,
			StopOnFirstLoss:     in.StopOnFirstLoss,
		}, nil
	default:
		return nil, fmt.Errorf("gain mode: unknown type %q", in.Type)
	}
}

type riskSizingJSON struct {
	Type                  string  `json:"type"`
	RiskPercent           float64 `json:"riskPercent,omitempty"`
	DeltaCents            int64   `json:"deltaCents,omitempty"`
	BaseContractRiskCents int64   `json:"baseContractRiskCents,omitempty"`
	Divisor               float64 `json:"divisor,omitempty"`
}

func marshalRiskSizing(rs RiskSizingMode) (json.RawMessage, error) {
	switch m := rs.(type) {
	case FixedSizing:
		return json.Marshal(riskSizingJSON{Type: "fixed"})
	case PercentOfBalance:
		return json.Marshal(riskSizingJSON{Type: "percentOfBalance", RiskPercent: m.RiskPercent})
	case FixedRatio:
		return json.Marshal(riskSizingJSON{
			Type:                  "fixedRatio",
			DeltaCents:            m.DeltaCents,
			BaseContractRiskCents: m.BaseContractRiskCents,
		})
	case KellyFractional:
		return json.Marshal(riskSizingJSON{Type: "kellyFractional", Divisor: m.Divisor})
	case nil:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("risk sizing: unknown variant %T", rs)
	}
}

func unmarshalRiskSizing(data []byte) (RiskSizingMode, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var in riskSizingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, err
	}
	switch in.Type {
	case "fixed":
		return FixedSizing{}, nil
	case "percentOfBalance":
		return PercentOfBalance{RiskPercent: in.RiskPercent}, nil
	case "fixedRatio":
		return FixedRatio{DeltaCents: in.DeltaCents, BaseContractRiskCents: in.BaseContractRiskCents}, nil
	case "kellyFractional":
		return KellyFractional{Divisor: in.Divisor}, nil
	default:
		return nil, fmt.Errorf("risk sizing: unknown type %q", in.Type)
	}
}

func (c DecisionTreeConfig) MarshalJSON() ([]byte, error) {
	type alias DecisionTreeConfig
	gm, err := marshalGainMode(c.GainMode)
	if err != nil {
		return nil, err
	}
	rs, err := marshalRiskSizing(c.RiskSizing)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		GainMode   json.RawMessage `json:"gainMode"`
		RiskSizing json.RawMessage `json:"riskSizing"`
	}{alias(c), gm, rs})
}

func (c *DecisionTreeConfig) UnmarshalJSON(data []byte) error {
	type alias DecisionTreeConfig
	aux := struct {
		*alias
		GainMode   json.RawMessage `json:"gainMode"`
		RiskSizing json.RawMessage `json:"riskSizing"`
	}{alias: (*alias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	gm, err := unmarshalGainMode(aux.GainMode)
	if err != nil {
		return err
	}
	rs, err := unmarshalRiskSizing(aux.RiskSizing)
	if err != nil {
		return err
	}
	c.GainMode = gm
	c.RiskSizing = rs
	return nil
}
