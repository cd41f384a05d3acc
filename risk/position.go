package risk

import "math"

// SizeInputs describes one position-sizing request. All money values are
// integer cents; prices and tick sizes are in the asset's own price units.
type SizeInputs struct {
	RiskBudgetCents int64
	EntryPrice      float64
	StopPrice       float64
	TickSize        float64
	TickValueCents  int64

	// MinStopDistance widens the stop distance used for sizing when the
	// actual stop is tighter. 0 disables it.
	MinStopDistance float64

	// MaxContracts caps the suggested size. 0 means uncapped.
	MaxContracts int64
}

type SizeResult struct {
	Contracts            int64
	RiskPerContractCents int64
	ActualRiskCents      int64
}

// SizePosition converts a risk budget into a whole number of contracts.
//
// A zero risk-per-contract (no tick size, stop on entry) yields zero
// contracts rather than a division error.
func SizePosition(in SizeInputs) SizeResult {
	dist := math.Abs(in.EntryPrice - in.StopPrice)
	if in.MinStopDistance > dist {
		dist = in.MinStopDistance
	}
	if in.TickSize <= 0 || dist <= 0 || in.TickValueCents <= 0 {
		return SizeResult{}
	}

	ticks := math.Round(dist / in.TickSize)
	perContract := int64(ticks) * in.TickValueCents
	if perContract <= 0 {
		return SizeResult{}
	}

	contracts := in.RiskBudgetCents / perContract
	if contracts < 0 {
		contracts = 0
	}
	if in.MaxContracts > 0 && contracts > in.MaxContracts {
		contracts = in.MaxContracts
	}

	return SizeResult{
		Contracts:            contracts,
		RiskPerContractCents: perContract,
		ActualRiskCents:      contracts * perContract,
	}
}

// PnLInputs describes one fill for P/L accounting. Commission and fees are
// per contract for the full round trip.
type PnLInputs struct {
	EntryPrice      float64
	ExitPrice       float64
	Direction       Direction
	Contracts       int64
	TickSize        float64
	TickValueCents  int64
	CommissionCents int64
	FeesCents       int64
}

type PnLResult struct {
	GrossCents int64
	CostCents  int64
	NetCents   int64
}

// PnL computes tick-quantized gross and net P/L for a closed position.
func PnL(in PnLInputs) PnLResult {
	if in.TickSize <= 0 || in.Contracts <= 0 {
		return PnLResult{}
	}

	move := in.ExitPrice - in.EntryPrice
	if in.Direction == Short {
		move = -move
	}

	ticks := math.Round(move / in.TickSize)
	gross := int64(ticks) * in.TickValueCents * in.Contracts
	cost := (in.CommissionCents + in.FeesCents) * in.Contracts

	return PnLResult{
		GrossCents: gross,
		CostCents:  cost,
		NetCents:   gross - cost,
	}
}
