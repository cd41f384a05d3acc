// Package montecarlo drives many independent replay-engine runs over
// synthetic trade sequences and aggregates the outcomes into distributions.
package montecarlo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/sim"
)

// Iteration budget caps: total simulated trades across all runs.
const (
	FlatBudgetCap = 3_000_000
	DayBudgetCap  = 10_000_000
)

// Config controls one Monte Carlo batch.
type Config struct {
	Simulations int `json:"simulations" yaml:"simulations"`

	// Flat variant: NumTrades per synthetic sequence.
	NumTrades int `json:"numTrades" yaml:"num_trades"`

	// Day-structured variant: TradesPerDay × Days per sequence.
	DayStructured bool `json:"dayStructured" yaml:"day_structured"`
	TradesPerDay  int  `json:"tradesPerDay" yaml:"trades_per_day"`
	Days          int  `json:"days" yaml:"days"`

	// Seed makes the whole batch reproducible; each iteration derives its
	// own generator from it, so worker scheduling cannot change results.
	Seed int64 `json:"seed" yaml:"seed"`

	Workers              int     `json:"workers" yaml:"workers"`
	RuinThresholdPercent float64 `json:"ruinThresholdPercent" yaml:"ruin_threshold_percent"`
}

func (c Config) tradesPerRun() int {
	if c.DayStructured {
		return c.TradesPerDay * c.Days
	}
	return c.NumTrades
}

// Validate rejects parameter combinations whose total iteration count
// would exceed the configured budget cap.
func (c Config) Validate() error {
	if c.Simulations <= 0 {
		return fmt.Errorf("simulations: must be positive")
	}
	if c.DayStructured {
		if c.TradesPerDay <= 0 || c.Days <= 0 {
			return fmt.Errorf("tradesPerDay, days: must be positive for the day-structured variant")
		}
		total := int64(c.TradesPerDay) * int64(c.Days) * int64(c.Simulations)
		if total > DayBudgetCap {
			return fmt.Errorf("tradesPerDay×days×simulations: %d exceeds the %d iteration budget", total, int64(DayBudgetCap))
		}
		return nil
	}
	if c.NumTrades <= 0 {
		return fmt.Errorf("numTrades: must be positive")
	}
	if total := int64(c.NumTrades) * int64(c.Simulations); total > FlatBudgetCap {
		return fmt.Errorf("numTrades×simulations: %d exceeds the %d iteration budget", total, int64(FlatBudgetCap))
	}
	return nil
}

// Distribution summarizes one per-run metric across the batch.
type Distribution struct {
	P5   float64 `json:"p5"`
	P50  float64 `json:"p50"`
	P95  float64 `json:"p95"`
	Mean float64 `json:"mean"`
}

// Result aggregates a full batch.
type Result struct {
	Iterations   int `json:"iterations"`
	TradesPerRun int `json:"tradesPerRun"`

	FinalEquityCents Distribution `json:"finalEquityCents"`
	NetPnlCents      Distribution `json:"netPnlCents"`
	MaxDrawdownPct   Distribution `json:"maxDrawdownPct"`

	ProbabilityOfProfit float64 `json:"probabilityOfProfit"`
	ProbabilityOfRuin   float64 `json:"probabilityOfRuin"`
}

// Runner fans simulations out over a bounded worker pool. Each engine run
// allocates its own state, so runs share nothing mutable.
type Runner struct {
	cfg    Config
	logger *zap.Logger
}

func NewRunner(cfg Config, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, logger: logger}
}

type pathOutcome struct {
	finalEquity float64
	netPnl      float64
	maxDD       float64
}

// Run resamples the historical log into synthetic sequences and replays
// each one through the engine.
func (r *Runner) Run(ctx context.Context, trades []sim.TradeForSimulation, params policy.Params) (Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return Result{}, fmt.Errorf("montecarlo config: %w", err)
	}
	if len(trades) == 0 {
		return Result{}, fmt.Errorf("montecarlo: empty trade log")
	}

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	outcomes := make([]pathOutcome, r.cfg.Simulations)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < r.cfg.Simulations; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(r.cfg.Seed + int64(i)))
			seq := r.synthesize(rng, trades)
			res := sim.Run(seq, params)
			outcomes[i] = pathOutcome{
				finalEquity: float64(params.AccountBalanceCents + res.Summary.Simulated.TotalPnlCents),
				netPnl:      float64(res.Summary.Simulated.TotalPnlCents),
				maxDD:       res.Summary.Simulated.MaxDrawdownPercent,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	out := r.aggregate(outcomes, params.AccountBalanceCents)
	r.logger.Info("monte carlo batch complete",
		zap.Int("iterations", out.Iterations),
		zap.Int("tradesPerRun", out.TradesPerRun),
		zap.Float64("medianNetPnlCents", out.NetPnlCents.P50),
		zap.Float64("p95MaxDrawdownPct", out.MaxDrawdownPct.P95),
		zap.Float64("probabilityOfRuin", out.ProbabilityOfRuin),
	)
	return out, nil
}

// synthesize bootstrap-samples the historical trades (with replacement)
// and re-dates them onto a synthetic calendar so the engine's day/week/
// month boundaries stay meaningful.
func (r *Runner) synthesize(rng *rand.Rand, trades []sim.TradeForSimulation) []sim.TradeForSimulation {
	perDay := r.cfg.TradesPerDay
	total := r.cfg.tradesPerRun()
	if !r.cfg.DayStructured {
		// Flat variant packs a nominal session of 16 trades per day.
		perDay = 16
	}

	base := time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)
	out := make([]sim.TradeForSimulation, total)
	for i := 0; i < total; i++ {
		src := trades[rng.Intn(len(trades))]
		day := i / perDay
		slot := i % perDay
		entry := base.AddDate(0, 0, day).Add(time.Duration(slot) * 15 * time.Minute)

		src.ID = fmt.Sprintf("mc-%d", i)
		hold := src.ExitTime.Sub(src.EntryTime)
		if hold <= 0 || hold > 15*time.Minute {
			hold = 5 * time.Minute
		}
		src.EntryTime = entry
		src.ExitTime = entry.Add(hold)
		out[i] = src
	}
	return out
}

func (r *Runner) aggregate(outcomes []pathOutcome, balanceCents int64) Result {
	n := len(outcomes)
	finals := make([]float64, n)
	pnls := make([]float64, n)
	dds := make([]float64, n)

	ruinThreshold := r.cfg.RuinThresholdPercent
	if ruinThreshold <= 0 {
		ruinThreshold = 50
	}

	profits, ruins := 0, 0
	for i, o := range outcomes {
		finals[i] = o.finalEquity
		pnls[i] = o.netPnl
		dds[i] = o.maxDD
		if o.netPnl > 0 {
			profits++
		}
		if o.maxDD >= ruinThreshold ||
			o.finalEquity <= float64(balanceCents)*(1-ruinThreshold/100) {
			ruins++
		}
	}
	sort.Float64s(finals)
	sort.Float64s(pnls)
	sort.Float64s(dds)

	return Result{
		Iterations:          n,
		TradesPerRun:        r.cfg.tradesPerRun(),
		FinalEquityCents:    distributionOf(finals),
		NetPnlCents:         distributionOf(pnls),
		MaxDrawdownPct:      distributionOf(dds),
		ProbabilityOfProfit: float64(profits) / float64(n),
		ProbabilityOfRuin:   float64(ruins) / float64(n),
	}
}

func distributionOf(sorted []float64) Distribution {
	mean := 0.0
	for _, v := range sorted {
		mean += v
	}
	if len(sorted) > 0 {
		mean /= float64(len(sorted))
	}
	return Distribution{
		P5:   percentile(sorted, 5),
		P50:  percentile(sorted, 50),
		P95:  percentile(sorted, 95),
		Mean: mean,
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p / 100 * float64(len(sorted)-1))
	return sorted[idx]
}
