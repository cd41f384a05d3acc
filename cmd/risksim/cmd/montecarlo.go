package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/risksim/montecarlo"
	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/tradelog"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run a Monte Carlo batch over bootstrap-resampled sequences",
	Long: `Montecarlo resamples the historical trade log into many synthetic
sequences, replays each one through the policy, and reports outcome
distributions (final equity, max drawdown, probability of ruin).

Example:
  risksim montecarlo --trades trades.csv --profile aggressive.json --sims 2000 --num-trades 250`,
	RunE: runMonteCarlo,
}

var (
	mcTradesPath    string
	mcProfilePath   string
	mcConfigPath    string
	mcBalance       int64
	mcSims          int
	mcNumTrades     int
	mcDayStructured bool
	mcTradesPerDay  int
	mcDays          int
	mcSeed          int64
	mcWorkers       int
)

func init() {
	rootCmd.AddCommand(montecarloCmd)

	montecarloCmd.Flags().StringVarP(&mcTradesPath, "trades", "t", "", "path to trade log (.csv, .csv.xz or .zip) (required)")
	montecarloCmd.Flags().StringVarP(&mcProfilePath, "profile", "p", "", "path to policy profile JSON (required)")
	montecarloCmd.Flags().StringVarP(&mcConfigPath, "config", "c", "", "path to app config (YAML or JSON)")
	montecarloCmd.Flags().Int64VarP(&mcBalance, "balance-cents", "b", 0, "starting balance in cents (overrides config)")

	montecarloCmd.Flags().IntVar(&mcSims, "sims", 0, "number of simulations (overrides config)")
	montecarloCmd.Flags().IntVar(&mcNumTrades, "num-trades", 0, "trades per synthetic sequence (flat variant)")
	montecarloCmd.Flags().BoolVar(&mcDayStructured, "day-structured", false, "use the day-structured variant")
	montecarloCmd.Flags().IntVar(&mcTradesPerDay, "trades-per-day", 0, "trades per day (day-structured variant)")
	montecarloCmd.Flags().IntVar(&mcDays, "days", 0, "days per sequence (day-structured variant)")
	montecarloCmd.Flags().Int64Var(&mcSeed, "seed", 0, "batch seed (overrides config)")
	montecarloCmd.Flags().IntVar(&mcWorkers, "workers", 0, "parallel workers (overrides config)")

	montecarloCmd.MarkFlagRequired("trades")
	montecarloCmd.MarkFlagRequired("profile")
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	rpConfigPath = mcConfigPath
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	balance := cfg.Account.BalanceCents
	if mcBalance > 0 {
		balance = mcBalance
	}

	mc := cfg.MonteCarlo
	if mcSims > 0 {
		mc.Simulations = mcSims
	}
	if mcNumTrades > 0 {
		mc.NumTrades = mcNumTrades
	}
	if mcDayStructured {
		mc.DayStructured = true
	}
	if mcTradesPerDay > 0 {
		mc.TradesPerDay = mcTradesPerDay
	}
	if mcDays > 0 {
		mc.Days = mcDays
	}
	if mcSeed != 0 {
		mc.Seed = mcSeed
	}
	if mcWorkers > 0 {
		mc.Workers = mcWorkers
	}

	profile, err := policy.LoadProfile(mcProfilePath)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	params, err := profile.Params(balance, cfg.Account.Timezone)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	trades, err := tradelog.Load(mcTradesPath)
	if err != nil {
		return fmt.Errorf("trade log: %w", err)
	}

	runner := montecarlo.NewRunner(mc, logger)
	result, err := runner.Run(cmd.Context(), trades, params)
	if err != nil {
		return err
	}

	fmt.Printf("Monte Carlo: %d runs × %d trades\n\n", result.Iterations, result.TradesPerRun)
	fmt.Printf("  %-18s %12s %12s %12s %12s\n", "", "p5", "p50", "p95", "mean")
	printDist("Final equity", result.FinalEquityCents, true)
	printDist("Net P/L", result.NetPnlCents, true)
	printDist("Max drawdown %", result.MaxDrawdownPct, false)
	fmt.Printf("\n  Probability of profit: %.1f%%\n", result.ProbabilityOfProfit*100)
	fmt.Printf("  Probability of ruin:   %.1f%%\n", result.ProbabilityOfRuin*100)
	return nil
}

func printDist(label string, d montecarlo.Distribution, money bool) {
	if money {
		fmt.Printf("  %-18s %12s %12s %12s %12s\n", label,
			dollars(int64(d.P5)), dollars(int64(d.P50)), dollars(int64(d.P95)), dollars(int64(d.Mean)))
		return
	}
	fmt.Printf("  %-18s %12.2f %12.2f %12.2f %12.2f\n", label, d.P5, d.P50, d.P95, d.Mean)
}
