package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/risksim/config"
	"github.com/rustyeddy/risksim/internal/id"
	"github.com/rustyeddy/risksim/journal"
	"github.com/rustyeddy/risksim/policy"
	"github.com/rustyeddy/risksim/sim"
	"github.com/rustyeddy/risksim/tradelog"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a trade log through a policy profile",
	Long: `Replay runs one simulation: every trade in the log is either executed
under the profile's risk sizing or skipped with a reason, and the
original vs. simulated performance is compared.

Example:
  risksim replay --trades trades.csv --profile aggressive.json --balance-cents 10000000`,
	RunE: runReplay,
}

var (
	rpTradesPath  string
	rpProfilePath string
	rpConfigPath  string
	rpBalance     int64
	rpTimezone    string
	rpNoJournal   bool
)

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&rpTradesPath, "trades", "t", "", "path to trade log (.csv, .csv.xz or .zip) (required)")
	replayCmd.Flags().StringVarP(&rpProfilePath, "profile", "p", "", "path to policy profile JSON (required)")
	replayCmd.Flags().StringVarP(&rpConfigPath, "config", "c", "", "path to app config (YAML or JSON)")
	replayCmd.Flags().Int64VarP(&rpBalance, "balance-cents", "b", 0, "starting balance in cents (overrides config)")
	replayCmd.Flags().StringVar(&rpTimezone, "timezone", "", "IANA timezone for day/week boundaries (overrides config)")
	replayCmd.Flags().BoolVar(&rpNoJournal, "no-journal", false, "skip journaling this run")

	replayCmd.MarkFlagRequired("trades")
	replayCmd.MarkFlagRequired("profile")
}

func loadConfig() (*config.Config, error) {
	if rpConfigPath == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(rpConfigPath)
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.RunsFile, cfg.Journal.TradesFile)
	default:
		return nil, nil
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	balance := cfg.Account.BalanceCents
	if rpBalance > 0 {
		balance = rpBalance
	}
	tz := cfg.Account.Timezone
	if rpTimezone != "" {
		tz = rpTimezone
	}

	profile, err := policy.LoadProfile(rpProfilePath)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}
	params, err := profile.Params(balance, tz)
	if err != nil {
		return fmt.Errorf("profile: %w", err)
	}

	trades, err := tradelog.Load(rpTradesPath)
	if err != nil {
		return fmt.Errorf("trade log: %w", err)
	}
	if len(trades) == 0 {
		return fmt.Errorf("trade log %s has no trades", rpTradesPath)
	}

	result := sim.Run(trades, params)
	runID := id.New()

	if !rpNoJournal {
		j, err := openJournal(cfg)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		if j != nil {
			defer j.Close()
			if err := j.RecordRun(journal.NewRunRecord(runID, result)); err != nil {
				return fmt.Errorf("journal run: %w", err)
			}
			if err := j.RecordTrades(runID, result.Trades); err != nil {
				return fmt.Errorf("journal trades: %w", err)
			}
		}
	}

	printSummary(runID, result)
	return nil
}

func printSummary(runID string, res sim.RiskSimulationResult) {
	s := res.Summary

	fmt.Printf("Run %s (%s mode, %d trades %s → %s)\n\n",
		runID, res.Params.Mode, s.TotalTrades,
		res.StartDate.Format("2006-01-02"), res.EndDate.Format("2006-01-02"))

	fmt.Printf("  Executed: %d   Skipped: %d\n", s.ExecutedTrades, s.TotalTrades-s.ExecutedTrades)
	for _, status := range sim.SkipStatuses {
		if n := s.SkipCounts[status]; n > 0 {
			fmt.Printf("    %-28s %d\n", status, n)
		}
	}

	fmt.Printf("\n  %-22s %14s %14s\n", "", "original", "simulated")
	fmt.Printf("  %-22s %14s %14s\n", "Net P/L",
		dollars(s.Original.TotalPnlCents), dollars(s.Simulated.TotalPnlCents))
	fmt.Printf("  %-22s %13.1f%% %13.1f%%\n", "Win rate", s.Original.WinRate, s.Simulated.WinRate)
	fmt.Printf("  %-22s %14.2f %14.2f\n", "Profit factor", s.Original.ProfitFactor, s.Simulated.ProfitFactor)
	fmt.Printf("  %-22s %13.1f%% %13.1f%%\n", "Max drawdown", s.Original.MaxDrawdownPercent, s.Simulated.MaxDrawdownPercent)
	fmt.Printf("  %-22s %14.2f %14.2f\n", "Avg R", s.Original.AvgR, s.Simulated.AvgR)

	fmt.Printf("\n  P/L delta: %s   Days at limit: %d   Days at target: %d\n",
		dollars(s.PnlDeltaCents), s.DaysHitDailyLimit, s.DaysHitDailyTarget)
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
