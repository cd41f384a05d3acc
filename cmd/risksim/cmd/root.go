package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "risksim",
	Short: "Replay a trade log through an alternate money-management policy",
	Long: `Risksim replays a historical trade log through a configurable
risk-sizing policy and reports the counterfactual outcome.

It provides tools for:
  - Replaying a trade log against simple or decision-tree policies
  - Comparing original vs. simulated equity, drawdown and win rate
  - Monte Carlo batches over bootstrap-resampled trade sequences
  - Journaling runs to SQLite or CSV for later audit
  - Validating policy profiles against the parameter schema`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; missing files are fine.
		_ = godotenv.Load()

		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (development) logging")
}
