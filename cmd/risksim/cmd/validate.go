package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/risksim/policy"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a policy profile against the parameter schema",
	RunE:  runValidate,
}

var (
	vProfilePath string
	vBalance     int64
)

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&vProfilePath, "profile", "p", "", "path to policy profile JSON (required)")
	validateCmd.Flags().Int64VarP(&vBalance, "balance-cents", "b", 10_000_000, "balance used to resolve percent/R limits")

	validateCmd.MarkFlagRequired("profile")
}

func runValidate(cmd *cobra.Command, args []string) error {
	profile, err := policy.LoadProfile(vProfilePath)
	if err != nil {
		return err
	}

	params, err := profile.Params(vBalance, "UTC")
	if err != nil {
		return err
	}

	fmt.Printf("%s: valid %s profile\n", vProfilePath, params.Mode)
	fmt.Printf("  daily loss:   %s\n", dollars(params.Limits.DailyLossCents))
	fmt.Printf("  daily target: %s\n", dollars(params.Limits.DailyTargetCents))
	fmt.Printf("  weekly loss:  %s\n", dollars(params.Limits.WeeklyLossCents))
	fmt.Printf("  monthly loss: %s\n", dollars(params.Limits.MonthlyLossCents))
	return nil
}
