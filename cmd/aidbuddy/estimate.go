package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy/internal/cli"
	"github.com/aretw0/aidbuddy/pkg/bands"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate a Pell Grant range without a conversation",
	Example: `  aidbuddy estimate --household 3 --income 20_40k --assets 1_5k --independent
  aidbuddy estimate --household 4 --income under_20k --assets under_1k --enrollment half_time --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		in := estimate.Input{}
		in.HouseholdSize, _ = f.GetInt("household")
		in.IncomeBand, _ = f.GetString("income")
		in.AssetBand, _ = f.GetString("assets")
		in.Independent, _ = f.GetBool("independent")
		in.AwardYear, _ = f.GetString("award-year")
		enrollment, _ := f.GetString("enrollment")
		in.Enrollment = domain.Enrollment(enrollment)
		asJSON, _ := f.GetBool("json")

		engine, closeStore, err := cli.NewEngine(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer closeStore()

		res, err := engine.Estimate(cmd.Context(), in)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}
		fmt.Fprintf(out, "Award year:  %s (%s)\n", res.AwardYear, res.Enrollment)
		fmt.Fprintf(out, "Likelihood:  %s\n", res.Likelihood)
		fmt.Fprintf(out, "Pell range:  %s\n", res.FormatRange())
		fmt.Fprintf(out, "Need band:   %s\n\n", res.SAIBand)
		fmt.Fprintln(out, res.Disclaimer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
	f := estimateCmd.Flags()
	f.Int("household", 0, "Household size (1-20)")
	f.String("income", "", fmt.Sprintf("Income band key %v", bands.Keys(bands.Income)))
	f.String("assets", "", fmt.Sprintf("Assets band key %v", bands.Keys(bands.Assets)))
	f.Bool("independent", false, "Independent for FAFSA purposes")
	f.String("award-year", "", "Award year (default "+domain.DefaultAwardYear+")")
	f.String("enrollment", "", "full_time, three_quarter, half_time or less_than_half")
	f.Bool("json", false, "Print the result as JSON")
	_ = estimateCmd.MarkFlagRequired("household")
	_ = estimateCmd.MarkFlagRequired("income")
	_ = estimateCmd.MarkFlagRequired("assets")
}
