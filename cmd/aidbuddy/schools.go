package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy/pkg/adapters/scorecard"
)

var schoolsCmd = &cobra.Command{
	Use:   "schools <name>",
	Short: "Look up published tuition from the College Scorecard",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		if cfg.Scorecard.APIKey == "" {
			return errors.New("set AIDBUDDY_SCORECARD_API_KEY (an api.data.gov key) to look up schools")
		}

		client := scorecard.New(cfg.Scorecard.APIKey,
			scorecard.WithURL(cfg.Scorecard.URL),
			scorecard.WithTimeout(cfg.Scorecard.Timeout),
		)
		schools, err := client.Search(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		if len(schools) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No schools found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLOCATION\tIN-STATE\tOUT-OF-STATE")
		for _, s := range schools {
			fmt.Fprintf(w, "%s\t%s, %s\t%s\t%s\n", s.Name, s.City, s.State, dollars(s.TuitionInState), dollars(s.TuitionOutOfState))
		}
		return w.Flush()
	},
}

func dollars(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("$%d", *v)
}

func init() {
	rootCmd.AddCommand(schoolsCmd)
	schoolsCmd.Flags().Int("limit", scorecard.DefaultLimit, "Maximum number of results")
}
