package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "impact",
		Short: "Glucose impact of meals, activities or insulin",
		Long: "Correlates glucose movement around anchor events: the closest reading\n" +
			"before and after each event, aggregated per group.",
		Run: runImpact,
	}

	cmd.Flags().StringP("kind", "k", "meals", "Anchor kind: meals, activities or insulin")
	cmd.Flags().StringP("group-by", "g", "", "Group key (kind-specific; default: time_of_day for meals, activity_type for activities, dose_size for insulin)")

	RootCmd.AddCommand(cmd)
}

func runImpact(cmd *cobra.Command, args []string) {
	kind, _ := cmd.Flags().GetString("kind")
	groupBy, _ := cmd.Flags().GetString("group-by")
	composer, userID := newComposer()

	payload, err := composer.Impact(userID, windowQuery(), kind, groupBy)
	if err != nil {
		exitErr("correlate events", err)
	}
	printJSON(payload)
}
