package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "range",
		Short: "Time-in-range classification",
		Long:  "Classifies readings into the five clinical bands and reports counts.",
		Run:   runRange,
	}

	cmd.Flags().BoolP("percentage", "p", true, "Include per-band percentages")

	RootCmd.AddCommand(cmd)
}

func runRange(cmd *cobra.Command, args []string) {
	withPercentages, _ := cmd.Flags().GetBool("percentage")
	composer, userID := newComposer()

	payload, err := composer.Range(userID, windowQuery(), withPercentages)
	if err != nil {
		exitErr("classify ranges", err)
	}
	printJSON(payload)
}
