package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "variability",
		Short: "Glucose variability metrics",
		Long:  "Computes mean, SD, CV and GMI with optional clinical interpretation.",
		Run:   runVariability,
	}

	cmd.Flags().BoolP("explain", "e", true, "Include per-metric interpretation text")

	RootCmd.AddCommand(cmd)
}

func runVariability(cmd *cobra.Command, args []string) {
	explain, _ := cmd.Flags().GetBool("explain")
	composer, userID := newComposer()

	payload, err := composer.Variability(userID, windowQuery(), explain)
	if err != nil {
		exitErr("compute variability", err)
	}
	printJSON(payload)
}
