package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "agp",
		Short: "Ambulatory glucose profile",
		Long:  "Bins readings by time of day and reports per-bin percentile statistics.",
		Run:   runAGP,
	}

	cmd.Flags().IntP("interval", "i", 0, "Bin width in minutes (default: configured, 30)")

	RootCmd.AddCommand(cmd)
}

func runAGP(cmd *cobra.Command, args []string) {
	interval, _ := cmd.Flags().GetInt("interval")
	composer, userID := newComposer()

	payload, err := composer.AGP(userID, windowQuery(), interval)
	if err != nil {
		exitErr("compute AGP", err)
	}
	printJSON(payload)
}
