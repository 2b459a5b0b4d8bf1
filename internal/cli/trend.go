package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "trend",
		Short: "Moving average and trend classification",
		Run:   runTrend,
	}

	cmd.Flags().IntP("window-size", "k", 0, "Moving average window in readings (default: configured, 5)")

	RootCmd.AddCommand(cmd)
}

func runTrend(cmd *cobra.Command, args []string) {
	windowSize, _ := cmd.Flags().GetInt("window-size")
	composer, userID := newComposer()

	payload, err := composer.Trend(userID, windowQuery(), windowSize)
	if err != nil {
		exitErr("compute trend", err)
	}
	printJSON(payload)
}
