package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Full analytics report",
		Long:  "Runs the whole pipeline once and emits the combined report as JSON.",
		Run:   runReport,
	}
	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
	composer, userID := newComposer()

	dashboard, err := composer.Compose(userID, windowQuery())
	if err != nil {
		exitErr("compose report", err)
	}
	printJSON(dashboard)
}
