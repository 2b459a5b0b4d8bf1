package cli

import (
	"github.com/spf13/cobra"

	"github.com/mwalther/diametrics/internal/notify"
)

func init() {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Heuristic pattern insights",
		Long:  "Evaluates the threshold rule table over the window's metrics.",
		Run:   runInsights,
	}

	cmd.Flags().BoolP("notify", "n", false, "Send desktop notifications for alerts")
	cmd.Flags().Bool("notify-medium", false, "Also notify medium-priority insights")

	RootCmd.AddCommand(cmd)
}

func runInsights(cmd *cobra.Command, args []string) {
	sendNotifications, _ := cmd.Flags().GetBool("notify")
	includeMedium, _ := cmd.Flags().GetBool("notify-medium")
	composer, userID := newComposer()

	payload, err := composer.Insights(userID, windowQuery())
	if err != nil {
		exitErr("evaluate insights", err)
	}
	printJSON(payload)

	if sendNotifications {
		manager := notify.NewManager(0, includeMedium)
		if _, err := manager.Notify(payload.Insights); err != nil {
			exitErr("send notifications", err)
		}
	}
}
