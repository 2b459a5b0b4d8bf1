package cli

import "github.com/spf13/cobra"

func init() {
	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "Hypo/hyperglycemia episodes",
		Long:  "Segments readings into contiguous out-of-range episodes with gap tolerance.",
		Run:   runEpisodes,
	}

	cmd.Flags().Float64("hypo", 0, "Hypoglycemia threshold in mg/dL (default: configured, 70)")
	cmd.Flags().Float64("hyper", 0, "Hyperglycemia threshold in mg/dL (default: configured, 180)")
	cmd.Flags().Int("max-gap", 0, "Maximum reading gap in minutes before an episode splits (default: configured, 60)")

	RootCmd.AddCommand(cmd)
}

func runEpisodes(cmd *cobra.Command, args []string) {
	hypo, _ := cmd.Flags().GetFloat64("hypo")
	hyper, _ := cmd.Flags().GetFloat64("hyper")
	maxGap, _ := cmd.Flags().GetInt("max-gap")
	composer, userID := newComposer()

	payload, err := composer.Episodes(userID, windowQuery(), hypo, hyper, maxGap)
	if err != nil {
		exitErr("segment episodes", err)
	}
	printJSON(payload)
}
