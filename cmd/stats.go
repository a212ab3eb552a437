package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/phillip/donation-hub-go/services"
)

func newStatsCmd() *cobra.Command {
	var pretty bool
	c := &cobra.Command{
		Use:   "stats [organization-id]",
		Short: "Print an organization's donation totals as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			history := services.NewHistoryService(st, logger.Named("history"))
			stats, err := history.GetOrganizationCampaignDonationsStats(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(stats)
		},
	}
	c.Flags().BoolVar(&pretty, "pretty", false, "indent output")
	return c
}
