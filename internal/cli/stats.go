package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <product>",
		Short: "Show the average rating of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newAPIClient()
			if err != nil {
				return err
			}

			stats, err := c.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if isJSON() {
				return printJSON(out, stats)
			}
			fmt.Fprintf(out, "%s: %.2f/5 from %d reviews\n", stats.Product, stats.AverageRating, stats.ReviewCount)
			return nil
		},
	}
}
