package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a review you posted",
		Long:  "Delete a review you posted from this machine and forget its ownership token.",
		Args:  cobra.ExactArgs(1),
		RunE:  runDelete,
	}
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseReviewID(args[0])
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	if err := c.Delete(cmd.Context(), id); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]any{
			"id":      id,
			"deleted": true,
		})
	}

	fmt.Fprintf(out, "Review #%d deleted.\n", id)
	return nil
}
