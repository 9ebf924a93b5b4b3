package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"reviewboard/internal/client"
)

func newAddCmd() *cobra.Command {
	var in client.ReviewInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Post a review",
		Long:  "Post a review. The ownership token returned by the server is saved locally.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, in)
		},
	}

	cmd.Flags().StringVar(&in.Author, "author", "", "display name (1-30 chars)")
	cmd.Flags().StringVar(&in.Product, "product", "", "product name (1-50 chars)")
	cmd.Flags().IntVar(&in.Rating, "rating", 0, "rating from 1 to 5")
	cmd.Flags().StringVar(&in.Content, "content", "", "review text (3-500 chars)")
	for _, name := range []string{"author", "product", "rating", "content"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runAdd(cmd *cobra.Command, in client.ReviewInput) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	result, err := c.Create(cmd.Context(), in)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, map[string]any{
			"id":        result.ID,
			"duplicate": result.Duplicate,
		})
	}

	if result.Duplicate {
		fmt.Fprintf(out, "Identical review already posted as #%d.\n", result.ID)
		return nil
	}
	fmt.Fprintf(out, "Review #%d posted.\n", result.ID)
	return nil
}
