package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"reviewboard/internal/client"
)

func newEditCmd() *cobra.Command {
	var (
		author, product, content string
		rating                   int
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a review you posted",
		Long:  "Edit a review you posted from this machine. Only the given flags are changed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseReviewID(args[0])
			if err != nil {
				return err
			}

			var patch client.ReviewPatch
			flags := cmd.Flags()
			if flags.Changed("author") {
				patch.Author = &author
			}
			if flags.Changed("product") {
				patch.Product = &product
			}
			if flags.Changed("rating") {
				patch.Rating = &rating
			}
			if flags.Changed("content") {
				patch.Content = &content
			}
			if patch == (client.ReviewPatch{}) {
				return errors.New("nothing to update: pass at least one of --author, --product, --rating, --content")
			}

			return runEdit(cmd, id, patch)
		},
	}

	cmd.Flags().StringVar(&author, "author", "", "new display name")
	cmd.Flags().StringVar(&product, "product", "", "new product name")
	cmd.Flags().IntVar(&rating, "rating", 0, "new rating from 1 to 5")
	cmd.Flags().StringVar(&content, "content", "", "new review text")

	return cmd
}

func runEdit(cmd *cobra.Command, id int64, patch client.ReviewPatch) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	review, err := c.Update(cmd.Context(), id, patch)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, review)
	}
	printReview(out, review)
	return nil
}
