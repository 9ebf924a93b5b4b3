package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"reviewboard/internal/client"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one review",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := parseReviewID(args[0])
	if err != nil {
		return err
	}

	c, err := newAPIClient()
	if err != nil {
		return err
	}

	review, err := c.Get(cmd.Context(), id)
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

func printReview(out io.Writer, r *client.Review) {
	fmt.Fprintf(out, "Review #%d\n", r.ID)
	fmt.Fprintf(out, "  Product: %s\n", r.Product)
	fmt.Fprintf(out, "  Rating:  %d/5\n", r.Rating)
	fmt.Fprintf(out, "  Author:  %s\n", r.Author)
	fmt.Fprintf(out, "  Posted:  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "\n%s\n", r.Content)
}

func parseReviewID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid review ID: %s", arg)
	}
	return id, nil
}
