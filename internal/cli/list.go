package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"reviewboard/internal/client"
)

func newListCmd() *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviews",
		Long:  "List reviews, optionally filtered by a search term.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "case-insensitive search over author, product and content")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "newest, oldest, rating_desc or rating_asc")
	cmd.Flags().IntVar(&opts.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "page size (server default when 0)")

	return cmd
}

func runList(cmd *cobra.Command, opts client.ListOptions) error {
	c, err := newAPIClient()
	if err != nil {
		return err
	}

	result, err := c.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, result)
	}

	if err := printReviewTable(out, result.Data); err != nil {
		return err
	}
	p := result.Pagination
	fmt.Fprintf(out, "Page %d of %d (%d reviews)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

func printReviewTable(out io.Writer, reviews []client.Review) error {
	if len(reviews) == 0 {
		fmt.Fprintln(out, "No reviews found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tPRODUCT\tRATING\tAUTHOR\tPOSTED"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, r := range reviews {
		if _, err := fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n",
			r.ID, r.Product, r.Rating, r.Author, r.CreatedAt.Local().Format("2006-01-02 15:04")); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return w.Flush()
}
