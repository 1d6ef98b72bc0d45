package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paramsearch/pkg/sdk"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	Page    int
	PerPage int
	Fields  []string
	JSON    bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search <index> [query|-]",
		Short: "Run a search on the server",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 2 || opts.JSON {
				var err error
				if input, err = readInput(cmd, args[1:]); err != nil {
					return err
				}
			}
			return runSearch(cmd, opts, args[0], input)
		},
	}

	cmd.Flags().IntVarP(&opts.Page, "page", "p", 0, "page number")
	cmd.Flags().IntVarP(&opts.PerPage, "per-page", "n", 0, "page size")
	cmd.Flags().StringSliceVarP(&opts.Fields, "fields", "f", nil, "fields to return")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "input is a JSON object (POST)")

	return cmd
}

func runSearch(cmd *cobra.Command, opts *SearchOptions, index, input string) error {
	c, err := opts.client()
	if err != nil {
		return err
	}
	callOpts := []sdk.CallOption{sdk.Page(opts.Page), sdk.PerPage(opts.PerPage), sdk.Fields(opts.Fields...)}

	var res *sdk.SearchResponse
	if opts.JSON {
		m, perr := parseOrdered(input)
		if perr != nil {
			return perr
		}
		res, err = c.SearchParams(cmd.Context(), index, m, callOpts...)
	} else {
		res, err = c.Search(cmd.Context(), index, input, callOpts...)
	}
	if err != nil {
		return err
	}

	if opts.Format == "json" {
		return printJSON(cmd.OutOrStdout(), res)
	}
	printResults(cmd.OutOrStdout(), res)
	return nil
}

func printResults(w io.Writer, res *sdk.SearchResponse) {
	p := res.Pagination
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s: %d entries, page %d of %d",
		res.Index, p.TotalEntries, p.CurrentPage, p.TotalPages)))
	fmt.Fprintln(w)

	if len(res.Records) == 0 {
		fmt.Fprintln(w, metaStyle.Render("No records"))
	}
	for _, r := range res.Records {
		title := keyStyle.Render("#"+r.ID) + " " + metaStyle.Render("score "+strconv.FormatFloat(r.Score, 'f', -1, 64))
		body := title
		if len(r.Fields) > 0 {
			body += "\n" + fieldLines(r.Fields)
		}
		fmt.Fprintln(w, blockStyle.Render(body))
	}
	if len(res.Dropped) > 0 {
		fmt.Fprintln(w, metaStyle.Render("dropped: "+dropped(res.Dropped)))
	}
}
