package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewFieldsCommand creates the fields command.
func NewFieldsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fields <index>",
		Short: "List the declared fields of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			res, err := c.Fields(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				return printJSON(w, res)
			}
			fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%s (%s)", res.Index, res.Locale)))
			for _, f := range res.Fields {
				fmt.Fprintf(w, "%s %s %s\n", keyStyle.Render(f.Name), metaStyle.Render(f.Type), f.Label)
			}
			return nil
		},
	}
}

// NewHealthCommand creates the health command.
func NewHealthCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := opts.client()
			if err != nil {
				return err
			}
			h, err := c.Health(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				if err := printJSON(w, h); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(w, headerStyle.Render(h.Status))
				fmt.Fprintln(w, fieldLines(h.Checks))
			}
			if h.Status != "ok" {
				return fmt.Errorf("server is %s", h.Status)
			}
			return nil
		},
	}
}
