package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/paramsearch/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the psq version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), version.Get())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "psq "+version.String())
			return err
		},
	}
}
