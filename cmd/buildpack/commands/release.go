package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newReleaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release <build-dir>",
		Short: "Print the release metadata for the built app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.Release(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
