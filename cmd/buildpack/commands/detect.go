package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <build-dir>",
		Short: "Check whether the build directory holds an ember-cli app",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := c.app.Detect(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			// The platform reads the framework name from stdout.
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
