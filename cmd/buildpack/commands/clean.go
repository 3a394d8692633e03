package commands

import (
	"github.com/spf13/cobra"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean <cache-dir>",
		Short: "Remove cached runtimes and dependency trees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtimes, _ := cmd.Flags().GetBool("runtimes")
			packages, _ := cmd.Flags().GetBool("packages")

			// No selection cleans everything.
			if !runtimes && !packages {
				runtimes = true
				packages = true
			}

			return c.app.Clean(cmd.Context(), args[0], app.CleanOptions{
				Runtimes: runtimes,
				Packages: packages,
			})
		},
	}
	cmd.Flags().Bool("runtimes", false, "Remove cached node and nginx installs")
	cmd.Flags().Bool("packages", false, "Remove cached dependency trees and state")
	return cmd
}
