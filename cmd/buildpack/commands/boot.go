package commands

import (
	"os"

	"github.com/spf13/cobra"
)

func (c *CLI) newBootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "boot [app-dir]",
		Short: "Start nginx serving the built app",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appDir := ""
			if len(args) == 1 {
				appDir = args[0]
			}
			if appDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				appDir = wd
			}
			return c.app.Boot(cmd.Context(), appDir)
		},
	}
}
