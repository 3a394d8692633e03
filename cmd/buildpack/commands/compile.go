package commands

import (
	"github.com/spf13/cobra"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/app"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

func (c *CLI) newCompileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <build-dir> <cache-dir> [env-dir]",
		Short: "Build the app: vendor node and nginx, install dependencies, run ember build",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs := domain.Dirs{
				Build: args[0],
				Cache: args[1],
			}
			if len(args) == 3 {
				dirs.Env = args[2]
			}

			parallelism, _ := cmd.Flags().GetInt("parallelism")
			rebuild, _ := cmd.Flags().GetBool("rebuild")

			return c.app.Compile(cmd.Context(), dirs, app.CompileOptions{
				Parallelism: parallelism,
				Rebuild:     rebuild,
			})
		},
	}
	cmd.Flags().IntP("parallelism", "p", 0, "Maximum concurrently running build steps (0 = one per CPU)")
	cmd.Flags().Bool("rebuild", false, "Discard all caches before building (same as REBUILD_ALL=1)")
	return cmd
}
