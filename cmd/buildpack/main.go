// Package main is the entry point for the ember-cli buildpack.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/cmd/buildpack/commands"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/app"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/wiring"
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, cleanup, err := provider(ctx)
	if err != nil {
		// Logger is not available when initialization failed.
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return 1
	}
	defer cleanup()

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		// Detection misses are the platform's cue to try the next
		// buildpack; the failure itself is not worth logging.
		if errors.Is(err, domain.ErrNotEmberApp) || errors.Is(err, domain.ErrNoPackageJSON) {
			return 1
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
