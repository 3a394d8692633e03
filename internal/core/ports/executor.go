package ports

import (
	"context"
	"io"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
)

// Executor defines the interface for running external tools (npm, bower,
// ember, nginx).
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the command and waits for it to complete.
	//
	// The env parameter contains the full build environment in "KEY=VALUE"
	// format; cmd.Env entries override it. Subprocess output is streamed
	// to stdout/stderr as it is produced.
	//
	// A non-zero exit attaches the exit code to the returned error chain.
	Execute(ctx context.Context, cmd *domain.Command, env []string, stdout, stderr io.Writer) error
}
