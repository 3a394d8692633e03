package nginx

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// Supervisor boots nginx for a built app: it renders the config,
// prepares auth and log plumbing, starts the server as a child and
// forwards termination signals to it.
type Supervisor struct {
	logger ports.Logger
	stdout io.Writer
}

// NewSupervisor creates a boot Supervisor writing tailed logs to
// stdout.
func NewSupervisor(logger ports.Logger, stdout io.Writer) *Supervisor {
	return &Supervisor{
		logger: logger,
		stdout: stdout,
	}
}

// Run prepares and runs nginx in the foreground. It returns when the
// server exits; a signal-initiated shutdown is not an error.
func (s *Supervisor) Run(ctx context.Context, app *domain.App, buildDir string) error {
	port := resolvePort(app)
	workers := resolveWorkers(app)

	logDir := filepath.Join(buildDir, domain.LogsDirName)
	if err := os.MkdirAll(filepath.Join(logDir, "nginx"), domain.DirPerm); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBootFailed, err)
	}

	data := ConfigData{
		Port:    port,
		Workers: workers,
		Root:    filepath.Join(buildDir, domain.DistDirName),
		LogDir:  logDir,
	}

	user := app.EnvOrOS("BASIC_AUTH_USER", "")
	password := app.EnvOrOS("BASIC_AUTH_PASSWORD", "")
	if user != "" && password != "" {
		authFile, err := WriteHtpasswd(buildDir, user, password)
		if err != nil {
			return err
		}
		data.BasicAuth = true
		data.AuthFile = authFile
		s.logger.Info("basic auth enabled for user " + user)
	}

	confPath, err := RenderConfig(buildDir, data)
	if err != nil {
		return err
	}

	// Pre-create the log files so the tailers have something to watch
	// before nginx opens them.
	accessLog := filepath.Join(logDir, "nginx", "access.log")
	errorLog := filepath.Join(logDir, "nginx", "error.log")
	for _, p := range []string{accessLog, errorLog} {
		if touchErr := touch(p); touchErr != nil {
			return fmt.Errorf("%w: %w", domain.ErrBootFailed, touchErr)
		}
	}

	tailCtx, stopTailers := context.WithCancel(ctx)
	defer stopTailers()

	var g errgroup.Group
	for _, p := range []string{accessLog, errorLog} {
		tailer, tailErr := NewTailer(p, s.stdout)
		if tailErr != nil {
			return tailErr
		}
		g.Go(func() error {
			return tailer.Run(tailCtx)
		})
	}

	s.logger.Info("starting nginx on port " + strconv.Itoa(port))
	err = s.runServer(ctx, buildDir, confPath)

	stopTailers()
	if tailErr := g.Wait(); tailErr != nil {
		s.logger.Error(tailErr)
	}

	return err
}

// runServer starts the vendored nginx binary as a child process and
// forwards SIGINT, SIGTERM and context cancellation to it. A child
// (rather than an exec replacement) keeps the tailer goroutines alive
// for the lifetime of the server. The command is deliberately not
// bound to the context: the default context kill is SIGKILL, which
// would deny nginx its shutdown.
func (s *Supervisor) runServer(ctx context.Context, buildDir, confPath string) error {
	binary := filepath.Join(domain.VendorPath(buildDir, "nginx"), "sbin", "nginx")
	prefix := domain.VendorPath(buildDir, "nginx")

	cmd := exec.Command(binary, "-p", prefix, "-c", confPath) //nolint:gosec // vendored binary installed by the compile phase
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stdout
	cmd.Dir = buildDir

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBootFailed, err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	waitCh := make(chan error, 1)
	go func() {
		waitCh <- cmd.Wait()
	}()

	done := ctx.Done()
	for {
		select {
		case sig := <-signals:
			// nginx treats SIGTERM as fast shutdown.
			_ = cmd.Process.Signal(sig)
		case <-done:
			_ = cmd.Process.Signal(syscall.SIGTERM)
			done = nil
		case err := <-waitCh:
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok && signalled(exitErr) {
					return nil
				}
				return fmt.Errorf("%w: %w", domain.ErrBootFailed, err)
			}
			return nil
		}
	}
}

func signalled(err *exec.ExitError) bool {
	status, ok := err.Sys().(syscall.WaitStatus)
	return ok && status.Signaled()
}

func resolvePort(app *domain.App) int {
	raw := app.EnvOrOS("PORT", "")
	if raw == "" {
		return domain.DefaultPort
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 {
		return domain.DefaultPort
	}
	return port
}

func resolveWorkers(app *domain.App) int {
	raw := app.EnvOrOS("NGINX_WORKERS", "")
	if raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			return n
		}
	}
	return runtime.NumCPU()
}

func touch(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, domain.FilePerm) //nolint:gosec // log paths are buildpack-chosen
	if err != nil {
		return err
	}
	return f.Close()
}
