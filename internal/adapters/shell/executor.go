// Package shell provides a pty-backed executor for build commands.
package shell

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/creack/pty"
	"go.trai.ch/zerr"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

var _ ports.Executor = (*Executor)(nil)

// Executor implements ports.Executor using os/exec and pty. npm and
// ember emit progress output only when attached to a terminal, so
// commands run under a pseudo-terminal.
type Executor struct {
	logger ports.Logger
}

// NewExecutor creates a new Executor.
func NewExecutor(logger ports.Logger) *Executor {
	return &Executor{
		logger: logger,
	}
}

// Execute runs cmd and waits for it to complete. Output goes to the
// structured logger and to the stdout writer (a pty merges stdout and
// stderr into one stream). env entries override inherited variables;
// PATH entries are prepended to the inherited PATH.
func (e *Executor) Execute(
	ctx context.Context,
	cmd *domain.Command,
	env []string,
	stdout, _ io.Writer,
) error {
	if len(cmd.Argv) == 0 {
		return nil
	}

	name := cmd.Argv[0]
	args := cmd.Argv[1:]

	cmdEnv := resolveEnvironment(os.Environ(), env, cmd.Env)

	// Resolve against the merged PATH so a vendored node wins over a
	// system one.
	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, cmdEnv); err == nil {
			executable = lp
		}
	}

	proc := exec.CommandContext(ctx, executable, args...) //nolint:gosec // build commands come from the buildpack itself
	if len(proc.Args) > 0 {
		proc.Args[0] = name
	}
	if cmd.Dir != "" {
		proc.Dir = cmd.Dir
	}
	proc.Env = cmdEnv

	outLog := &logWriter{logger: e.logger}
	out := io.MultiWriter(outLog, stdout)

	ptmx, err := pty.Start(proc)
	if err != nil {
		return zerr.With(fmt.Errorf("%w: %w", domain.ErrCommandFailed, err), "command", name)
	}

	ioDone := make(chan struct{})
	go func() {
		defer close(ioDone)
		defer func() { _ = ptmx.Close() }()
		defer func() { _ = outLog.Close() }()

		_, _ = io.Copy(out, ptmx)
	}()

	waitErr := proc.Wait()
	<-ioDone

	if waitErr != nil {
		var exitCode int
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
		cmdErr := fmt.Errorf("%w: %w", domain.ErrCommandFailed, waitErr)
		cmdErr = zerr.With(cmdErr, "command", strings.Join(cmd.Argv, " "))
		return zerr.With(cmdErr, "exit_code", exitCode)
	}

	return nil
}

// logWriter buffers pty output and forwards complete lines to the
// logger.
type logWriter struct {
	logger ports.Logger
	buf    []byte
}

func (w *logWriter) Write(p []byte) (n int, err error) {
	w.buf = append(w.buf, p...)

	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}

		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}

	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	w.logger.Debug(msg)
}

// allowListedEnvVars are the system variables build commands inherit.
// Everything else comes from the app's env dir so that builds do not
// depend on ambient dyno state.
var allowListedEnvVars = map[string]struct{}{
	"HOME": {},
	"TERM": {},
	"USER": {},
	"PATH": {},
	"LANG": {},
}

// resolveEnvironment merges environments with increasing priority:
// allow-listed system vars, then buildEnv (PATH prepended), then
// per-command overrides.
func resolveEnvironment(sysEnv, buildEnv []string, cmdEnv map[string]string) []string {
	envMap := filterSystemEnv(sysEnv)
	applyBuildEnv(envMap, buildEnv)

	for k, v := range cmdEnv {
		envMap[k] = v
	}

	result := make([]string, 0, len(envMap))
	for k, v := range envMap {
		result = append(result, k+"="+v)
	}
	return result
}

func filterSystemEnv(sysEnv []string) map[string]string {
	envMap := make(map[string]string)
	for _, entry := range sysEnv {
		k, v, ok := strings.Cut(entry, "=")
		if ok {
			if _, allowed := allowListedEnvVars[k]; allowed {
				envMap[k] = v
			}
		}
	}
	return envMap
}

func applyBuildEnv(envMap map[string]string, buildEnv []string) {
	for _, entry := range buildEnv {
		k, v, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if k == "PATH" {
			if sysPath, exists := envMap["PATH"]; exists && sysPath != "" {
				envMap[k] = v + string(os.PathListSeparator) + sysPath
			} else {
				envMap[k] = v
			}
			continue
		}
		envMap[k] = v
	}
}

// lookPath searches for an executable in the directories named by the
// PATH entry of env.
func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if strings.HasPrefix(e, "PATH=") {
			path = strings.TrimPrefix(e, "PATH=")
			break
		}
	}

	if path == "" {
		return "", exec.ErrNotFound
	}

	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if err := findExecutable(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func findExecutable(file string) error {
	d, err := os.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0o111 != 0 {
		return nil
	}
	return os.ErrPermission
}
