package shell

import (
	"bufio"
	"os"
	"path/filepath"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

const npmDebugLogName = "npm-debug.log"

// DumpNPMDebugLog surfaces npm's debug log after a failed install.
// npm buries the actual failure there while printing only a generic
// error to the terminal.
func DumpNPMDebugLog(dir string, logger ports.Logger) {
	path := filepath.Join(dir, npmDebugLogName)
	f, err := os.Open(path) //nolint:gosec // path is the build directory chosen by the platform
	if err != nil {
		return
	}
	defer func() {
		_ = f.Close()
	}()

	logger.Warn("contents of " + npmDebugLogName + ":")
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		logger.Warn(scanner.Text())
	}
}
