// Package detector provides environment detection for output styling.
package detector

import (
	"os"

	"golang.org/x/term"
)

// OutputMode selects how build output is styled.
type OutputMode int

const (
	// ModePlain emits unstyled or basic ANSI output for build logs
	// captured by the platform.
	ModePlain OutputMode = iota
	// ModePretty emits full styling for a developer terminal.
	ModePretty
)

// DetectEnvironment picks the output mode. Builds on a dyno or in CI
// are never a TTY, and NO_COLOR always wins.
func DetectEnvironment() OutputMode {
	if os.Getenv("NO_COLOR") != "" {
		return ModePlain
	}

	if os.Getenv("DYNO") != "" {
		return ModePlain
	}

	ci := os.Getenv("CI")
	if ci == "true" || ci == "1" {
		return ModePlain
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return ModePlain
	}

	return ModePretty
}
