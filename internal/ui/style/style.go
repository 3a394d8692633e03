// Package style provides shared styling primitives: colors, icons and the
// build-log prefixes used for consistent presentation across the CLI.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Purple = lipgloss.Color("#79589F")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
)

// Build-log prefixes. Step headers carry the arrow, subprocess output is
// indented to line up underneath it.
const (
	StepPrefix   = "-----> "
	IndentPrefix = "       "
)

// Header renders a step header line in the build-log convention.
func Header(msg string) string {
	return StepPrefix + msg
}

// Indent renders a detail line underneath a step header.
func Indent(msg string) string {
	return IndentPrefix + msg
}
