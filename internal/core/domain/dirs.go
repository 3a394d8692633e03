package domain

// Dirs holds the directories the build/release pipeline hands to the
// buildpack as positional arguments.
type Dirs struct {
	// Build is the application source checkout; the slug is assembled here.
	Build string
	// Cache persists between builds of the same app.
	Cache string
	// Env contains one file per config var (may be empty on old stacks).
	Env string
}
