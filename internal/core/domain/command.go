package domain

// Command is a single external tool invocation.
type Command struct {
	// Argv is the program and its arguments. Argv[0] is resolved against
	// the constructed PATH unless absolute.
	Argv []string
	// Dir is the working directory.
	Dir string
	// Env holds per-command overrides applied on top of the build
	// environment.
	Env map[string]string
}
