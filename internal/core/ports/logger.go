// Package ports defines the core interfaces for the buildpack.
package ports

// Logger defines the logging interface used across the buildpack phases.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Debug logs a message only visible when BUILD_DEBUG is set.
	Debug(msg string)

	// Info logs an informational message.
	Info(msg string)

	// Warn logs a warning message.
	Warn(msg string)

	// Error logs an error with its cause chain.
	Error(err error)
}
