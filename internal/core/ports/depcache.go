package ports

import "github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"

// DepCache manages dependency directories (node_modules, bower_components)
// persisted in the build cache between deploys.
//
//go:generate mockgen -source=depcache.go -destination=mocks/mock_depcache.go -package=mocks
type DepCache interface {
	// State reads the persisted cache state. Returns nil, nil when the
	// cache has never been written.
	State() (*domain.CacheState, error)

	// Has reports whether the named directory exists in the cache.
	Has(name string) bool

	// Restore symlinks the named cached directory into the build dir.
	Restore(name string) error

	// Save moves the named directory from the build dir into the cache
	// and symlinks it back, so the next build can restore it.
	Save(name string) error

	// Drop removes the named directory from the cache.
	Drop(name string) error

	// WriteState persists the cache state and the node-version marker in
	// both the build dir and the cache dir.
	WriteState(state domain.CacheState) error

	// Signature returns a content signature for the file at path, or an
	// empty string when the file does not exist.
	Signature(path string) (string, error)
}
