package ports

import "context"

// Engine names accepted by the semver resolution API.
const (
	EngineNode = "node"
	EngineNPM  = "npm"
)

// RuntimeResolver resolves a semver range for an engine to a concrete
// published version.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type RuntimeResolver interface {
	// Resolve returns the exact version satisfying rng for the given
	// engine ("node" or "npm"). cacheRoot is the build cache dir used
	// for memoizing resolutions; an empty range resolves to the API's
	// default stable channel.
	Resolve(ctx context.Context, cacheRoot, engine, rng string) (string, error)
}
