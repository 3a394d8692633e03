package domain

import "time"

// CacheState describes what the dependency cache was built from. It is
// persisted in the cache dir and compared on the next build to decide
// between restore and reinstall.
type CacheState struct {
	// NodeVersion is the runtime the cached dependencies were compiled
	// against. Mirrors the node-version marker file.
	NodeVersion string `json:"node_version"`
	// PackageJSONHash is the xxhash signature of package.json.
	PackageJSONHash string `json:"package_json_hash,omitempty"`
	// BowerJSONHash is the xxhash signature of bower.json.
	BowerJSONHash string `json:"bower_json_hash,omitempty"`
	// Timestamp is when the cache was last written.
	Timestamp time.Time `json:"timestamp"`
}
