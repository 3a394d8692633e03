// Package domain contains the core types shared by the buildpack phases.
package domain

import "path/filepath"

const (
	// VendorDirName is the directory inside the build dir that receives
	// the Node runtime and the nginx binary.
	VendorDirName = "vendor"

	// HerokuDirName is the hidden state directory inside the build dir.
	HerokuDirName = ".heroku"

	// NodeVersionMarker is the file recording the Node version of the
	// last successfully cached build.
	NodeVersionMarker = "node-version"

	// CacheStateFile records dependency signatures alongside the marker.
	CacheStateFile = "cache-state.json"

	// NodeModulesDir is the npm dependency directory name.
	NodeModulesDir = "node_modules"

	// BowerComponentsDir is the bower dependency directory name.
	BowerComponentsDir = "bower_components"

	// NodeCacheDir is the cache subdirectory holding extracted Node runtimes.
	NodeCacheDir = "node"

	// NginxCacheDir is the cache subdirectory holding extracted nginx builds.
	NginxCacheDir = "nginx"

	// ResolveCacheDir is the cache subdirectory for semver API resolutions.
	ResolveCacheDir = "resolve"

	// DistDirName is where ember-cli places the compiled application.
	DistDirName = "dist"

	// LogsDirName is the runtime nginx log directory.
	LogsDirName = "logs"

	// NginxConfName is the rendered nginx configuration file.
	NginxConfName = "nginx.conf"

	// NginxTemplateName is the app-provided config template, relative to
	// the app root.
	NginxTemplateName = "config/nginx.conf.tmpl"

	// HtpasswdName is the generated basic auth credentials file.
	HtpasswdName = ".htpasswd"

	// DefaultEmberEnv is the ember build environment when EMBER_ENV is unset.
	DefaultEmberEnv = "production"

	// DefaultPort is the nginx listen port when PORT is unset.
	DefaultPort = 5000

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// MarkerPath returns the node-version marker path inside a directory.
// Both the build dir and the cache dir carry a copy.
func MarkerPath(dir string) string {
	return filepath.Join(dir, HerokuDirName, NodeVersionMarker)
}

// CacheStatePath returns the cache state file path inside the cache dir.
func CacheStatePath(cacheDir string) string {
	return filepath.Join(cacheDir, HerokuDirName, CacheStateFile)
}

// VendorPath returns the vendor subdirectory for a component inside the
// build dir.
func VendorPath(buildDir, component string) string {
	return filepath.Join(buildDir, VendorDirName, component)
}

// CachePathFor returns a named subdirectory of the cache dir.
func CachePathFor(cacheDir, name string) string {
	return filepath.Join(cacheDir, name)
}
