package domain

import "errors"

var (
	// ErrMissingBuildDir is returned when the build directory argument does not exist.
	ErrMissingBuildDir = errors.New("build directory does not exist")

	// ErrNoPackageJSON is returned when the app has no package.json.
	ErrNoPackageJSON = errors.New("no package.json found")

	// ErrPackageJSONParseFailed is returned when package.json cannot be parsed.
	ErrPackageJSONParseFailed = errors.New("failed to parse package.json")

	// ErrNotEmberApp is returned by detect when ember-cli is not a declared dependency.
	ErrNotEmberApp = errors.New("ember-cli not found in package.json dependencies")

	// ErrManifestParseFailed is returned when the buildpack manifest cannot be parsed.
	ErrManifestParseFailed = errors.New("failed to parse buildpack manifest")

	// ErrEnvDirReadFailed is returned when the env dir cannot be read.
	ErrEnvDirReadFailed = errors.New("failed to read env dir")

	// ErrInvalidSemverRange is returned when engines.node or engines.npm is not a valid range.
	ErrInvalidSemverRange = errors.New("invalid semver range")

	// ErrResolveRequestFailed is returned when the semver resolution API request fails.
	ErrResolveRequestFailed = errors.New("failed to query semver resolution API")

	// ErrVersionNotFound is returned when no published version satisfies the range.
	ErrVersionNotFound = errors.New("no version satisfies the requested range")

	// ErrResolveCacheReadFailed is returned when the resolution cache cannot be read.
	ErrResolveCacheReadFailed = errors.New("failed to read resolution cache")

	// ErrResolveCacheWriteFailed is returned when the resolution cache cannot be written.
	ErrResolveCacheWriteFailed = errors.New("failed to write resolution cache")

	// ErrDownloadFailed is returned when fetching a runtime tarball fails.
	ErrDownloadFailed = errors.New("download failed")

	// ErrExtractFailed is returned when a tarball cannot be extracted.
	ErrExtractFailed = errors.New("failed to extract archive")

	// ErrUnsafeArchivePath is returned when a tar entry escapes the destination.
	ErrUnsafeArchivePath = errors.New("archive entry path escapes destination")

	// ErrCommandFailed is returned when an external tool exits non-zero.
	ErrCommandFailed = errors.New("command failed")

	// ErrInstallFailed is returned when a dependency installation step fails.
	ErrInstallFailed = errors.New("dependency installation failed")

	// ErrEmberBuildFailed is returned when the ember build exits non-zero.
	ErrEmberBuildFailed = errors.New("ember build failed")

	// ErrMarkerReadFailed is returned when the node-version marker cannot be read.
	ErrMarkerReadFailed = errors.New("failed to read node-version marker")

	// ErrMarkerWriteFailed is returned when the node-version marker cannot be written.
	ErrMarkerWriteFailed = errors.New("failed to write node-version marker")

	// ErrCacheStateReadFailed is returned when the cache state file cannot be read.
	ErrCacheStateReadFailed = errors.New("failed to read cache state")

	// ErrCacheStateWriteFailed is returned when the cache state file cannot be written.
	ErrCacheStateWriteFailed = errors.New("failed to write cache state")

	// ErrCacheRestoreFailed is returned when linking a cached directory into the build fails.
	ErrCacheRestoreFailed = errors.New("failed to restore cached dependencies")

	// ErrCacheSaveFailed is returned when persisting dependencies to the cache fails.
	ErrCacheSaveFailed = errors.New("failed to save dependencies to cache")

	// ErrStepFailed is returned when a pipeline step fails.
	ErrStepFailed = errors.New("build step failed")

	// ErrUnknownStep is returned when a step depends on a name that was never added.
	ErrUnknownStep = errors.New("step depends on unknown step")

	// ErrDuplicateStep is returned when two steps share a name.
	ErrDuplicateStep = errors.New("duplicate step name")

	// ErrStepCycle is returned when the step graph contains a cycle.
	ErrStepCycle = errors.New("cycle detected in step graph")

	// ErrBuildFailed is the top-level error for a failed compile.
	ErrBuildFailed = errors.New("build failed")

	// ErrTemplateRenderFailed is returned when the nginx config template cannot be rendered.
	ErrTemplateRenderFailed = errors.New("failed to render nginx config")

	// ErrHtpasswdWriteFailed is returned when the htpasswd file cannot be written.
	ErrHtpasswdWriteFailed = errors.New("failed to write htpasswd file")

	// ErrLogFollowFailed is returned when the nginx log tailer cannot start.
	ErrLogFollowFailed = errors.New("failed to follow log file")

	// ErrBootFailed is returned when nginx cannot be started.
	ErrBootFailed = errors.New("failed to boot nginx")

	// ErrSSHKeySetupFailed is returned when GIT_SSH_KEY cannot be materialized.
	ErrSSHKeySetupFailed = errors.New("failed to set up git ssh key")
)
