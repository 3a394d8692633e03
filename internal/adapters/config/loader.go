// Package config reads the app's declared configuration (package.json,
// bower.json, the Heroku env dir) and the buildpack's own manifest.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// Compiled-in source pins, overridable via manifest.yml next to the
// buildpack binary (BUILDPACK_DIR).
const (
	defaultSemverAPI    = "https://semver.herokuapp.com"
	defaultNodeMirror   = "https://s3pository.heroku.com/node"
	defaultNginxVersion = "1.6.2"
	defaultNginxURL     = "https://buildpack-ember-cli.s3.amazonaws.com/nginx-1.6.2.tgz"
)

// manifestName is the buildpack manifest file, looked up in BUILDPACK_DIR.
const manifestName = "manifest.yml"

// buildEnvVars are the config vars the compile phase consults. When the
// env dir does not carry one of them, the process environment is used as
// fallback (older stacks export config vars directly).
var buildEnvVars = []string{
	"BUILD_DEBUG",
	"EMBER_ENV",
	"REBUILD_ALL",
	"REBUILD_NODE_PACKAGES",
	"REBUILD_BOWER_PACKAGES",
	"GIT_SSH_KEY",
}

// Loader implements ports.ConfigLoader.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// LoadApp reads package.json, checks for bower.json and loads the env dir.
func (l *Loader) LoadApp(dirs domain.Dirs) (*domain.App, error) {
	if _, err := os.Stat(dirs.Build); err != nil {
		return nil, zerr.With(domain.ErrMissingBuildDir, "build_dir", dirs.Build)
	}

	pkg, err := readPackageJSON(filepath.Join(dirs.Build, "package.json"))
	if err != nil {
		return nil, err
	}

	env, err := readEnvDir(dirs.Env)
	if err != nil {
		return nil, err
	}

	hasBower := false
	if _, statErr := os.Stat(filepath.Join(dirs.Build, "bower.json")); statErr == nil {
		hasBower = true
	}

	return &domain.App{
		Name:      pkg.Name,
		NodeRange: pkg.Engines.Node,
		NPMRange:  pkg.Engines.NPM,
		EmberCLI:  declaresEmberCLI(pkg),
		HasBower:  hasBower,
		Env:       env,
	}, nil
}

// LoadSources returns the pinned download locations, reading manifest.yml
// from BUILDPACK_DIR when present.
func (l *Loader) LoadSources() (*domain.Sources, error) {
	sources := &domain.Sources{
		SemverAPI:    defaultSemverAPI,
		NodeMirror:   defaultNodeMirror,
		NginxVersion: defaultNginxVersion,
		NginxURL:     defaultNginxURL,
	}

	bpDir := os.Getenv("BUILDPACK_DIR")
	if bpDir == "" {
		return sources, nil
	}

	path := filepath.Join(bpDir, manifestName)
	// #nosec G304 -- path is constructed from the buildpack's own directory
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return sources, nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrManifestParseFailed, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrManifestParseFailed, err)
	}

	if m.SemverAPI != "" {
		sources.SemverAPI = m.SemverAPI
	}
	if m.NodeMirror != "" {
		sources.NodeMirror = m.NodeMirror
	}
	if m.NginxVersion != "" {
		sources.NginxVersion = m.NginxVersion
	}
	if m.NginxURL != "" {
		sources.NginxURL = m.NginxURL
	}

	return sources, nil
}

// readPackageJSON parses the app's package.json.
func readPackageJSON(path string) (*PackageJSON, error) {
	// #nosec G304 -- path is constructed from the build dir argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, zerr.With(domain.ErrNoPackageJSON, "path", path)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrPackageJSONParseFailed, err)
	}

	var pkg PackageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPackageJSONParseFailed, err)
	}

	return &pkg, nil
}

// declaresEmberCLI reports whether ember-cli appears in dependencies or
// devDependencies.
func declaresEmberCLI(pkg *PackageJSON) bool {
	if _, ok := pkg.DevDependencies["ember-cli"]; ok {
		return true
	}
	_, ok := pkg.Dependencies["ember-cli"]
	return ok
}

// readEnvDir loads the Heroku env dir: one regular file per config var,
// the filename is the key and the trimmed contents are the value. Known
// build vars fall back to the process environment.
func readEnvDir(envDir string) (map[string]string, error) {
	env := make(map[string]string)

	if envDir != "" {
		entries, err := os.ReadDir(envDir)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %w", domain.ErrEnvDirReadFailed, err)
			}
		} else {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				// #nosec G304 -- entries come from the env dir listing
				data, readErr := os.ReadFile(filepath.Join(envDir, entry.Name()))
				if readErr != nil {
					return nil, fmt.Errorf("%w: %w", domain.ErrEnvDirReadFailed, readErr)
				}
				env[entry.Name()] = trimValue(string(data))
			}
		}
	}

	for _, key := range buildEnvVars {
		if _, ok := env[key]; !ok {
			if v := os.Getenv(key); v != "" {
				env[key] = v
			}
		}
	}

	return env, nil
}

// trimValue strips the trailing newline Heroku writes into env dir files.
func trimValue(v string) string {
	for len(v) > 0 && (v[len(v)-1] == '\n' || v[len(v)-1] == '\r') {
		v = v[:len(v)-1]
	}
	return v
}
