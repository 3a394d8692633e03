package domain

import "os"

// App is the application configuration as declared by the repository being
// built: package.json engines, bower usage, and the Heroku env dir contents.
type App struct {
	// Name from package.json; may be empty.
	Name string
	// NodeRange is the engines.node semver range; empty means "stable".
	NodeRange string
	// NPMRange is the engines.npm semver range; empty keeps the npm
	// bundled with Node.
	NPMRange string
	// EmberCLI reports whether ember-cli appears in dependencies or
	// devDependencies.
	EmberCLI bool
	// HasBower reports whether bower.json exists in the build dir.
	HasBower bool
	// Env holds the config vars read from the env dir.
	Env map[string]string
}

// EnvOrOS returns the value for key from the env dir, or the process
// environment fallback when the env dir did not carry it.
func (a *App) EnvOrOS(key, fallback string) string {
	if v, ok := a.Env[key]; ok && v != "" {
		return v
	}
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Flag reports whether key is set to a truthy value ("1", "true", "yes")
// in the env dir.
func (a *App) Flag(key string) bool {
	switch a.Env[key] {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Sources holds the download locations the buildpack is pinned to.
type Sources struct {
	// SemverAPI is the base URL of the semver resolution service.
	SemverAPI string `yaml:"semver_api"`
	// NodeMirror is the base URL for Node runtime tarballs.
	NodeMirror string `yaml:"node_mirror"`
	// NginxVersion is the pinned nginx release.
	NginxVersion string `yaml:"nginx_version"`
	// NginxURL is the full URL of the nginx tarball.
	NginxURL string `yaml:"nginx_url"`
}
