package config

// PackageJSON mirrors the subset of package.json the buildpack reads.
type PackageJSON struct {
	Name            string            `json:"name"`
	Engines         Engines           `json:"engines"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Engines holds the runtime version ranges declared by the app.
type Engines struct {
	Node string `json:"node"`
	NPM  string `json:"npm"`
}

// Manifest mirrors the buildpack's own manifest.yml: the pinned download
// locations for everything the build fetches.
type Manifest struct {
	SemverAPI    string `yaml:"semver_api"`
	NodeMirror   string `yaml:"node_mirror"`
	NginxVersion string `yaml:"nginx_version"`
	NginxURL     string `yaml:"nginx_url"`
}
