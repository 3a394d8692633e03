package ports

import "github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"

// ConfigLoader reads the application's declared configuration and the
// buildpack's own source pins.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// LoadApp reads package.json, bower.json and the env dir for the app
	// in dirs.Build.
	LoadApp(dirs domain.Dirs) (*domain.App, error)

	// LoadSources returns the download locations pinned by the buildpack
	// manifest, with compiled-in defaults when no manifest is present.
	LoadSources() (*domain.Sources, error)
}
