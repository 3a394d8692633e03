// Package wiring registers all Graft nodes for the buildpack.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/config"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/depcache"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/fetch"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/linear"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/logger"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nginx"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nodebin"
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/shell"
	// Register app nodes.
	_ "github.com/cordata/heroku-buildpack-ember-cli/internal/app"
)
