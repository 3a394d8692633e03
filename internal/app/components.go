package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/config"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/depcache"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/fetch"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/linear"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/logger"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nginx"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/nodebin"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/shell"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// Components bundles the fully wired application for the commands.
type Components struct {
	App    *App
	Logger ports.Logger
}

// NodeID is the unique identifier for the components Graft node.
const NodeID graft.ID = "app.components"

func init() {
	graft.Register(graft.Node[*Components]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			config.NodeID,
			shell.NodeID,
			nodebin.NodeID,
			fetch.NodeID,
			depcache.NodeID,
			linear.NodeID,
			nginx.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			resolver, err := graft.Dep[ports.RuntimeResolver](ctx)
			if err != nil {
				return nil, err
			}
			downloader, err := graft.Dep[ports.Downloader](ctx)
			if err != nil {
				return nil, err
			}
			cacheFactory, err := graft.Dep[depcache.Factory](ctx)
			if err != nil {
				return nil, err
			}
			renderer, err := graft.Dep[ports.Renderer](ctx)
			if err != nil {
				return nil, err
			}
			supervisor, err := graft.Dep[*nginx.Supervisor](ctx)
			if err != nil {
				return nil, err
			}

			application := New(
				loader,
				executor,
				log,
				resolver,
				downloader,
				renderer,
				DepCacheFactory(cacheFactory),
				supervisor,
			)

			return &Components{
				App:    application,
				Logger: log,
			}, nil
		},
	})
}
