package depcache

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/logger"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/domain"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// NodeID is the unique identifier for the dependency cache Graft node.
const NodeID graft.ID = "adapter.depcache"

// Factory builds a DepCache bound to the build and cache directories
// of one compile invocation.
type Factory func(dirs domain.Dirs) ports.DepCache

func init() {
	graft.Register(graft.Node[Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (Factory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return func(dirs domain.Dirs) ports.DepCache {
				return NewCache(dirs, log)
			}, nil
		},
	})
}
