package nodebin

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/config"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// NodeID is the unique identifier for the runtime resolver Graft node.
const NodeID graft.ID = "adapter.runtime_resolver"

func init() {
	graft.Register(graft.Node[ports.RuntimeResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.RuntimeResolver, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			sources, err := loader.LoadSources()
			if err != nil {
				return nil, err
			}
			return NewResolver(sources.SemverAPI), nil
		},
	})
}
