package nginx

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/logger"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
)

// NodeID is the unique identifier for the boot supervisor Graft node.
const NodeID graft.ID = "adapter.nginx_supervisor"

func init() {
	graft.Register(graft.Node[*Supervisor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*Supervisor, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSupervisor(log, os.Stdout), nil
		},
	})
}
