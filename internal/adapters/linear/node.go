package linear

import (
	"context"
	"os"

	"github.com/grindlemire/graft"

	"github.com/cordata/heroku-buildpack-ember-cli/internal/adapters/detector"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/core/ports"
	"github.com/cordata/heroku-buildpack-ember-cli/internal/ui/output"
)

// NodeID is the unique identifier for the renderer Graft node.
const NodeID graft.ID = "adapter.renderer"

func init() {
	graft.Register(graft.Node[ports.Renderer]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Renderer, error) {
			profile := output.ColorProfileANSI()
			if detector.DetectEnvironment() == detector.ModePretty {
				profile = output.ColorProfile()
			}
			return NewRenderer(os.Stdout, profile), nil
		},
	})
}
