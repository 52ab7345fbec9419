package classifier

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glhost/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glhost/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
)

// NodeID is the unique identifier for the classifier Graft node.
const NodeID graft.ID = "engine.classifier"

func init() {
	graft.Register(graft.Node[*Classifier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Classifier, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(cfg, log)
		},
	})
}
