package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
)

// NodeID is the unique identifier for the resolved configuration Graft node.
const NodeID graft.ID = "adapter.config"

func init() {
	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (*domain.Config, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			var loader ports.ConfigLoader = NewLoader(log)
			return loader.Load()
		},
	})
}
