package patchelf

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glhost/internal/adapters/config"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
)

// NodeID is the unique identifier for the runpath editor Graft node.
const NodeID graft.ID = "adapter.runpath_editor"

func init() {
	graft.Register(graft.Node[ports.RunpathEditor]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (ports.RunpathEditor, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewEditor(cfg.Patchelf, log), nil
		},
	})
}
