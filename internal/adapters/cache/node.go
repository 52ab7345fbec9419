package cache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/glhost/internal/adapters/config"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/adapters/patchelf"
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
)

// NodeID is the unique identifier for the cache store Graft node.
const NodeID graft.ID = "adapter.cache_store"

func init() {
	graft.Register(graft.Node[ports.CacheStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			patchelf.NodeID,
		},
		Run: func(ctx context.Context) (ports.CacheStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			editor, err := graft.Dep[ports.RunpathEditor](ctx)
			if err != nil {
				return nil, err
			}

			root, err := DefaultRoot()
			if err != nil {
				return nil, err
			}

			return NewStore(root, editor, log, cfg.ExtraRunpathDirs), nil
		},
	})
}
