package ports

import (
	"context"

	"go.trai.ch/glhost/internal/core/domain"
)

// CacheStore stages classified driver libraries under a private cache root.
// It is the only component that reads or writes the cache.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type CacheStore interface {
	// Sync ensures every winner is staged and patched under the cache root,
	// copying and re-patching only entries whose source fingerprint changed.
	// Safe across concurrent invocations sharing the same root.
	Sync(ctx context.Context, winners []domain.DriverFile) (*domain.CacheResult, error)
}
