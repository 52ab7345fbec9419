package cache

import (
	"os"
	"path/filepath"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sys/unix"
)

// acquireLock takes an exclusive advisory lock scoped to the cache root,
// blocking until any concurrent invocation releases it. The lock lives for
// the copy+patch phase of one Sync call; closing the descriptor releases it
// even if the process dies mid-sync.
func (s *Store) acquireLock() (func(), error) {
	path := filepath.Join(s.root, lockName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644) //nolint:gosec // cache-internal path
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", path)
	}

	s.logger.Debug("acquiring cache lock", "path", path)
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", path)
	}
	s.logger.Debug("cache lock acquired")

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
