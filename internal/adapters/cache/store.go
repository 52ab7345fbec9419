// Package cache implements the on-disk store of staged, patched driver libraries.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	manifestName = "manifest.json"
	lockName     = "glhost.lock"

	libDirName     = "lib"
	glxDirName     = "glx"
	eglDirName     = "egl"
	cudaDirName    = "cuda"
	eglConfDirName = "egl-confs"
)

// categoryDir maps a category to its directory under the cache root. The
// vendor dispatch libraries are kept apart from the generic pool so only the
// entry points land on the loader search path of the wrapped program.
func categoryDir(c domain.Category) string {
	switch c {
	case domain.CategoryGLXVendor:
		return glxDirName
	case domain.CategoryEGLVendor, domain.CategoryEGLExternalPlatform:
		return eglDirName
	case domain.CategoryCudaDriver, domain.CategoryCudaRuntime, domain.CategoryOpenCLVendor:
		return cudaDirName
	case domain.CategoryGeneric:
		return libDirName
	}
	return libDirName
}

var _ ports.CacheStore = (*Store)(nil)

// Store implements ports.CacheStore. All writes go through a temporary file
// and an atomic rename, and the whole copy+patch phase runs under an advisory
// lock so concurrent invocations sharing the root never observe a
// half-written library.
type Store struct {
	root         string
	editor       ports.RunpathEditor
	logger       ports.Logger
	extraRunpath []string
}

// NewStore creates a Store rooted at root.
func NewStore(root string, editor ports.RunpathEditor, logger ports.Logger, extraRunpath []string) *Store {
	return &Store{
		root:         filepath.Clean(root),
		editor:       editor,
		logger:       logger,
		extraRunpath: extraRunpath,
	}
}

// DefaultRoot derives the cache root from the invoking user's cache home:
// $XDG_CACHE_HOME/glhost, falling back to ~/.cache/glhost.
func DefaultRoot() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "glhost"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", zerr.Wrap(err, "cannot determine cache root")
	}
	return filepath.Join(home, ".cache", "glhost"), nil
}

// Root returns the cache root directory.
func (s *Store) Root() string { return s.root }

// Sync stages every winner under the cache root, reusing entries whose source
// fingerprint is unchanged and re-copying and re-patching the rest.
func (s *Store) Sync(ctx context.Context, winners []domain.DriverFile) (*domain.CacheResult, error) {
	if err := os.MkdirAll(s.root, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", s.root)
	}

	unlock, err := s.acquireLock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	previous := s.loadManifest()
	fresh := domain.NewManifest()

	result := &domain.CacheResult{
		Root:       s.root,
		LibDir:     filepath.Join(s.root, libDirName),
		GLXDir:     filepath.Join(s.root, glxDirName),
		EGLDir:     filepath.Join(s.root, eglDirName),
		CudaDir:    filepath.Join(s.root, cudaDirName),
		EGLConfDir: filepath.Join(s.root, eglConfDirName),
		Present:    make(map[domain.Category]bool),
	}

	// Sibling driver objects resolve each other inside the cache, never via
	// the host paths; extra directories cover the wrapped binary's C runtime.
	runpath := append([]string{result.LibDir}, s.extraRunpath...)

	for _, w := range winners {
		entries, hit, err := s.syncOne(ctx, w, previous, runpath)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			fresh.Put(entry)
		}
		result.Present[w.Category] = true
		if hit {
			result.Hits++
		} else {
			result.Misses++
		}
	}

	if result.Has(domain.CategoryEGLVendor, domain.CategoryEGLExternalPlatform) {
		if err := s.writeEGLConfFiles(result.EGLConfDir); err != nil {
			return nil, err
		}
	}

	s.removeOrphans(fresh)

	if err := s.saveManifest(fresh); err != nil {
		return nil, err
	}

	s.logger.Debug("cache synced", "hits", result.Hits, "misses", result.Misses)
	return result, nil
}

// syncOne stages a single winner and its alias links, returning their
// manifest entries and whether the previously staged copy was reused.
func (s *Store) syncOne(ctx context.Context, w domain.DriverFile, previous *domain.Manifest, runpath []string) ([]domain.CacheEntry, bool, error) {
	destRel := filepath.Join(categoryDir(w.Category), w.Name)
	destAbs := filepath.Join(s.root, destRel)

	fp, err := domain.StatFingerprint(w.Path)
	if err != nil {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", w.Path)
	}

	if entry, ok := previous.Lookup(destRel); ok && entry.Valid(fp) {
		if _, statErr := os.Stat(destAbs); statErr == nil {
			s.logger.Debug("cache hit", "dest", destRel)
			aliases, err := s.stageAliases(w, fp, false)
			if err != nil {
				return nil, false, err
			}
			return append([]domain.CacheEntry{entry}, aliases...), true, nil
		}
	}

	s.logger.Debug("cache miss, staging", "dest", destRel, "source", w.Path)
	if err := os.MkdirAll(filepath.Dir(destAbs), 0o750); err != nil {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", destAbs)
	}

	// Copy and patch a temporary file, then rename it into place so readers
	// only ever see fully patched libraries.
	tmp := destAbs + ".tmp." + fp.Digest()
	if err := copyFile(w.Path, tmp); err != nil {
		return nil, false, err
	}
	defer os.Remove(tmp) //nolint:errcheck // no-op after the rename below

	if err := s.editor.SetRunpath(ctx, tmp, runpath); err != nil {
		return nil, false, err
	}

	if err := os.Rename(tmp, destAbs); err != nil {
		return nil, false, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", destAbs)
	}

	entry := domain.CacheEntry{
		Dest:        destRel,
		Category:    w.Category,
		Fingerprint: fp,
		Digest:      fp.Digest(),
		Patched:     true,
	}
	aliases, err := s.stageAliases(w, fp, true)
	if err != nil {
		return nil, false, err
	}
	return append([]domain.CacheEntry{entry}, aliases...), false, nil
}

// stageAliases materializes the winner's alias names as sibling symlinks, so
// the loader and the vendor dispatch layer can open the staged library by its
// soname. refresh forces re-linking after the winner itself was re-staged.
func (s *Store) stageAliases(w domain.DriverFile, fp domain.Fingerprint, refresh bool) ([]domain.CacheEntry, error) {
	entries := make([]domain.CacheEntry, 0, len(w.Aliases))
	for _, alias := range w.Aliases {
		aliasRel := filepath.Join(categoryDir(w.Category), alias)
		aliasAbs := filepath.Join(s.root, aliasRel)

		_, lstatErr := os.Lstat(aliasAbs)
		if refresh || lstatErr != nil {
			s.logger.Debug("linking alias", "alias", aliasRel, "target", w.Name)
			if err := replaceSymlink(w.Name, aliasAbs); err != nil {
				return nil, zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", aliasAbs)
			}
		}
		entries = append(entries, domain.CacheEntry{
			Dest:        aliasRel,
			Category:    w.Category,
			Fingerprint: fp,
			Digest:      fp.Digest(),
			Patched:     true,
		})
	}
	return entries, nil
}

// removeOrphans deletes staged files the fresh manifest no longer claims:
// libraries whose winner changed name after a driver upgrade, and any stale
// temporary files. Keeping them would leave superseded driver objects on the
// injected search path.
func (s *Store) removeOrphans(fresh *domain.Manifest) {
	for _, dir := range []string{libDirName, glxDirName, eglDirName, cudaDirName} {
		entries, err := os.ReadDir(filepath.Join(s.root, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			rel := filepath.Join(dir, entry.Name())
			if _, ok := fresh.Entries[rel]; ok {
				continue
			}
			s.logger.Debug("removing stale cache entry", "dest", rel)
			_ = os.Remove(filepath.Join(s.root, rel))
		}
	}
}

// loadManifest reads the persisted manifest. A missing, unreadable or
// schema-mismatched manifest is treated as empty: every entry is then stale.
func (s *Store) loadManifest() *domain.Manifest {
	data, err := os.ReadFile(filepath.Join(s.root, manifestName)) //nolint:gosec // cache-internal path
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cache manifest unreadable, rebuilding")
		}
		return domain.NewManifest()
	}
	var m domain.Manifest
	if err := json.Unmarshal(data, &m); err != nil || m.Version != domain.ManifestVersion {
		s.logger.Warn("cache manifest invalid, rebuilding")
		return domain.NewManifest()
	}
	return &m
}

func (s *Store) saveManifest(m *domain.Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache manifest")
	}
	path := filepath.Join(s.root, manifestName)
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src) //nolint:gosec // discovered host library
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", src)
	}
	defer in.Close() //nolint:errcheck // read-only close

	info, err := in.Stat()
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", src)
	}

	// Keep the source permissions but guarantee owner write so the copy can
	// be patched.
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm()|0o200) //nolint:gosec // cache-internal path
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", dst)
	}
	if err := out.Close(); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", dst)
	}
	return nil
}

// replaceSymlink atomically points path at target, replacing whatever was
// there before.
func replaceSymlink(target, path string) error {
	tmp := path + ".tmp"
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
