package domain

import (
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"

	"github.com/cespare/xxhash/v2"
)

// ManifestVersion is bumped whenever the staged layout or the manifest schema
// changes; a mismatch invalidates every entry.
const ManifestVersion = 1

// Fingerprint identifies one revision of a host library file. Two files with
// the same source path, size and mtime are treated as identical; the driver
// install path never rewrites a library in place without touching its mtime.
type Fingerprint struct {
	Source       string `json:"source"`
	Size         int64  `json:"size"`
	ModTimeNanos int64  `json:"mtime_ns"`
}

// NewFingerprint captures the current fingerprint of the file at path.
func NewFingerprint(path string, info fs.FileInfo) Fingerprint {
	return Fingerprint{
		Source:       path,
		Size:         info.Size(),
		ModTimeNanos: info.ModTime().UnixNano(),
	}
}

// StatFingerprint stats path and captures its fingerprint.
func StatFingerprint(path string) (Fingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Fingerprint{}, err
	}
	return NewFingerprint(path, info), nil
}

// Digest returns a stable hash of the fingerprint, used to key cache buckets.
func (f Fingerprint) Digest() string {
	h := xxhash.New()
	_, _ = h.WriteString(f.Source)
	_, _ = h.Write([]byte{0})
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], uint64(f.Size))
	binary.LittleEndian.PutUint64(buf[8:], uint64(f.ModTimeNanos))
	_, _ = h.Write(buf[:])
	return fmt.Sprintf("%016x", h.Sum64())
}

// CacheEntry describes one staged library inside the cache root. An entry is
// reusable iff its fingerprint still matches the source file and Patched is set.
type CacheEntry struct {
	// Dest is the staged file path relative to the cache root, e.g. "glx/libGLX_nvidia.so.1".
	Dest        string      `json:"dest"`
	Category    Category    `json:"category"`
	Fingerprint Fingerprint `json:"fingerprint"`
	// Digest is the xxhash of Fingerprint at staging time. It keys the
	// temporary staging file and guards the record against a manifest whose
	// fields were edited or truncated independently of each other.
	Digest  string `json:"digest"`
	Patched bool   `json:"patched"`
}

// Valid reports whether the entry can be reused for the given current
// fingerprint of its source file.
func (e CacheEntry) Valid(current Fingerprint) bool {
	return e.Patched && e.Fingerprint == current && e.Digest == current.Digest()
}

// Manifest is the persisted record of everything staged in the cache root,
// keyed by destination path relative to the root.
type Manifest struct {
	Version int                   `json:"version"`
	Entries map[string]CacheEntry `json:"entries"`
}

// NewManifest returns an empty manifest at the current schema version.
func NewManifest() *Manifest {
	return &Manifest{Version: ManifestVersion, Entries: make(map[string]CacheEntry)}
}

// Lookup returns the entry for a destination path, if any.
func (m *Manifest) Lookup(dest string) (CacheEntry, bool) {
	if m.Version != ManifestVersion || m.Entries == nil {
		return CacheEntry{}, false
	}
	e, ok := m.Entries[dest]
	return e, ok
}

// Put records an entry under its destination path.
func (m *Manifest) Put(e CacheEntry) {
	if m.Entries == nil {
		m.Entries = make(map[string]CacheEntry)
	}
	m.Entries[e.Dest] = e
}

// CacheResult is what the store hands to the environment builder: the absolute
// category directories plus which categories actually hold libraries.
type CacheResult struct {
	Root string

	LibDir     string
	GLXDir     string
	EGLDir     string
	CudaDir    string
	EGLConfDir string

	Present map[Category]bool

	// Hits and Misses count reused and re-staged entries, for diagnostics only.
	Hits   int
	Misses int
}

// Has reports whether any of the given categories holds at least one library.
func (r *CacheResult) Has(categories ...Category) bool {
	for _, c := range categories {
		if r.Present[c] {
			return true
		}
	}
	return false
}
