// Package ldconf implements host library discovery from the dynamic linker
// configuration.
package ldconf

import (
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
)

// conventionalDirs are scanned after the linker configuration. The list covers
// the multiarch layouts of the common distributions plus the NixOS and WSL
// driver mount points.
var conventionalDirs = []string{
	"/lib",
	"/usr/lib",
	"/lib64",
	"/usr/lib64",
	"/usr/lib/x86_64-linux-gnu",
	"/run/opengl-driver/lib",
	"/usr/lib/wsl/lib",
}

var _ ports.Locator = (*Locator)(nil)

// Locator implements ports.Locator by reading LD_LIBRARY_PATH and the
// ld.so.conf include tree, then merging in the conventional driver locations.
type Locator struct {
	// ConfPath is the root linker configuration file, normally /etc/ld.so.conf.
	ConfPath string
	// Extra replaces the conventional directory list when non-nil. Used by tests.
	Extra []string

	logger ports.Logger
}

// NewLocator creates a Locator reading the host linker configuration.
func NewLocator(logger ports.Logger) *Locator {
	return &Locator{ConfPath: "/etc/ld.so.conf", logger: logger}
}

// Directories returns the ordered, de-duplicated list of directories to scan.
// A non-empty override is exclusive: nothing else is consulted.
func (l *Locator) Directories(override string) ([]string, error) {
	if override != "" {
		l.logger.Debug("using explicit driver directory", "dir", override)
		if info, err := os.Stat(override); err != nil || !info.IsDir() {
			return nil, zerr.With(zerr.Wrap(domain.ErrNoDriverFound, "driver directory not accessible"), "dir", override)
		}
		return []string{override}, nil
	}

	var dirs []string
	if ldPath := os.Getenv("LD_LIBRARY_PATH"); ldPath != "" {
		dirs = append(dirs, filepath.SplitList(ldPath)...)
	}
	dirs = append(dirs, l.parseConfFile(l.ConfPath, map[string]bool{})...)
	extra := l.Extra
	if extra == nil {
		extra = conventionalDirs
	}
	dirs = append(dirs, extra...)

	out := dedupeDirs(dirs)
	l.logger.Debug("resolved scan directories", "count", len(out))
	return out, nil
}

// parseConfFile reads an ld.so.conf style file: one directory per line,
// comments with '#', and "include <glob>" directives resolved relative to the
// including file. seen guards against include cycles.
func (l *Locator) parseConfFile(path string, seen map[string]bool) []string {
	if seen[path] {
		return nil
	}
	seen[path] = true

	data, err := os.ReadFile(path) //nolint:gosec // linker config path
	if err != nil {
		// Missing on musl-based systems; discovery continues with the
		// conventional directories.
		l.logger.Debug("linker config not readable", "path", path)
		return nil
	}

	var dirs []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if pattern, ok := strings.CutPrefix(line, "include "); ok {
			pattern = strings.TrimSpace(pattern)
			if !filepath.IsAbs(pattern) {
				pattern = filepath.Join(filepath.Dir(path), pattern)
			}
			matches, _ := filepath.Glob(pattern)
			for _, m := range matches {
				dirs = append(dirs, l.parseConfFile(m, seen)...)
			}
			continue
		}
		dirs = append(dirs, line)
	}
	return dirs
}

// Scan lists the regular files of dir, following symlinks for metadata while
// keeping the visible name. Missing or unreadable directories yield nothing.
func (l *Locator) Scan(dir string, rank int) ([]domain.HostFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	var files []domain.HostFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := os.Stat(path) // follows symlinks
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, domain.HostFile{
			Name:     entry.Name(),
			Dir:      dir,
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			ScanRank: rank,
		})
	}
	l.logger.Debug("scanned directory", "dir", dir, "files", len(files))
	return files, nil
}

func dedupeDirs(dirs []string) []string {
	seen := make(map[string]bool, len(dirs))
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		d = filepath.Clean(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		if info, err := os.Stat(d); err != nil || !info.IsDir() {
			continue
		}
		out = append(out, d)
	}
	return out
}
