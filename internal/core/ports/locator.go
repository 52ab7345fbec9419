// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/glhost/internal/core/domain"

// Locator enumerates the host directories that may contain driver libraries
// and lists their candidate files.
//
//go:generate go run go.uber.org/mock/mockgen -source=locator.go -destination=mocks/mock_locator.go -package=mocks
type Locator interface {
	// Directories returns the ordered list of directories to scan. When
	// override is non-empty it is the only entry; otherwise the host dynamic
	// linker configuration is merged with the conventional driver locations,
	// de-duplicated in first-seen order.
	Directories(override string) ([]string, error)

	// Scan lists the regular files of dir. Symlinks are followed to their
	// target for size and mtime, but the visible name is preserved.
	// A missing or unreadable dir yields an empty slice, not an error.
	Scan(dir string, rank int) ([]domain.HostFile, error)
}
