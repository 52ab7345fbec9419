package ports

import (
	"io"

	"go.trai.ch/glhost/internal/core/domain"
)

// Launcher applies the resolved environment, either by printing the loader
// search path or by replacing the current process with the target command.
//
//go:generate go run go.uber.org/mock/mockgen -source=launcher.go -destination=mocks/mock_launcher.go -package=mocks
type Launcher interface {
	// Print writes the LD_LIBRARY_PATH value from env to w, followed by a
	// newline. It never executes anything.
	Print(env domain.ResolvedEnvironment, w io.Writer) error

	// Exec merges env into the process environment and replaces the current
	// process image with argv. On success it does not return.
	Exec(env domain.ResolvedEnvironment, argv []string) error
}
