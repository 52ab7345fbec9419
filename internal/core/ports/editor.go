package ports

import "context"

// RunpathEditor rewrites the dynamic-linking search path record of a shared
// library. The production implementation shells out to patchelf; tests
// substitute a recorder.
//
//go:generate go run go.uber.org/mock/mockgen -source=editor.go -destination=mocks/mock_editor.go -package=mocks
type RunpathEditor interface {
	// SetRunpath replaces the runpath of file with the colon-joined dirs.
	SetRunpath(ctx context.Context, file string, dirs []string) error
}
