// Package patchelf implements runpath editing by shelling out to patchelf.
package patchelf

import (
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
)

// DefaultTool is the editor binary resolved on PATH when no override is configured.
const DefaultTool = "patchelf"

var _ ports.RunpathEditor = (*Editor)(nil)

// Editor implements ports.RunpathEditor via the patchelf binary.
type Editor struct {
	tool   string
	logger ports.Logger
}

// NewEditor creates an Editor. An empty tool selects DefaultTool.
func NewEditor(tool string, logger ports.Logger) *Editor {
	if tool == "" {
		tool = DefaultTool
	}
	return &Editor{tool: tool, logger: logger}
}

// SetRunpath rewrites the runpath record of file to the colon-joined dirs.
// A failed invocation is retried once: patchelf can lose a rename race when a
// concurrent invocation patches the same staged file. The second failure is fatal.
func (e *Editor) SetRunpath(ctx context.Context, file string, dirs []string) error {
	runpath := strings.Join(dirs, ":")
	e.logger.Debug("patching runpath", "file", file, "runpath", runpath)

	firstErr := e.run(ctx, file, runpath)
	if firstErr == nil {
		return nil
	}
	e.logger.Debug("patch attempt failed, retrying once", "file", file)
	if err := e.run(ctx, file, runpath); err != nil {
		return err
	}
	return nil
}

func (e *Editor) run(ctx context.Context, file, runpath string) error {
	//nolint:gosec // tool path comes from configuration, arguments are staged cache files
	cmd := exec.CommandContext(ctx, e.tool, "--set-rpath", runpath, file)
	output, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}

	patchErr := zerr.With(zerr.Wrap(domain.ErrPatchFailed, "patch tool invocation failed"), "file", file)
	patchErr = zerr.With(patchErr, "tool", e.tool)
	patchErr = zerr.With(patchErr, "cause", err.Error())
	return zerr.With(patchErr, "output", strings.TrimSpace(string(output)))
}
