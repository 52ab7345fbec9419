package patchelf_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/adapters/patchelf"
	"go.trai.ch/glhost/internal/core/domain"
)

// fakeTool writes a shell script standing in for patchelf and returns its path.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-patchelf")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func discardLogger() *logger.Logger {
	return logger.NewWithOutput(io.Discard, false)
}

func TestEditor_SetRunpath(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	tool := fakeTool(t, `printf '%s\n' "$@" > `+argsFile+"\n")

	e := patchelf.NewEditor(tool, discardLogger())
	err := e.SetRunpath(context.Background(), "/cache/lib/libcuda.so.1", []string{"/cache/lib", "/opt/glibc/lib"})
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "--set-rpath\n/cache/lib:/opt/glibc/lib\n/cache/lib/libcuda.so.1\n", string(args))
}

func TestEditor_SetRunpath_RetriesOnce(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "first-attempt")
	// Fails on the first invocation, succeeds on the second.
	tool := fakeTool(t, `if [ ! -e `+marker+` ]; then touch `+marker+`; exit 1; fi`+"\n")

	e := patchelf.NewEditor(tool, discardLogger())
	err := e.SetRunpath(context.Background(), "/cache/lib/libcuda.so.1", []string{"/cache/lib"})
	assert.NoError(t, err, "a single transient failure is retried")
}

func TestEditor_SetRunpath_FailureAfterRetry(t *testing.T) {
	tool := fakeTool(t, `echo "cannot find section .dynamic" >&2; exit 1`+"\n")

	e := patchelf.NewEditor(tool, discardLogger())
	err := e.SetRunpath(context.Background(), "/cache/lib/libcuda.so.1", []string{"/cache/lib"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPatchFailed)
}

func TestEditor_SetRunpath_MissingTool(t *testing.T) {
	e := patchelf.NewEditor(filepath.Join(t.TempDir(), "no-such-tool"), discardLogger())
	err := e.SetRunpath(context.Background(), "/cache/lib/libcuda.so.1", []string{"/cache/lib"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrPatchFailed)
}
