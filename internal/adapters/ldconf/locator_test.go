package ldconf_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glhost/internal/adapters/ldconf"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/core/domain"
)

func newLocator() *ldconf.Locator {
	return ldconf.NewLocator(logger.NewWithOutput(io.Discard, false))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLocator_Directories_Override(t *testing.T) {
	dir := t.TempDir()

	l := newLocator()
	dirs, err := l.Directories(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, dirs, "override is exclusive")
}

func TestLocator_Directories_OverrideMustBeADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	writeFile(t, file, "")

	l := newLocator()
	_, err := l.Directories(file)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoDriverFound)

	_, err = l.Directories(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrNoDriverFound)
}

func TestLocator_Directories_ConfIncludeTree(t *testing.T) {
	root := t.TempDir()
	libA := filepath.Join(root, "a")
	libB := filepath.Join(root, "b")
	require.NoError(t, os.MkdirAll(libA, 0o755))
	require.NoError(t, os.MkdirAll(libB, 0o755))

	confDir := filepath.Join(root, "etc")
	writeFile(t, filepath.Join(confDir, "ld.so.conf"),
		"# main linker config\ninclude ld.so.conf.d/*.conf\n"+libA+"\n")
	writeFile(t, filepath.Join(confDir, "ld.so.conf.d", "10-local.conf"), libB+"\n")
	writeFile(t, filepath.Join(confDir, "ld.so.conf.d", "ignored.txt"), "/nonexistent\n")

	l := newLocator()
	l.ConfPath = filepath.Join(confDir, "ld.so.conf")
	l.Extra = []string{}
	t.Setenv("LD_LIBRARY_PATH", "")

	dirs, err := l.Directories("")
	require.NoError(t, err)
	assert.Equal(t, []string{libB, libA}, dirs, "included files resolve before the including file's own entries")
}

func TestLocator_Directories_IncludeCycle(t *testing.T) {
	confDir := t.TempDir()
	lib := filepath.Join(confDir, "lib")
	require.NoError(t, os.MkdirAll(lib, 0o755))

	// Two files including each other must not loop.
	writeFile(t, filepath.Join(confDir, "ld.so.conf"), "include self.conf\n"+lib+"\n")
	writeFile(t, filepath.Join(confDir, "self.conf"), "include ld.so.conf\n")

	l := newLocator()
	l.ConfPath = filepath.Join(confDir, "ld.so.conf")
	l.Extra = []string{}
	t.Setenv("LD_LIBRARY_PATH", "")

	dirs, err := l.Directories("")
	require.NoError(t, err)
	assert.Equal(t, []string{lib}, dirs)
}

func TestLocator_Directories_LDLibraryPathFirst(t *testing.T) {
	root := t.TempDir()
	ldDir := filepath.Join(root, "ld-path")
	extraDir := filepath.Join(root, "extra")
	require.NoError(t, os.MkdirAll(ldDir, 0o755))
	require.NoError(t, os.MkdirAll(extraDir, 0o755))

	l := newLocator()
	l.ConfPath = filepath.Join(root, "missing-ld.so.conf")
	l.Extra = []string{extraDir, ldDir} // duplicate of the LD_LIBRARY_PATH entry
	t.Setenv("LD_LIBRARY_PATH", ldDir+":"+filepath.Join(root, "does-not-exist"))

	dirs, err := l.Directories("")
	require.NoError(t, err)
	assert.Equal(t, []string{ldDir, extraDir}, dirs, "LD_LIBRARY_PATH leads, missing dirs and duplicates drop out")
}

func TestLocator_Scan(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "libcuda.so.1"), "elf")
	require.NoError(t, os.Symlink(filepath.Join(dir, "libcuda.so.1"), filepath.Join(dir, "libcuda.so")))
	require.NoError(t, os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "dangling.so")))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "subdir"), 0o755))

	l := newLocator()
	files, err := l.Scan(dir, 3)
	require.NoError(t, err)
	require.Len(t, files, 2, "regular file plus resolvable symlink; dangling links and subdirs skipped")

	byName := make(map[string]domain.HostFile, len(files))
	for _, f := range files {
		byName[f.Name] = f
	}
	link, ok := byName["libcuda.so"]
	require.True(t, ok, "symlink keeps its visible name")
	assert.Equal(t, int64(3), link.Size, "metadata comes from the resolved target")
	assert.Equal(t, 3, link.ScanRank)
	assert.Equal(t, dir, link.Dir)
}

func TestLocator_Scan_MissingDir(t *testing.T) {
	l := newLocator()
	files, err := l.Scan(filepath.Join(t.TempDir(), "nope"), 0)
	assert.NoError(t, err)
	assert.Empty(t, files)
}
