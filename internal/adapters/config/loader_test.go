package config_test

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glhost/internal/adapters/config"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/core/domain"
)

func newLoader() *config.Loader {
	return config.NewLoader(logger.NewWithOutput(io.Discard, false))
}

func TestLoader_MissingFileYieldsDefaults(t *testing.T) {
	t.Setenv("GLHOST_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := newLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, &domain.Config{}, cfg)
}

func TestLoader_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := "patchelf: /opt/tools/patchelf\nextra_runpath_dirs:\n  - /opt/glibc/lib\ncatch_all: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("GLHOST_CONFIG", path)

	cfg, err := newLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "/opt/tools/patchelf", cfg.Patchelf)
	assert.Equal(t, []string{"/opt/glibc/lib"}, cfg.ExtraRunpathDirs)
	assert.True(t, cfg.CatchAll)
}

func TestLoader_ExplicitPathMustExist(t *testing.T) {
	t.Setenv("GLHOST_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := newLoader().Load()
	assert.Error(t, err, "an explicitly named config file must exist")
}

func TestLoader_XDGSearchPath(t *testing.T) {
	configHome := t.TempDir()
	dir := filepath.Join(configHome, "glhost")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	content := "extra_patterns:\n  - '^libspecial\\.so'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(content), 0o644))

	t.Setenv("GLHOST_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", configHome)

	cfg, err := newLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, []string{`^libspecial\.so`}, cfg.ExtraPatterns)
}

func TestLoader_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patchelf: [unclosed"), 0o644))
	t.Setenv("GLHOST_CONFIG", path)

	_, err := newLoader().Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}
