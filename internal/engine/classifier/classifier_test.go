package classifier_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/glhost/internal/adapters/logger"
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/engine/classifier"
)

func newClassifier(t *testing.T, cfg *domain.Config) *classifier.Classifier {
	t.Helper()
	c, err := classifier.New(cfg, logger.NewWithOutput(io.Discard, false))
	require.NoError(t, err)
	return c
}

func hostFile(name, dir string, rank int, mtime time.Time) domain.HostFile {
	return domain.HostFile{
		Name:     name,
		Dir:      dir,
		Path:     dir + "/" + name,
		ModTime:  mtime,
		ScanRank: rank,
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := newClassifier(t, &domain.Config{})

	tests := []struct {
		name     string
		category domain.Category
		matched  bool
	}{
		{"libGLX_nvidia.so.0", domain.CategoryGLXVendor, true},
		{"libEGL_nvidia.so.0", domain.CategoryEGLVendor, true},
		{"libnvidia-egl-wayland.so.1", domain.CategoryEGLExternalPlatform, true},
		{"libnvidia-egl-gbm.so.1", domain.CategoryEGLExternalPlatform, true},
		{"libcuda.so.545.29.06", domain.CategoryCudaDriver, true},
		{"libcudadebugger.so.1", domain.CategoryCudaDriver, true},
		{"libcudart.so.12", domain.CategoryCudaRuntime, true},
		{"libnvidia-opencl.so.1", domain.CategoryOpenCLVendor, true},
		{"libnvidia-glcore.so.535.183.01", domain.CategoryGeneric, true},
		{"libnvidia-ml.so.1", domain.CategoryGeneric, true},
		{"libwayland-client.so.0", domain.CategoryGeneric, true},
		{"libc.so.6", "", false},
		{"libGLX_mesa.so.0", "", false},
		{"README", "", false},
	}
	for _, tt := range tests {
		cat, ok := c.Classify(tt.name)
		assert.Equal(t, tt.matched, ok, "match flag of %s", tt.name)
		if tt.matched {
			assert.Equal(t, tt.category, cat, "category of %s", tt.name)
		}
	}
}

func TestClassifier_ExtraPatterns(t *testing.T) {
	c := newClassifier(t, &domain.Config{ExtraPatterns: []string{`^libvendor-extra\.so`}})

	cat, ok := c.Classify("libvendor-extra.so.1")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryGeneric, cat)

	// Fixed rules stay ahead of the extras.
	cat, ok = c.Classify("libGLX_nvidia.so.0")
	require.True(t, ok)
	assert.Equal(t, domain.CategoryGLXVendor, cat)
}

func TestClassifier_InvalidExtraPattern(t *testing.T) {
	_, err := classifier.New(
		&domain.Config{ExtraPatterns: []string{`^lib(unclosed\.so`}},
		logger.NewWithOutput(io.Discard, false),
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfigInvalid)
}

func TestClassifier_Select_HighestVersionWins(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	now := time.Now()

	old := hostFile("libGLX_nvidia.so.470.42.01", "/usr/lib", 0, now)
	old.Size = 1000
	cur := hostFile("libGLX_nvidia.so.535.183.01", "/opt/drivers", 1, now)
	cur.Size = 2000

	winners, err := c.Select([]domain.HostFile{old, cur})
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "/opt/drivers/libGLX_nvidia.so.535.183.01", winners[0].Path)
	assert.Equal(t, domain.CategoryGLXVendor, winners[0].Category)
	assert.Empty(t, winners[0].Aliases, "distinct driver objects are not aliases")
}

func TestClassifier_Select_SonameAliases(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	mtime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	// A driver tree links libEGL_nvidia.so.0 to libEGL_nvidia.so.535.183.01;
	// a symlink-following scan reports both names with identical metadata.
	files := []domain.HostFile{
		hostFile("libEGL_nvidia.so.535.183.01", "/usr/lib", 0, mtime),
		hostFile("libEGL_nvidia.so.0", "/usr/lib", 0, mtime),
		hostFile("libGLX_nvidia.so.0", "/usr/lib", 0, mtime),
		hostFile("libGLX_nvidia.so.535.183.01", "/usr/lib", 0, mtime),
	}

	winners, err := c.Select(files)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	byName := make(map[string]domain.DriverFile, len(winners))
	for _, w := range winners {
		byName[w.Name] = w
	}

	egl, ok := byName["libEGL_nvidia.so.535.183.01"]
	require.True(t, ok, "the fully versioned name is the canonical one")
	assert.Equal(t, []string{"libEGL_nvidia.so.0"}, egl.Aliases)

	glx, ok := byName["libGLX_nvidia.so.535.183.01"]
	require.True(t, ok)
	assert.Equal(t, []string{"libGLX_nvidia.so.0"}, glx.Aliases)
}

func TestClassifier_Select_MtimeBreaksVersionTie(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	files := []domain.HostFile{
		hostFile("libcuda.so.1", "/usr/lib", 0, older),
		hostFile("libcuda.so.1", "/opt/drivers", 1, newer),
	}

	winners, err := c.Select(files)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "/opt/drivers/libcuda.so.1", winners[0].Path)
}

func TestClassifier_Select_ScanRankBreaksFinalTie(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	mtime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	files := []domain.HostFile{
		hostFile("libcuda.so.1", "/later", 5, mtime),
		hostFile("libcuda.so.1", "/earlier", 2, mtime),
	}

	winners, err := c.Select(files)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, "/earlier/libcuda.so.1", winners[0].Path, "earlier-scanned directory wins the final tie")
}

func TestClassifier_Select_DistinctStemsCoexist(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	now := time.Now()

	files := []domain.HostFile{
		hostFile("libcuda.so.1", "/usr/lib", 0, now),
		hostFile("libcudadebugger.so.1", "/usr/lib", 0, now),
	}

	winners, err := c.Select(files)
	require.NoError(t, err)
	assert.Len(t, winners, 2, "same category, different stems: both stay")
}

func TestClassifier_Select_ConflictIsAnError(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	mtime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	a := hostFile("libcuda.so.1", "/a", 1, mtime)
	b := hostFile("libcuda.so.1", "/b", 1, mtime)

	_, err := c.Select([]domain.HostFile{a, b})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrClassificationConflict))
}

func TestClassifier_Select_Deterministic(t *testing.T) {
	c := newClassifier(t, &domain.Config{})
	now := time.Now()

	files := []domain.HostFile{
		hostFile("libnvidia-glcore.so.535.183.01", "/usr/lib", 0, now),
		hostFile("libGLX_nvidia.so.535.183.01", "/usr/lib", 0, now),
		hostFile("libcuda.so.535.183.01", "/usr/lib", 0, now),
		hostFile("libEGL_nvidia.so.535.183.01", "/usr/lib", 0, now),
	}

	first, err := c.Select(files)
	require.NoError(t, err)

	// Reversed input, same output.
	reversed := make([]domain.HostFile, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}
	second, err := c.Select(reversed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassifier_Select_CatchAll(t *testing.T) {
	now := time.Now()
	vendorDir := []domain.HostFile{
		hostFile("libGLX_nvidia.so.535.183.01", "/opt/drivers", 0, now),
		hostFile("libodd-helper.so.1", "/opt/drivers", 0, now),
		hostFile("notes.txt", "/opt/drivers", 0, now),
		hostFile("libunrelated.so.1", "/usr/lib", 1, now),
	}

	// Disabled: unmatched names are dropped.
	winners, err := newClassifier(t, &domain.Config{}).Select(vendorDir)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	// Enabled: unmatched shared objects next to a vendor library are kept as
	// generic entries; other directories and non-libraries stay excluded.
	winners, err = newClassifier(t, &domain.Config{CatchAll: true}).Select(vendorDir)
	require.NoError(t, err)
	require.Len(t, winners, 2)

	names := []string{winners[0].Name, winners[1].Name}
	assert.Contains(t, names, "libodd-helper.so.1")
	assert.NotContains(t, names, "libunrelated.so.1")
	assert.NotContains(t, names, "notes.txt")
}
