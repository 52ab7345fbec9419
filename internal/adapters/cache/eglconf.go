package cache

import (
	"encoding/json"
	"os"
	"path/filepath"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/zerr"
)

// eglICD is the libglvnd ICD description format.
type eglICD struct {
	FileFormatVersion string  `json:"file_format_version"`
	ICD               icdBody `json:"ICD"`
}

type icdBody struct {
	LibraryPath string `json:"library_path"`
}

// eglConfFiles lists the ICD configuration files pointing libglvnd at the
// staged EGL objects. Only sonames are referenced so the loader picks the
// matching object from the injected search path.
var eglConfFiles = []struct {
	name string
	dso  string
}{
	{"10_nvidia.json", "libEGL_nvidia.so.0"},
	{"10_nvidia_wayland.json", "libnvidia-egl-wayland.so.1"},
	{"15_nvidia_gbm.json", "libnvidia-egl-gbm.so.1"},
}

// writeEGLConfFiles generates the vendor ICD configuration directory libglvnd
// reads via __EGL_VENDOR_LIBRARY_DIRS.
func (s *Store) writeEGLConfFiles(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", dir)
	}
	for _, conf := range eglConfFiles {
		data, err := json.Marshal(eglICD{
			FileFormatVersion: "1.0.0",
			ICD:               icdBody{LibraryPath: conf.dso},
		})
		if err != nil {
			return zerr.Wrap(err, "failed to marshal EGL ICD config")
		}
		path := filepath.Join(dir, conf.name)
		s.logger.Debug("writing EGL ICD config", "path", path, "dso", conf.dso)
		if err := writeFileAtomic(path, data, 0o644); err != nil {
			return zerr.With(zerr.Wrap(domain.ErrCacheIO, err.Error()), "path", path)
		}
	}
	return nil
}
