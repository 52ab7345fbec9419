// Package config provides the configuration loader for glhost.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the search directories.
const FileName = "glhost.yaml"

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file. The file is
// optional: a missing file yields the zero configuration.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load resolves the configuration file and parses it. Resolution order:
// $GLHOST_CONFIG (must exist when set), $XDG_CONFIG_HOME/glhost/glhost.yaml
// (~/.config fallback), /etc/glhost/glhost.yaml.
func (l *Loader) Load() (*domain.Config, error) {
	if explicit := os.Getenv("GLHOST_CONFIG"); explicit != "" {
		return l.loadFile(explicit)
	}

	for _, path := range searchPaths() {
		cfg, err := l.loadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		l.Logger.Debug("loaded configuration", "path", path)
		return cfg, nil
	}

	return &domain.Config{}, nil
}

func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the config search list
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to read config file"), "path", path)
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		cfgErr := zerr.With(zerr.Wrap(domain.ErrConfigInvalid, "failed to parse config file"), "path", path)
		return nil, zerr.With(cfgErr, "cause", err.Error())
	}
	return &cfg, nil
}

func searchPaths() []string {
	var paths []string
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		paths = append(paths, filepath.Join(configHome, "glhost", FileName))
	}
	return append(paths, filepath.Join("/etc", "glhost", FileName))
}
