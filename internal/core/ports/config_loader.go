package ports

import "go.trai.ch/glhost/internal/core/domain"

// ConfigLoader reads the optional tool configuration.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load returns the configuration, or defaults when no file exists.
	Load() (*domain.Config, error)
}
