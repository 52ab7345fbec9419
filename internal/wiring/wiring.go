// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/glhost/internal/adapters/cache"
	_ "go.trai.ch/glhost/internal/adapters/config"
	_ "go.trai.ch/glhost/internal/adapters/ldconf"
	_ "go.trai.ch/glhost/internal/adapters/logger"
	_ "go.trai.ch/glhost/internal/adapters/patchelf"
	_ "go.trai.ch/glhost/internal/adapters/shell"
	// Register app and engine nodes.
	_ "go.trai.ch/glhost/internal/app"
	_ "go.trai.ch/glhost/internal/engine/classifier"
)
