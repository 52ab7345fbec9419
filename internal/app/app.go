// Package app implements the driver resolution pipeline for glhost.
package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/glhost/internal/core/ports"
	"go.trai.ch/glhost/internal/engine/classifier"
	"go.trai.ch/zerr"
)

// App wires the pipeline stages together: locate, classify, stage, build the
// environment, launch. Data flows strictly downstream.
type App struct {
	locator    ports.Locator
	classifier *classifier.Classifier
	store      ports.CacheStore
	launcher   ports.Launcher
	logger     ports.Logger

	stdout io.Writer
}

// New creates a new App instance.
func New(
	locator ports.Locator,
	cls *classifier.Classifier,
	store ports.CacheStore,
	launcher ports.Launcher,
	logger ports.Logger,
) *App {
	return &App{
		locator:    locator,
		classifier: cls,
		store:      store,
		launcher:   launcher,
		logger:     logger,
		stdout:     os.Stdout,
	}
}

// WithStdout redirects print mode output. Used by tests.
func (a *App) WithStdout(w io.Writer) *App {
	a.stdout = w
	return a
}

// RunOptions configures one pipeline invocation.
type RunOptions struct {
	// DriverDir, when non-empty, is scanned exclusively instead of the host
	// linker configuration.
	DriverDir string
	// PrintOnly emits the computed search path instead of executing anything.
	PrintOnly bool
	// Argv is the target command and its arguments, passed through verbatim.
	Argv []string
}

// Run executes the pipeline and, unless PrintOnly is set, replaces the
// current process with the target command. On full success of the exec path
// it does not return.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	dirs, err := a.locator.Directories(opts.DriverDir)
	if err != nil {
		return err
	}

	var files []domain.HostFile
	for rank, dir := range dirs {
		found, err := a.locator.Scan(dir, rank)
		if err != nil {
			return err
		}
		files = append(files, found...)
	}

	winners, err := a.classifier.Select(files)
	if err != nil {
		return err
	}

	if err := requireVendor(winners); err != nil {
		return err
	}

	result, err := a.store.Sync(ctx, winners)
	if err != nil {
		return err
	}

	env := BuildEnvironment(result)
	for name, value := range env {
		a.logger.Debug(fmt.Sprintf("resolved %s", name), "value", value)
	}

	if opts.PrintOnly {
		return a.launcher.Print(env, a.stdout)
	}
	return a.launcher.Exec(env, opts.Argv)
}

// requireVendor enforces that classification produced at least one GLX or EGL
// vendor dispatch library; without one the wrapped program cannot initialize
// any GL stack and proceeding would stage a useless partial driver set.
func requireVendor(winners []domain.DriverFile) error {
	for _, w := range winners {
		switch w.Category {
		case domain.CategoryGLXVendor, domain.CategoryEGLVendor:
			return nil
		}
	}
	err := zerr.Wrap(domain.ErrNoDriverFound, "no GLX or EGL vendor library on this host")
	return zerr.With(err, "hint", "point --driver-directory at the directory holding the driver libraries")
}
