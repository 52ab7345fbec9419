// Package main is the entry point for the glhost launcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/glhost/cmd/glhost/commands"
	"go.trai.ch/glhost/internal/app"
	"go.trai.ch/glhost/internal/core/domain"
	_ "go.trai.ch/glhost/internal/wiring"
)

// Stable exit codes, scripts depend on these.
const (
	exitOK            = 0
	exitGeneric       = 1
	exitNoDriverFound = 2
	exitPatchFailure  = 3
	exitExecFailure   = 4
)

// ComponentProvider is a function that returns the application components.
type ComponentProvider func(context.Context) (*app.Components, func(), error)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stderr, func(ctx context.Context) (*app.Components, func(), error) {
		c, _, err := graft.ExecuteFor[*app.Components](ctx)
		return c, func() {}, err
	}))
}

func run(
	ctx context.Context,
	args []string,
	stderr io.Writer,
	provider ComponentProvider,
) int {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	components, _, err := provider(ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
		return exitGeneric
	}

	cli := commands.New(components.App)
	cli.SetArgs(args)
	cli.SetOutput(os.Stdout, stderr)

	if err := cli.Execute(ctx); err != nil {
		if errors.Is(err, domain.ErrUsage) {
			_, _ = fmt.Fprintln(stderr, "Error: "+err.Error())
			return exitGeneric
		}
		components.Logger.Error(err)
		return exitCodeFor(err)
	}
	return exitOK
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNoDriverFound):
		return exitNoDriverFound
	case errors.Is(err, domain.ErrPatchFailed):
		return exitPatchFailure
	case errors.Is(err, domain.ErrExecFailed):
		return exitExecFailure
	default:
		return exitGeneric
	}
}
