// Package commands implements the CLI commands for glhost.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/glhost/internal/app"
	"go.trai.ch/glhost/internal/build"
	"go.trai.ch/glhost/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for glhost.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, opts app.RunOptions) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:   "glhost [flags] COMMAND [ARGS...]",
		Short: "Run a hermetically built binary against the host graphics drivers",
		Long: "glhost locates the host's proprietary GL/Cuda driver libraries, stages a\n" +
			"patched copy in a private cache and launches COMMAND with the environment\n" +
			"required to load them.",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))

	rootCmd.Flags().StringP("driver-directory", "d", "",
		"Use the driver libraries contained in this directory instead of discovering them from the host linker configuration")
	rootCmd.Flags().BoolP("print-ld-library-path", "p", false,
		"Print the LD_LIBRARY_PATH to inject instead of running a command")

	// Everything after the first positional argument belongs to the wrapped
	// command, including its flags.
	rootCmd.Flags().SetInterspersed(false)

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.RunE = c.runRoot
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) runRoot(cmd *cobra.Command, args []string) error {
	driverDir, err := cmd.Flags().GetString("driver-directory")
	if err != nil {
		return err
	}
	printOnly, err := cmd.Flags().GetBool("print-ld-library-path")
	if err != nil {
		return err
	}

	if printOnly && len(args) > 0 {
		return zerr.Wrap(domain.ErrUsage, "-p and COMMAND are mutually exclusive")
	}
	if !printOnly && len(args) == 0 {
		_ = cmd.Help()
		return zerr.Wrap(domain.ErrUsage, "no command given")
	}

	return c.app.Run(cmd.Context(), app.RunOptions{
		DriverDir: driverDir,
		PrintOnly: printOnly,
		Argv:      args,
	})
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
