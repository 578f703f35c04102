package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/appkit/internal/domain/registry"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/pkg/code"
)

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/GriffinCanCode/appkit/internal/cli.Version=1.2.0"
var Version = "dev"

// Options configures the command tree.
type Options struct {
	Catalog  *code.Catalog
	Settings *config.Settings
	Out      io.Writer
	Err      io.Writer
}

type env struct {
	opts    Options
	root    string
	dbURL   string
	verbose bool
	debug   bool
	quiet   bool
}

// NewRootCommand builds the appkit command tree. Zero options fall back to
// the default catalog, settings from the environment, and stdout/stderr.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Catalog == nil {
		opts.Catalog = code.Default
	}
	if opts.Settings == nil {
		opts.Settings = config.LoadOrDefault()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	e := &env{opts: opts}

	root := &cobra.Command{
		Use:   "appkit",
		Short: "Load, inspect and migrate appkit apps",
		Long: `appkit loads the internal and external apps listed in appkit.toml,
mounts their routes on a gin engine and manages their schema migrations.

Examples:
  appkit app list
  appkit app validate payments --json
  appkit migrate core -m "add posts"
  appkit migrate upgrade`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&e.root, "root", opts.Settings.ProjectRoot, "Project root directory")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "Verbose output")
	pf.BoolVar(&e.debug, "debug", opts.Settings.Debug, "Debug logging")
	pf.BoolVarP(&e.quiet, "quiet", "q", false, "Only print errors")

	root.AddCommand(
		newVersionCommand(e),
		newAppCommand(e),
		newMigrateCommand(e),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(opts Options) int {
	return Run(NewRootCommand(opts))
}

// Run executes cmd, printing any error, and returns the exit code.
func Run(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}

// logger logs warnings and above unless -v or --debug raise the level.
func (e *env) logger() *logging.Logger {
	level := "warn"
	switch {
	case e.debug:
		level = "debug"
	case e.verbose:
		level = "info"
	}
	l := logging.FromSettings(level, e.opts.Settings.Logging.Development || e.debug)
	if e.quiet {
		return l.Quiet()
	}
	return l
}

func (e *env) layout() paths.Layout {
	return paths.New(e.root)
}

func (e *env) loader() *registry.Loader {
	return registry.NewLoader(e.root,
		registry.WithCatalog(e.opts.Catalog),
		registry.WithLogger(e.logger()),
	)
}

// printf writes a status line unless --quiet is set.
func (e *env) printf(format string, args ...any) {
	if e.quiet {
		return
	}
	fmt.Fprintf(e.opts.Out, format, args...)
}
