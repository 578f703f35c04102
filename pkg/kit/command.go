package kit

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/appkit/internal/cli"
)

// Command returns the appkit command line bound to the kit's catalog and
// settings, with a "serve" command that runs the host engine.
func (k *Kit) Command() *cobra.Command {
	root := cli.NewRootCommand(cli.Options{Catalog: k.catalog, Settings: k.settings})
	root.AddCommand(k.serveCommand())
	return root
}

func (k *Kit) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load every app and serve the host engine",
		Long: `Load the configured apps, run their entrypoints, mount their routes and
serve on HOST:PORT until interrupted.

Examples:
  appkit serve
  PORT=9000 appkit serve --root ./myproject`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f := cmd.Flag("root"); f != nil && f.Changed {
				k.settings.ProjectRoot = f.Value.String()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return k.Run(ctx)
		},
	}
}

// Execute runs the command line and returns the process exit code.
func (k *Kit) Execute() int {
	return cli.Run(k.Command())
}

// Main runs the command line with settings from the environment and
// exits.
func Main(opts ...Option) {
	os.Exit(New(nil, opts...).Execute())
}
