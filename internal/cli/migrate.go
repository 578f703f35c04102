package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/appkit/internal/domain/metadata"
	"github.com/GriffinCanCode/appkit/internal/domain/registry"
	"github.com/GriffinCanCode/appkit/internal/migrations"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// App migration actions.
const (
	ActionMakeMigrations = "makemigrations"
	ActionUpgrade        = "upgrade"
	ActionDowngrade      = "downgrade"
	ActionPreview        = "preview"
)

func newMigrateCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Generate and apply schema migrations",
		Long: `Core and internal apps share one migration stream under core/db/migrations
and one version table. External apps ship their own migrations and keep a
version table of their own.

Examples:
  appkit migrate core -m "add posts"
  appkit migrate preview
  appkit migrate upgrade -r 20260301123000
  appkit migrate app payments upgrade
  appkit migrate all`,
	}
	cmd.PersistentFlags().StringVar(&e.dbURL, "database-url", e.opts.Settings.DatabaseURL, "Database URL (postgres:// or sqlite://)")

	cmd.AddCommand(
		newMigrateCoreCommand(e),
		newMigrateAppCommand(e),
		newMigrateSharedCommand(e, ActionPreview, "Print the SQL of pending shared migrations"),
		newMigrateSharedCommand(e, ActionUpgrade, "Apply shared migrations"),
		newMigrateSharedCommand(e, ActionDowngrade, "Revert shared migrations"),
		newMigrateAllCommand(e),
	)
	return cmd
}

func (e *env) runner() *migrations.Runner {
	return migrations.NewRunner(e.dbURL, migrations.WithLogger(e.logger()))
}

func newMigrateCoreCommand(e *env) *cobra.Command {
	var message string
	cmd := &cobra.Command{
		Use:   "core",
		Short: "Generate a shared migration from core and internal app models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := e.loader().LoadAll()
			if err != nil {
				return err
			}
			return e.makeShared(cmd.Context(), reg, migrations.CoreTarget(e.layout()), message)
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "Migration message")
	return cmd
}

// makeShared writes a migration for the merged core and internal schema
// into t.
func (e *env) makeShared(ctx context.Context, reg *registry.Registry, t *migrations.Target, message string) error {
	if message == "" {
		return migrations.ErrMessageRequired
	}
	desired, exclude, err := migrations.SharedSchema(metadata.NewCollector(e.opts.Catalog), e.layout(), reg.List())
	if err != nil {
		return err
	}
	gen := migrations.NewGenerator(e.dbURL, migrations.WithLogger(e.logger()))
	path, err := gen.Generate(ctx, t, message, desired, exclude)
	if errors.Is(err, migrations.ErrEmptyDiff) {
		e.printf("No changes detected\n")
		return nil
	}
	if err != nil {
		return err
	}
	e.printf("Created migration %s\n", path)
	return nil
}

func newMigrateAppCommand(e *env) *cobra.Command {
	var revision, message string
	cmd := &cobra.Command{
		Use:   "app <name> <makemigrations|upgrade|downgrade|preview>",
		Short: "Run a migration action for one app",
		Long: `Internal apps only support makemigrations; their migrations live in the
shared stream, which is applied with 'appkit migrate upgrade'. External
apps support upgrade, downgrade and preview.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateApp(cmd.Context(), e, args[0], args[1], revision, message)
		},
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "", "Target revision (head, base, a version, or -N steps for downgrade)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "Migration message")
	return cmd
}

func runMigrateApp(ctx context.Context, e *env, name, action, revision, message string) error {
	switch action {
	case ActionMakeMigrations, ActionUpgrade, ActionDowngrade, ActionPreview:
	default:
		return fmt.Errorf("unknown action %q (valid: makemigrations, upgrade, downgrade, preview)", action)
	}

	reg, err := e.loader().LoadAll()
	if err != nil {
		return err
	}
	rec, ok := reg.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrAppNotFound, name)
	}

	if rec.Kind == types.KindInternal {
		if action != ActionMakeMigrations {
			return fmt.Errorf("internal app %s uses the shared migration stream: use 'appkit migrate %s' instead", name, action)
		}
		t, err := migrations.TargetFor(e.layout(), rec)
		if err != nil {
			return err
		}
		if !t.Exists() {
			return fmt.Errorf("%w: %s (run 'appkit migrate core' first)", migrations.ErrMissingDir, t.Location())
		}
		return e.makeShared(ctx, reg, t, message)
	}

	if action == ActionMakeMigrations {
		return &types.MigrationError{App: name, Op: ActionMakeMigrations, Err: migrations.ErrExternalApp}
	}
	t, err := migrations.TargetFor(e.layout(), rec)
	if err != nil {
		return err
	}
	return e.apply(ctx, t, action, revision)
}

func newMigrateSharedCommand(e *env, action, short string) *cobra.Command {
	var revision string
	cmd := &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t := migrations.CoreTarget(e.layout())
			if !t.Exists() {
				return fmt.Errorf("%w: %s", migrations.ErrMissingDir, t.Location())
			}
			return e.apply(cmd.Context(), t, action, revision)
		},
	}
	usage := "Target revision (head or a version)"
	if action == ActionDowngrade {
		usage = "Target revision (base, a version, or -N steps)"
	}
	cmd.Flags().StringVarP(&revision, "revision", "r", "", usage)
	return cmd
}

// apply runs upgrade, downgrade or preview against t.
func (e *env) apply(ctx context.Context, t *migrations.Target, action, revision string) error {
	r := e.runner()
	switch action {
	case ActionUpgrade:
		if err := r.Upgrade(ctx, t, revision); err != nil {
			return err
		}
		e.printf("Upgraded %s to %s\n", t.Name, orHead(revision))
	case ActionDowngrade:
		if err := r.Downgrade(ctx, t, revision); err != nil {
			return err
		}
		e.printf("Downgraded %s to %s\n", t.Name, revision)
	case ActionPreview:
		sql, err := r.Preview(ctx, t, revision)
		if err != nil {
			return err
		}
		if sql == "" {
			e.printf("%s is up to date\n", t.Name)
			return nil
		}
		fmt.Fprint(e.opts.Out, sql)
	}
	return nil
}

func newMigrateAllCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "Upgrade core, then every external app",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateAll(cmd.Context(), e)
		},
	}
}

func runMigrateAll(ctx context.Context, e *env) error {
	reg, err := e.loader().LoadAll()
	if err != nil {
		return err
	}
	layout := e.layout()
	r := e.runner()

	core := migrations.CoreTarget(layout)
	if core.Exists() {
		if err := r.Upgrade(ctx, core, migrations.Head); err != nil {
			return err
		}
		e.printf("core: upgraded\n")
	} else {
		e.printf("core: no migrations directory at %s, skipping\n", core.Location())
	}

	for _, rec := range migrations.OrderApps(reg) {
		if rec.Kind == types.KindInternal {
			e.printf("%s: included in core migrations\n", rec.Name)
			continue
		}
		t, err := migrations.TargetFor(layout, rec)
		if errors.Is(err, migrations.ErrNoMigrationsPath) {
			e.printf("%s: no migrations declared, skipping\n", rec.Name)
			continue
		}
		if err != nil {
			return err
		}
		if !t.Exists() {
			e.printf("%s: migrations not found at %s, skipping\n", rec.Name, t.Location())
			continue
		}
		if err := r.Upgrade(ctx, t, migrations.Head); err != nil {
			return err
		}
		e.printf("%s: upgraded\n", rec.Name)
	}
	return nil
}

func orHead(rev string) string {
	if rev == "" {
		return migrations.Head
	}
	return rev
}
