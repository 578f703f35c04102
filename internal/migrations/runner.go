package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Symbolic revisions.
const (
	Head = "head"
	Base = "base"
)

var ErrRevisionRequired = errors.New("revision is required")

type options struct {
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Option configures a Runner or Generator.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records migration operations.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Status is the applied state of a target.
type Status struct {
	Version uint
	Dirty   bool
	Applied bool
}

func (s Status) String() string {
	if !s.Applied {
		return Base
	}
	if s.Dirty {
		return fmt.Sprintf("%d (dirty)", s.Version)
	}
	return strconv.FormatUint(uint64(s.Version), 10)
}

// Runner applies migrations against one database.
type Runner struct {
	url string
	options
}

// NewRunner creates a runner for the database at url.
func NewRunner(url string, opts ...Option) *Runner {
	return &Runner{url: url, options: newOptions(opts)}
}

// Upgrade applies migrations up to rev, which is Head or a version.
func (r *Runner) Upgrade(ctx context.Context, t *Target, rev string) error {
	if rev == "" {
		rev = Head
	}
	return r.run(ctx, t, "upgrade", func(m *migrate.Migrate) error {
		if rev == Head {
			return m.Up()
		}
		v, err := parseVersion(rev)
		if err != nil {
			return err
		}
		return m.Migrate(v)
	})
}

// Downgrade reverts migrations down to rev: Base reverts all, a version
// migrates to it, and -N reverts the last N.
func (r *Runner) Downgrade(ctx context.Context, t *Target, rev string) error {
	if rev == "" {
		return &types.MigrationError{App: t.Name, Op: "downgrade", Err: ErrRevisionRequired}
	}
	return r.run(ctx, t, "downgrade", func(m *migrate.Migrate) error {
		if rev == Base {
			return m.Down()
		}
		if strings.HasPrefix(rev, "-") {
			n, err := strconv.Atoi(rev[1:])
			if err != nil || n <= 0 {
				return fmt.Errorf("invalid relative revision %q", rev)
			}
			return m.Steps(-n)
		}
		v, err := parseVersion(rev)
		if err != nil {
			return err
		}
		return m.Migrate(v)
	})
}

// Current returns the applied state of t.
func (r *Runner) Current(ctx context.Context, t *Target) (Status, error) {
	m, err := r.instance(ctx, t)
	if err != nil {
		return Status{}, &types.MigrationError{App: t.Name, Op: "current", Err: err}
	}
	defer closeInstance(m)

	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, &types.MigrationError{App: t.Name, Op: "current", Err: err}
	}
	return Status{Version: v, Dirty: dirty, Applied: true}, nil
}

func (r *Runner) run(ctx context.Context, t *Target, op string, fn func(*migrate.Migrate) error) error {
	timer := monitoring.NewTimer(r.metrics, t.Name, op)
	log := r.logger.With(zap.String("target", t.Name), zap.String("op", op),
		zap.String("version_table", t.VersionTable))

	m, err := r.instance(ctx, t)
	if err != nil {
		timer.Stop("error")
		return &types.MigrationError{App: t.Name, Op: op, Err: err}
	}
	defer closeInstance(m)

	err = fn(m)
	switch {
	case err == nil:
		log.Info("Migrations applied")
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("Migrations already up to date")
	case isEmptySource(err):
		log.Info("No migrations found", zap.String("location", t.Location()))
	default:
		timer.Stop("error")
		log.Error("Migration failed", zap.Error(err))
		return &types.MigrationError{App: t.Name, Op: op, Err: err}
	}
	timer.Stop("ok")
	return nil
}

func (r *Runner) instance(ctx context.Context, t *Target) (*migrate.Migrate, error) {
	src, err := t.Source()
	if err != nil {
		return nil, err
	}
	db, err := Open(ctx, r.url)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	m, err := newMigrate(src, db, t.VersionTable)
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return nil, err
	}
	m.Log = migrateLogger{log: r.logger}
	return m, nil
}

func newMigrate(src source.Driver, db *sqlx.DB, table string) (*migrate.Migrate, error) {
	var (
		drv database.Driver
		err error
	)
	switch db.DriverName() {
	case DriverPostgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{MigrationsTable: table})
	case DriverSQLite:
		drv, err = sqlite.WithInstance(db.DB, &sqlite.Config{MigrationsTable: table})
	default:
		return nil, fmt.Errorf("%w: driver %q", ErrUnsupportedDatabase, db.DriverName())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to prepare version table %s: %w", table, err)
	}
	return migrate.NewWithInstance("iofs", src, db.DriverName(), drv)
}

func closeInstance(m *migrate.Migrate) {
	_, _ = m.Close()
}

// A source with no migration files reports a missing first version.
func isEmptySource(err error) bool {
	var pe *fs.PathError
	return errors.As(err, &pe) && pe.Op == "first" && errors.Is(err, fs.ErrNotExist)
}

func parseVersion(rev string) (uint, error) {
	v, err := strconv.ParseUint(rev, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid revision %q: expected a version number", rev)
	}
	return uint(v), nil
}

// migrateLogger routes golang-migrate output to zap at debug level.
type migrateLogger struct {
	log *logging.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l migrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zapcore.DebugLevel)
}
