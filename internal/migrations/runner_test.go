package migrations

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

func coreTarget(t *testing.T) *Target {
	t.Helper()
	layout := paths.New(t.TempDir())
	writeFiles(t, layout.SharedMigrationsDir(), blogMigrations())
	return CoreTarget(layout)
}

func TestUpgradeAndDowngrade(t *testing.T) {
	ctx := context.Background()
	url := sqliteURL(t)
	tgt := coreTarget(t)
	r := NewRunner(url)

	require.NoError(t, r.Upgrade(ctx, tgt, Head))
	assert.Equal(t, []string{"comments", "posts", SharedVersionTable}, liveTables(t, url))

	status, err := r.Current(ctx, tgt)
	require.NoError(t, err)
	assert.Equal(t, Status{Version: 2, Applied: true}, status)

	require.NoError(t, r.Downgrade(ctx, tgt, "1"))
	status, err = r.Current(ctx, tgt)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)
	assert.NotContains(t, liveTables(t, url), "comments")

	require.NoError(t, r.Downgrade(ctx, tgt, Base))
	status, err = r.Current(ctx, tgt)
	require.NoError(t, err)
	assert.False(t, status.Applied)
	assert.Equal(t, Base, status.String())
}

func TestUpgradeToVersion(t *testing.T) {
	ctx := context.Background()
	url := sqliteURL(t)
	tgt := coreTarget(t)
	r := NewRunner(url)

	require.NoError(t, r.Upgrade(ctx, tgt, "1"))
	assert.Equal(t, []string{"posts", SharedVersionTable}, liveTables(t, url))
}

func TestUpgradeTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	tgt := coreTarget(t)
	r := NewRunner(sqliteURL(t))

	require.NoError(t, r.Upgrade(ctx, tgt, ""))
	require.NoError(t, r.Upgrade(ctx, tgt, Head))
}

func TestDowngradeRelative(t *testing.T) {
	ctx := context.Background()
	tgt := coreTarget(t)
	r := NewRunner(sqliteURL(t))

	require.NoError(t, r.Upgrade(ctx, tgt, Head))
	require.NoError(t, r.Downgrade(ctx, tgt, "-1"))

	status, err := r.Current(ctx, tgt)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)
}

func TestDowngradeRequiresRevision(t *testing.T) {
	err := NewRunner(sqliteURL(t)).Downgrade(context.Background(), coreTarget(t), "")
	assert.ErrorIs(t, err, ErrRevisionRequired)
}

func TestInvalidRevision(t *testing.T) {
	err := NewRunner(sqliteURL(t)).Upgrade(context.Background(), coreTarget(t), "latest")

	var merr *types.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "upgrade", merr.Op)
	assert.Contains(t, err.Error(), "invalid revision")
}

func TestExternalAppsKeepSeparateLedgers(t *testing.T) {
	ctx := context.Background()
	url := sqliteURL(t)
	r := NewRunner(url)

	dir := t.TempDir()
	payments := &types.AppRecord{
		Name:           "payments",
		Kind:           types.KindExternal,
		FilesystemPath: dir,
		MigrationsPath: filepath.Join(dir, "migrations"),
	}
	writeFiles(t, payments.MigrationsPath, map[string]string{
		"1_create_charges.up.sql":   "CREATE TABLE charges (id INTEGER PRIMARY KEY);",
		"1_create_charges.down.sql": "DROP TABLE charges;",
	})
	auth := &types.AppRecord{
		Name:           "auth",
		Kind:           types.KindExternal,
		MigrationsPath: "migrations",
		Files: fstest.MapFS{
			"migrations/1_create_users.up.sql":   {Data: []byte("CREATE TABLE users (id INTEGER PRIMARY KEY);")},
			"migrations/1_create_users.down.sql": {Data: []byte("DROP TABLE users;")},
			"migrations/2_create_tokens.up.sql":  {Data: []byte("CREATE TABLE tokens (id INTEGER PRIMARY KEY);")},
		},
	}

	layout := paths.New(t.TempDir())
	for _, rec := range []*types.AppRecord{payments, auth} {
		tgt, err := TargetFor(layout, rec)
		require.NoError(t, err)
		require.NoError(t, r.Upgrade(ctx, tgt, Head))
	}

	tables := liveTables(t, url)
	assert.Contains(t, tables, "schema_migrations_payments")
	assert.Contains(t, tables, "schema_migrations_auth")
	assert.NotContains(t, tables, SharedVersionTable)

	authTarget, err := TargetFor(layout, auth)
	require.NoError(t, err)
	status, err := r.Current(ctx, authTarget)
	require.NoError(t, err)
	assert.Equal(t, uint(2), status.Version)

	paymentsTarget, err := TargetFor(layout, payments)
	require.NoError(t, err)
	status, err = r.Current(ctx, paymentsTarget)
	require.NoError(t, err)
	assert.Equal(t, uint(1), status.Version)
}

func TestUpgradeEmptyDirectory(t *testing.T) {
	layout := paths.New(t.TempDir())
	writeFiles(t, layout.SharedMigrationsDir(), map[string]string{"README.md": "migrations"})

	err := NewRunner(sqliteURL(t)).Upgrade(context.Background(), CoreTarget(layout), Head)
	assert.NoError(t, err)
}

func TestUpgradeMissingDirectory(t *testing.T) {
	err := NewRunner(sqliteURL(t)).Upgrade(context.Background(), CoreTarget(paths.New(t.TempDir())), Head)

	var merr *types.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, CoreName, merr.App)
	assert.ErrorIs(t, err, ErrMissingDir)
}

func TestUpgradeFailureIsMigrationError(t *testing.T) {
	layout := paths.New(t.TempDir())
	writeFiles(t, layout.SharedMigrationsDir(), map[string]string{
		"1_broken.up.sql": "CREATE TABLE;",
	})

	err := NewRunner(sqliteURL(t)).Upgrade(context.Background(), CoreTarget(layout), Head)
	var merr *types.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "upgrade", merr.Op)
}

func TestRunnerRecordsMetrics(t *testing.T) {
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	r := NewRunner(sqliteURL(t), WithMetrics(metrics))

	require.NoError(t, r.Upgrade(context.Background(), coreTarget(t), Head))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.MigrationOps.WithLabelValues(CoreName, "upgrade", "ok")))
}

func TestUnsupportedDatabase(t *testing.T) {
	err := NewRunner("mysql://localhost/app").Upgrade(context.Background(), coreTarget(t), Head)
	assert.ErrorIs(t, err, ErrUnsupportedDatabase)
}
