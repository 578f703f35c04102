package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/migrations"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
	"github.com/GriffinCanCode/appkit/pkg/schema"
	"github.com/GriffinCanCode/appkit/tests/helpers/testutil"
)

func noop(*gin.Engine) {}

type harness struct {
	t       *testing.T
	project *testutil.Project
	dbURL   string
}

func newHarness(t *testing.T) *harness {
	return &harness{
		t:       t,
		project: testutil.NewProject(t),
		dbURL:   "sqlite://" + filepath.Join(t.TempDir(), "app.db"),
	}
}

func (h *harness) run(args ...string) (string, error) {
	h.t.Helper()
	settings := config.Default()
	settings.DatabaseURL = h.dbURL
	settings.ProjectRoot = h.project.Root

	var out, errOut bytes.Buffer
	cmd := NewRootCommand(Options{
		Catalog:  h.project.Catalog,
		Settings: settings,
		Out:      &out,
		Err:      &errOut,
	})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// blogProject has an internal blog app with a posts model and an
// on-disk external payments app with one migration.
func blogProject(t *testing.T) *harness {
	h := newHarness(t)
	p := h.project
	p.WriteConfig("apps.blog", "payments")
	p.AddInternalApp("blog", noop)
	require.NoError(t, p.Catalog.Register(code.Module{Path: "apps.blog.models", Attrs: map[string]any{
		"Metadata": schema.New(schema.Table{Name: "posts", Columns: []schema.Column{
			{Name: "id", Type: "INTEGER", PrimaryKey: true},
			{Name: "title", Type: "TEXT"},
		}}),
	}}))
	p.AddExternalApp(testutil.ExternalApp{
		Path:     "payments",
		Package:  "example.com/payments",
		Manifest: testutil.Manifest("payments", "1.2.0", "payments:Register", `migrations = "migrations"`),
		Files: map[string]string{
			"migrations/1_create_charges.up.sql":   "CREATE TABLE charges (id INTEGER PRIMARY KEY);",
			"migrations/1_create_charges.down.sql": "DROP TABLE charges;",
		},
		OnDisk: true,
		Attrs:  map[string]any{"Register": noop},
	})
	return h
}

func TestVersion(t *testing.T) {
	out, err := newHarness(t).run("version")
	require.NoError(t, err)
	assert.Contains(t, out, "appkit "+Version)
}

func TestAppList(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("app", "list")
	require.NoError(t, err)
	assert.Equal(t, "Apps in project:\n"+
		"  - blog (internal) - prefix: /blog\n"+
		"  - payments (external) - prefix: /payments\n", out)
}

func TestAppListVerbose(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("app", "list", "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "      import: apps.blog\n")
	assert.Contains(t, out, "      migrations: "+filepath.Join(h.project.Root, "core", "db", "migrations")+"\n")
	assert.Contains(t, out, "      path: "+filepath.Join(h.project.Root, "vendor", "payments")+"\n")
}

func TestAppListEmptyPrefix(t *testing.T) {
	h := newHarness(t)
	h.project.WriteConfig("hooks")
	h.project.AddExternalApp(testutil.ExternalApp{
		Path:     "hooks",
		Manifest: testutil.Manifest("hooks", "0.1.0", "hooks:Register", `route_prefix = ""`),
		Attrs:    map[string]any{"Register": noop},
	})
	out, err := h.run("app", "list")
	require.NoError(t, err)
	assert.Equal(t, "Apps in project:\n  - hooks (external) - (no prefix)\n", out)
}

func TestAppListNoApps(t *testing.T) {
	out, err := newHarness(t).run("app", "list")
	require.NoError(t, err)
	assert.Equal(t, "No apps found in project\n", out)
}

func TestAppListJSON(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("app", "list", "-o", "json")
	require.NoError(t, err)

	var apps []AppSummary
	require.NoError(t, json.Unmarshal([]byte(out), &apps))
	require.Len(t, apps, 2)
	assert.Equal(t, "blog", apps[0].Name)
	assert.Equal(t, "0.1.0", apps[0].Version)
	assert.Equal(t, "payments", apps[1].Name)
	assert.Equal(t, "external", apps[1].Kind)
	assert.Equal(t, "1.2.0", apps[1].Version)
}

func TestAppListYAML(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("app", "list", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "- name: blog\n")
	assert.Contains(t, out, "  route_prefix: /payments\n")
}

func TestAppListUnknownFormat(t *testing.T) {
	_, err := newHarness(t).run("app", "list", "-o", "xml")
	assert.ErrorContains(t, err, `unknown output format "xml"`)
}

func TestAppValidateInternal(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("app", "validate", "blog")
	require.NoError(t, err)
	assert.Equal(t, "Validating blog (internal)\nblog is valid\n", out)
}

func TestAppValidateJSONReportsErrors(t *testing.T) {
	h := newHarness(t)
	h.project.WriteConfig("shop")
	h.project.AddExternalApp(testutil.ExternalApp{
		Path:     "shop",
		Manifest: "[appkit]\nname = \"shop\"\nversion = \"1.0\"\nentrypoint = \"shop\"\n",
	})

	out, err := h.run("app", "validate", "shop", "--json")
	assert.ErrorIs(t, err, ErrInvalidApp)

	var report ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "shop", report.App)
	assert.Equal(t, "external", report.Type)
	assert.False(t, report.Valid)
	assert.Contains(t, report.Errors, "invalid entrypoint format (expected 'module:attribute'): shop")
	assert.Contains(t, report.Errors, "external apps must specify 'migrations' in manifest")
}

func TestAppValidateMissingManifest(t *testing.T) {
	h := newHarness(t)
	h.project.WriteConfig("bare")
	require.NoError(t, h.project.Catalog.Register(code.Module{Path: "bare", Files: fstest.MapFS{}}))

	out, err := h.run("app", "validate", "bare", "--json")
	assert.ErrorIs(t, err, ErrInvalidApp)

	var report ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "manifest")
	assert.Empty(t, report.Warnings)
}

func TestAppValidateDuplicateNames(t *testing.T) {
	h := newHarness(t)
	h.project.WriteConfig("apps.blog", "ext.blog")
	h.project.AddInternalApp("blog", noop)
	h.project.AddExternalApp(testutil.ExternalApp{
		Path:     "ext.blog",
		Manifest: testutil.Manifest("blog", "1.0.0", "ext.blog:Register"),
	})

	out, err := h.run("app", "validate", "apps.blog")
	require.NoError(t, err)
	assert.Contains(t, out, `warning: duplicate app name "blog" in entries: apps.blog, ext.blog`)

	_, err = h.run("app", "validate", "blog")
	assert.ErrorContains(t, err, `multiple entries match "blog": apps.blog, ext.blog`)
}

func TestAppValidateUnknown(t *testing.T) {
	h := blogProject(t)
	_, err := h.run("app", "validate", "nope")
	assert.ErrorIs(t, err, types.ErrAppNotFound)
}

func TestAppValidateRequiresProjectConfig(t *testing.T) {
	_, err := newHarness(t).run("app", "validate", "blog")
	var cerr *types.ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestMigrateCoreUpgradePreview(t *testing.T) {
	h := blogProject(t)

	out, err := h.run("migrate", "core", "-m", "create posts")
	require.NoError(t, err)
	assert.Contains(t, out, "Created migration ")

	dir := filepath.Join(h.project.Root, "core", "db", "migrations")
	files, err := filepath.Glob(filepath.Join(dir, "*_create_posts.up.sql"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	out, err = h.run("migrate", "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE posts")

	out, err = h.run("migrate", "upgrade")
	require.NoError(t, err)
	assert.Equal(t, "Upgraded core to head\n", out)

	out, err = h.run("migrate", "preview")
	require.NoError(t, err)
	assert.Equal(t, "core is up to date\n", out)

	out, err = h.run("migrate", "core", "-m", "again")
	require.NoError(t, err)
	assert.Equal(t, "No changes detected\n", out)

	out, err = h.run("migrate", "downgrade", "-r", "base")
	require.NoError(t, err)
	assert.Equal(t, "Downgraded core to base\n", out)
}

func TestMigrateCoreRequiresMessage(t *testing.T) {
	h := blogProject(t)
	_, err := h.run("migrate", "core")
	assert.ErrorIs(t, err, migrations.ErrMessageRequired)
}

func TestMigrateSharedWithoutDirectory(t *testing.T) {
	h := blogProject(t)
	_, err := h.run("migrate", "upgrade")
	assert.ErrorIs(t, err, migrations.ErrMissingDir)
}

func TestMigrateDowngradeRequiresRevision(t *testing.T) {
	h := blogProject(t)
	h.project.WriteFile("core/db/migrations/1_init.up.sql", "CREATE TABLE things (id INTEGER);")
	_, err := h.run("migrate", "downgrade")
	assert.ErrorIs(t, err, migrations.ErrRevisionRequired)
}

func TestMigrateAppExternal(t *testing.T) {
	h := blogProject(t)

	out, err := h.run("migrate", "app", "payments", "preview")
	require.NoError(t, err)
	assert.Contains(t, out, "CREATE TABLE charges")

	out, err = h.run("migrate", "app", "payments", "upgrade")
	require.NoError(t, err)
	assert.Equal(t, "Upgraded payments to head\n", out)

	_, err = h.run("migrate", "app", "payments", "downgrade")
	assert.ErrorIs(t, err, migrations.ErrRevisionRequired)

	out, err = h.run("migrate", "app", "payments", "downgrade", "-r", "base")
	require.NoError(t, err)
	assert.Equal(t, "Downgraded payments to base\n", out)
}

func TestMigrateAppRules(t *testing.T) {
	h := blogProject(t)

	_, err := h.run("migrate", "app", "payments", "makemigrations", "-m", "x")
	assert.ErrorIs(t, err, migrations.ErrExternalApp)

	_, err = h.run("migrate", "app", "blog", "upgrade")
	assert.ErrorContains(t, err, "use 'appkit migrate upgrade' instead")

	_, err = h.run("migrate", "app", "blog", "makemigrations", "-m", "posts")
	assert.ErrorIs(t, err, migrations.ErrMissingDir)

	_, err = h.run("migrate", "app", "blog", "squash")
	assert.ErrorContains(t, err, `unknown action "squash"`)

	_, err = h.run("migrate", "app", "ghost", "upgrade")
	assert.ErrorIs(t, err, types.ErrAppNotFound)
}

func TestMigrateAppInternalMakeMigrations(t *testing.T) {
	h := blogProject(t)
	dir := filepath.Join(h.project.Root, "core", "db", "migrations")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	out, err := h.run("migrate", "app", "blog", "makemigrations", "-m", "posts")
	require.NoError(t, err)
	assert.Contains(t, out, "Created migration "+dir)
}

func TestMigrateAll(t *testing.T) {
	h := blogProject(t)
	h.project.WriteConfig("apps.blog", "payments", "hooks")
	h.project.AddExternalApp(testutil.ExternalApp{
		Path:     "hooks",
		Manifest: testutil.Manifest("hooks", "0.1.0", "hooks:Register"),
		Attrs:    map[string]any{"Register": noop},
	})

	out, err := h.run("migrate", "all")
	require.NoError(t, err)
	assert.Equal(t,
		"core: no migrations directory at "+filepath.Join(h.project.Root, "core", "db", "migrations")+", skipping\n"+
			"blog: included in core migrations\n"+
			"payments: upgraded\n"+
			"hooks: no migrations declared, skipping\n", out)
}

func TestQuietSuppressesStatus(t *testing.T) {
	h := blogProject(t)
	out, err := h.run("--quiet", "migrate", "app", "payments", "upgrade")
	require.NoError(t, err)
	assert.Empty(t, out)
}
