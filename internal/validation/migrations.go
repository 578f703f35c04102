package validation

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/golang-migrate/migrate/v4/source"

	"github.com/GriffinCanCode/appkit/internal/migrations"
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Migrations checks the migration setup of an app: external apps must
// declare a migrations directory that exists, and a declared version
// table must be the one derived for the app.
func Migrations(layout paths.Layout, rec *types.AppRecord) Result {
	var r Result

	if table, ok := rec.Manifest.String(types.KeyVersionTable); ok {
		want := migrations.VersionTable(rec.Kind, rec.Name)
		switch {
		case migrations.ValidateVersionTable(rec.Kind, rec.Name, table):
		case rec.Kind == types.KindExternal && table == migrations.SharedVersionTable:
			r.AddError("external app uses shared version table %q, should use %q", table, want)
		default:
			r.AddError("version_table %q does not match %q", table, want)
		}
	}

	if rec.Kind != types.KindExternal {
		return r
	}
	if rel, _ := rec.Manifest.String(types.KeyMigrations); rel == "" {
		r.AddError("external apps must specify 'migrations' in manifest")
		return r
	}

	tgt, err := migrations.TargetFor(layout, rec)
	if err != nil {
		r.AddError("%v", err)
		return r
	}
	if !tgt.Exists() {
		r.AddError("migrations folder not found: %s", tgt.Location())
		return r
	}

	names, err := doublestar.Glob(tgt.Files, path.Join(tgt.Path, "*.sql"))
	if err != nil {
		r.AddError("failed to list migrations in %s: %v", tgt.Location(), err)
		return r
	}
	ups := 0
	for _, name := range names {
		base := path.Base(name)
		m, err := source.DefaultParse(base)
		if err != nil {
			r.AddWarning("ignored migration file (expected <version>_<title>.up.sql or .down.sql): %s", base)
			continue
		}
		if m.Direction == source.Up {
			ups++
		}
	}
	if ups == 0 {
		r.AddWarning("no up migrations found in %s", tgt.Location())
	}

	if nested, _ := doublestar.Glob(tgt.Files, path.Join(tgt.Path, "*/**/*.sql")); len(nested) > 0 {
		r.AddWarning("migrations in subdirectories are not applied: %s", strings.Join(nested, ", "))
	}
	return r
}
