package migrations

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// CoreName identifies the project's own migrations.
const CoreName = "core"

var (
	ErrNoMigrationsPath = errors.New("no migrations path configured")
	ErrMissingDir       = errors.New("migrations directory does not exist")
)

// Target is one migration stream: a directory of migration files and the
// version table that records how far it has been applied.
type Target struct {
	Name         string
	Kind         types.AppKind
	VersionTable string
	// Dir is the on-disk directory, empty for migrations read from an
	// app's embedded files.
	Dir   string
	Files fs.FS
	Path  string
}

// CoreTarget is the shared stream of the core and internal apps.
func CoreTarget(layout paths.Layout) *Target {
	return diskTarget(CoreName, types.KindInternal, CoreMigrationsDir(layout))
}

// TargetFor returns the stream an app migrates through. Internal apps get
// the shared stream under their own name.
func TargetFor(layout paths.Layout, rec *types.AppRecord) (*Target, error) {
	if rec.Kind == types.KindInternal {
		t := CoreTarget(layout)
		t.Name = rec.Name
		return t, nil
	}

	if rec.MigrationsPath == "" {
		return nil, &types.MigrationError{App: rec.Name, Op: "resolve", Err: ErrNoMigrationsPath}
	}
	if rec.FilesystemPath != "" || filepath.IsAbs(rec.MigrationsPath) || rec.Files == nil {
		return diskTarget(rec.Name, rec.Kind, rec.MigrationsPath), nil
	}
	return &Target{
		Name:         rec.Name,
		Kind:         rec.Kind,
		VersionTable: VersionTable(rec.Kind, rec.Name),
		Files:        rec.Files,
		Path:         path.Clean(filepath.ToSlash(rec.MigrationsPath)),
	}, nil
}

func diskTarget(name string, kind types.AppKind, dir string) *Target {
	return &Target{
		Name:         name,
		Kind:         kind,
		VersionTable: VersionTable(kind, name),
		Dir:          dir,
		Files:        os.DirFS(dir),
		Path:         ".",
	}
}

// Location names where the migrations are read from.
func (t *Target) Location() string {
	if t.Dir != "" {
		return t.Dir
	}
	return "embed:" + t.Path
}

// Exists reports whether the migrations directory is present.
func (t *Target) Exists() bool {
	info, err := fs.Stat(t.Files, t.Path)
	return err == nil && info.IsDir()
}

// Source opens the migration files for golang-migrate.
func (t *Target) Source() (source.Driver, error) {
	if !t.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrMissingDir, t.Location())
	}
	src, err := iofs.New(t.Files, t.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations from %s: %w", t.Location(), err)
	}
	return src, nil
}
