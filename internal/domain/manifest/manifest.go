// Package manifest loads and validates per-app manifests.
//
// Internal apps never carry a manifest file: theirs is synthesized from
// the import path. External apps must ship appkit.toml with an [appkit]
// table inside their package; there is no fallback source.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// PlaceholderVersion is the version of every synthesized manifest.
const PlaceholderVersion = "0.1.0"

// Table is the TOML table holding the manifest.
const Table = "appkit"

// Loader reads manifests for resolved apps.
type Loader struct{}

// NewLoader creates a manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load returns the manifest of loc. Failures are *types.LoadError at the
// manifest stage; validation failures wrap a *types.ValidationError.
func (l *Loader) Load(loc *types.AppLocation) (types.Manifest, error) {
	m, err := l.Read(loc)
	if err != nil {
		return nil, err
	}
	if err := Validate(loc.Name, m); err != nil {
		return nil, types.NewLoadError(loc.Entry, types.StageManifest, err)
	}
	return m, nil
}

// Read returns the manifest of loc without validating it.
func (l *Loader) Read(loc *types.AppLocation) (types.Manifest, error) {
	if loc.Kind == types.KindInternal {
		return Synthesize(loc), nil
	}

	data, where, err := readManifest(loc)
	if err != nil {
		return nil, types.NewLoadError(loc.Entry, types.StageManifest, err)
	}

	m, err := Parse(data)
	if err != nil {
		return nil, types.NewLoadError(loc.Entry, types.StageManifest,
			fmt.Errorf("failed to parse %s: %w", where, err))
	}
	return m, nil
}

// Synthesize builds the manifest of an internal app.
func Synthesize(loc *types.AppLocation) types.Manifest {
	return types.Manifest{
		types.KeyName:       loc.Name,
		types.KeyVersion:    PlaceholderVersion,
		types.KeyEntrypoint: loc.ImportPath + ":register",
	}
}

func readManifest(loc *types.AppLocation) ([]byte, string, error) {
	if loc.FilesystemPath != "" {
		where := filepath.Join(loc.FilesystemPath, paths.ManifestFile)
		data, err := os.ReadFile(where)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, where, fmt.Errorf("%s not found in %s: external apps must ship %s in the package directory",
				paths.ManifestFile, loc.FilesystemPath, paths.ManifestFile)
		}
		if err != nil {
			return nil, where, fmt.Errorf("failed to read %s: %w", where, err)
		}
		return data, where, nil
	}

	if loc.Files == nil {
		return nil, "", fmt.Errorf("cannot determine package location for %s: register it with a Dir or embedded Files", loc.ImportPath)
	}
	where := loc.ImportPath + ":" + paths.ManifestFile
	data, err := fs.ReadFile(loc.Files, paths.ManifestFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, where, fmt.Errorf("%s not found in embedded files of %s: external apps must embed %s",
			paths.ManifestFile, loc.ImportPath, paths.ManifestFile)
	}
	if err != nil {
		return nil, where, fmt.Errorf("failed to read %s: %w", where, err)
	}
	return data, where, nil
}

// Parse decodes the [appkit] table of a manifest document. A document
// without the table yields an empty manifest.
func Parse(data []byte) (types.Manifest, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw, ok := doc[Table]
	if !ok {
		return types.Manifest{}, nil
	}
	table, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("[%s] must be a table", Table)
	}
	return types.Manifest(table), nil
}

// Validate checks required keys and the version and entrypoint formats,
// reporting every violation at once.
func Validate(app string, m types.Manifest) error {
	var violations []string

	for _, key := range []string{types.KeyName, types.KeyVersion, types.KeyEntrypoint} {
		if !m.Has(key) {
			violations = append(violations, "missing required field: "+key)
		}
	}

	if m.Has(types.KeyVersion) {
		version, ok := m.String(types.KeyVersion)
		switch {
		case !ok:
			violations = append(violations, "'version' must be a string")
		case !strings.ContainsFunc(version, unicode.IsDigit):
			violations = append(violations, "invalid version format: "+version)
		}
	}

	if m.Has(types.KeyEntrypoint) {
		ep, ok := m.String(types.KeyEntrypoint)
		switch {
		case !ok:
			violations = append(violations, "'entrypoint' must be a string")
		case !strings.Contains(ep, ":"):
			violations = append(violations, "invalid entrypoint format (expected 'module:attribute'): "+ep)
		}
	}

	if len(violations) > 0 {
		return &types.ValidationError{Subject: fmt.Sprintf("manifest of app %q", app), Violations: violations}
	}
	return nil
}

// RoutePrefix returns the declared route prefix, "/" + name by default.
// An empty declared prefix is kept as is.
func RoutePrefix(name string, m types.Manifest) string {
	if p, ok := m.String(types.KeyRoutePrefix); ok {
		return p
	}
	return "/" + name
}

// MigrationsPath returns where an app's migrations live. Internal apps
// always use the project's shared directory. External apps resolve the
// declared relative path against their package directory, or keep it
// relative to their embedded files when no directory is known.
func MigrationsPath(layout paths.Layout, loc *types.AppLocation, m types.Manifest) string {
	if loc.Kind == types.KindInternal {
		return layout.SharedMigrationsDir()
	}
	rel, ok := m.String(types.KeyMigrations)
	if !ok || rel == "" {
		return ""
	}
	if loc.FilesystemPath != "" {
		return filepath.Join(loc.FilesystemPath, rel)
	}
	return rel
}
