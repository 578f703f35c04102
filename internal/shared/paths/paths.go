package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// File names
const (
	// ProjectConfig is the project configuration file at the project root
	ProjectConfig = "appkit.toml"

	// ManifestFile is the per-app manifest shipped inside external packages
	ManifestFile = "appkit.toml"

	// GoMod is the module file used to find the host module path
	GoMod = "go.mod"
)

// Project subdirectories
const (
	// Apps holds internal apps, one directory per app
	Apps = "apps"

	// Core holds the host's own code
	Core = "core"

	// SharedMigrations holds core and internal app migrations
	SharedMigrations = "core/db/migrations"
)

// InternalNamespace prefixes internal app entries: "apps.<name>"
const InternalNamespace = "apps"

// Layout resolves paths of one project
type Layout struct {
	Root string
}

// New returns the layout rooted at root
func New(root string) Layout {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return Layout{Root: root}
}

// ConfigFile returns the project configuration path
func (l Layout) ConfigFile() string {
	return filepath.Join(l.Root, ProjectConfig)
}

// AppsRoot returns the internal apps directory
func (l Layout) AppsRoot() string {
	return filepath.Join(l.Root, Apps)
}

// AppDir returns an internal app's directory
func (l Layout) AppDir(name string) string {
	return filepath.Join(l.Root, Apps, name)
}

// SharedMigrationsDir returns the shared migrations directory
func (l Layout) SharedMigrationsDir() string {
	return filepath.Join(l.Root, filepath.FromSlash(SharedMigrations))
}

// GoModFile returns the host go.mod path
func (l Layout) GoModFile() string {
	return filepath.Join(l.Root, GoMod)
}

// IsInternalDir reports whether dir lies under the internal apps root
func (l Layout) IsInternalDir(dir string) bool {
	if dir == "" {
		return false
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return IsUnder(l.AppsRoot(), dir)
}

// IsUnder checks if path is root or inside it
func IsUnder(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// HasGoPackage checks that dir contains at least one non-test Go file
func HasGoPackage(dir string) bool {
	matches, err := doublestar.Glob(os.DirFS(dir), "*.go")
	if err != nil {
		return false
	}
	for _, m := range matches {
		if !strings.HasSuffix(m, "_test.go") {
			return true
		}
	}
	return false
}

// ValidateAppName checks if an app name is valid for path construction
func ValidateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("app name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("app name cannot be an absolute path")
	}
	if strings.ContainsAny(name, `/\.`) || filepath.Clean(name) != name {
		return fmt.Errorf("app name contains invalid path components")
	}
	return nil
}
