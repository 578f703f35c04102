package types

import (
	"fmt"
	"io/fs"

	"github.com/GriffinCanCode/appkit/pkg/routes"
)

// Manifest keys
const (
	KeyName         = "name"
	KeyVersion      = "version"
	KeyEntrypoint   = "entrypoint"
	KeyMigrations   = "migrations"
	KeyModelsModule = "models_module"
	KeyRoutePrefix  = "route_prefix"
	KeyVersionTable = "version_table"
)

// Manifest is the raw key/value metadata of one app.
type Manifest map[string]any

// String returns the string value stored at key.
func (m Manifest) String(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Has reports whether key is present, whatever its type.
func (m Manifest) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// AppLocation is the result of resolving one configured entry.
type AppLocation struct {
	Name           string
	Entry          string
	Kind           AppKind
	ImportPath     string
	FilesystemPath string // empty when the package has no known directory
	PackageName    string
	Files          fs.FS // embedded package files, may be nil
}

// AppRecord describes one loaded app.
type AppRecord struct {
	Name           string             `json:"name" yaml:"name"`
	Kind           AppKind            `json:"kind" yaml:"kind"`
	ImportPath     string             `json:"import_path" yaml:"import_path"`
	FilesystemPath string             `json:"filesystem_path,omitempty" yaml:"filesystem_path,omitempty"`
	MigrationsPath string             `json:"migrations_path,omitempty" yaml:"migrations_path,omitempty"`
	RoutePrefix    string             `json:"route_prefix" yaml:"route_prefix"`
	Manifest       Manifest           `json:"manifest" yaml:"manifest"`
	Files          fs.FS              `json:"-" yaml:"-"`
	Routes         *routes.Collection `json:"-" yaml:"-"`
}

// Version returns the manifest version.
func (r *AppRecord) Version() string {
	v, _ := r.Manifest.String(KeyVersion)
	return v
}

// Entrypoint returns the manifest entrypoint descriptor.
func (r *AppRecord) Entrypoint() string {
	v, _ := r.Manifest.String(KeyEntrypoint)
	return v
}

// ModelsModule returns the declared models module, if any.
func (r *AppRecord) ModelsModule() string {
	v, _ := r.Manifest.String(KeyModelsModule)
	return v
}

func (r *AppRecord) String() string {
	return fmt.Sprintf("%s (%s, %s)", r.Name, r.Kind, r.ImportPath)
}
