// Package testutil provides project fixtures and mocks for tests.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/pkg/code"
)

// Project is a throwaway project tree with its own code catalog.
type Project struct {
	t       *testing.T
	Root    string
	Catalog *code.Catalog
}

// NewProject creates an empty project in a temp directory.
func NewProject(t *testing.T) *Project {
	t.Helper()
	return &Project{t: t, Root: t.TempDir(), Catalog: code.NewCatalog()}
}

// WriteFile writes content at a path relative to the project root.
func (p *Project) WriteFile(rel, content string) string {
	p.t.Helper()
	path := filepath.Join(p.Root, filepath.FromSlash(rel))
	require.NoError(p.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(p.t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// WriteConfig writes appkit.toml listing entries.
func (p *Project) WriteConfig(entries ...string) {
	p.t.Helper()
	quoted := make([]string, len(entries))
	for i, e := range entries {
		quoted[i] = fmt.Sprintf("%q", e)
	}
	p.WriteFile("appkit.toml", fmt.Sprintf("[appkit]\napps = [%s]\n", strings.Join(quoted, ", ")))
}

// AddInternalApp creates apps/<name> as a Go package and registers
// "apps.<name>" with attrs. A nil register attribute is left out.
func (p *Project) AddInternalApp(name string, register any, attrs ...map[string]any) string {
	p.t.Helper()
	dir := filepath.Dir(p.WriteFile("apps/"+name+"/app.go", "package "+name+"\n"))

	all := mergeAttrs(attrs)
	if register != nil {
		all["register"] = register
	}
	require.NoError(p.t, p.Catalog.Register(code.Module{Path: "apps." + name, Dir: dir, Attrs: all}))
	return dir
}

// ExternalApp describes an external app fixture.
type ExternalApp struct {
	Path     string            // catalog path, e.g. "payments"
	Package  string            // Go import path
	Manifest string            // appkit.toml content
	Files    map[string]string // extra files, relative to the package
	OnDisk   bool              // materialize under <root>/vendor/<path> instead of embedding
	Attrs    map[string]any
}

// AddExternalApp registers an external app, either embedded or on disk.
// It returns the package directory for on-disk apps.
func (p *Project) AddExternalApp(app ExternalApp) string {
	p.t.Helper()
	files := map[string]string{"appkit.toml": app.Manifest}
	for k, v := range app.Files {
		files[k] = v
	}

	m := code.Module{Path: app.Path, Package: app.Package, Attrs: app.Attrs}
	var dir string
	if app.OnDisk {
		dir = filepath.Join(p.Root, "vendor", app.Path)
		for rel, content := range files {
			p.WriteFile(filepath.ToSlash(filepath.Join("vendor", app.Path, rel)), content)
		}
		m.Dir = dir
	} else {
		fsys := fstest.MapFS{}
		for rel, content := range files {
			fsys[rel] = &fstest.MapFile{Data: []byte(content)}
		}
		m.Files = fsys
	}
	require.NoError(p.t, p.Catalog.Register(m))
	return dir
}

// Manifest renders an [appkit] manifest with extra raw lines.
func Manifest(name, version, entrypoint string, extra ...string) string {
	var b strings.Builder
	b.WriteString("[appkit]\n")
	fmt.Fprintf(&b, "name = %q\nversion = %q\nentrypoint = %q\n", name, version, entrypoint)
	for _, line := range extra {
		b.WriteString(line + "\n")
	}
	return b.String()
}

func mergeAttrs(attrs []map[string]any) map[string]any {
	out := make(map[string]any)
	for _, a := range attrs {
		for k, v := range a {
			out[k] = v
		}
	}
	return out
}

// MockResolver is a mock implementation of code.Resolver.
type MockResolver struct {
	mock.Mock
}

// Import mocks the Import method.
func (m *MockResolver) Import(path string) (*code.Module, error) {
	args := m.Called(path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*code.Module), args.Error(1)
}

// Attribute mocks the Attribute method.
func (m *MockResolver) Attribute(mod *code.Module, name string) (any, error) {
	args := m.Called(mod, name)
	return args.Get(0), args.Error(1)
}

// IsCallable mocks the IsCallable method.
func (m *MockResolver) IsCallable(v any) bool {
	return m.Called(v).Bool(0)
}

// IsClass mocks the IsClass method.
func (m *MockResolver) IsClass(v any) bool {
	return m.Called(v).Bool(0)
}

// TryParameterCount mocks the TryParameterCount method.
func (m *MockResolver) TryParameterCount(v any) (int, bool) {
	args := m.Called(v)
	return args.Int(0), args.Bool(1)
}
