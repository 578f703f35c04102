// Package code is the runtime code catalog apps register into.
//
// Go has no import-by-string, so app packages announce themselves from an
// init function, the same way database/sql drivers do:
//
//	//go:embed appkit.toml migrations
//	var files embed.FS
//
//	func init() {
//	    code.Register(code.Module{
//	        Path:    "payments",
//	        Package: code.PackageOf(code.FuncName(Register)),
//	        Files:   files,
//	        Attrs:   map[string]any{"register": Register},
//	    })
//	}
//
// The catalog then serves as the resolver capability for the loader:
// importing a module by dotted path, fetching attributes, telling
// functions from types and counting parameters.
package code

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

var (
	ErrModuleNotFound    = errors.New("module not found")
	ErrAttributeNotFound = errors.New("attribute not found")
)

// Module is one importable unit of app code.
type Module struct {
	Path    string         // dotted logical path, e.g. "apps.blog" or "payments"
	Package string         // Go import path used to attribute handlers
	Dir     string         // on-disk package directory, optional
	Files   fs.FS          // embedded package files, optional
	Attrs   map[string]any // exported functions, types and values
}

// Resolver loads modules by dotted path and inspects their attributes.
type Resolver interface {
	Import(path string) (*Module, error)
	Attribute(m *Module, name string) (any, error)
	IsCallable(v any) bool
	IsClass(v any) bool
	TryParameterCount(v any) (int, bool)
}

// Catalog is a concurrency-safe set of modules keyed by path.
type Catalog struct {
	mu      sync.RWMutex
	modules map[string]*Module
}

// Default is the process-wide catalog used by Register.
var Default = NewCatalog()

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{modules: make(map[string]*Module)}
}

// Register adds m to the Default catalog. It panics on an empty or
// duplicate path, as it is meant to be called from init.
func Register(m Module) {
	if err := Default.Register(m); err != nil {
		panic(err)
	}
}

// Register adds a module.
func (c *Catalog) Register(m Module) error {
	if m.Path == "" {
		return errors.New("module path cannot be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.modules[m.Path]; exists {
		return fmt.Errorf("module %q already registered", m.Path)
	}
	if m.Attrs == nil {
		m.Attrs = make(map[string]any)
	}
	c.modules[m.Path] = &m
	return nil
}

// Import returns the module registered at path.
func (c *Catalog) Import(path string) (*Module, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m, ok := c.modules[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModuleNotFound, path)
	}
	return m, nil
}

// Attribute returns the named attribute of m.
func (c *Catalog) Attribute(m *Module, name string) (any, error) {
	v, ok := m.Attrs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrAttributeNotFound, m.Path, name)
	}
	return v, nil
}

// Modules returns all modules sorted by path.
func (c *Catalog) Modules() []*Module {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Module, 0, len(c.modules))
	for _, m := range c.modules {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// DefiningModule maps a function symbol, as reported by runtime.FuncForPC
// or gin's route table, to the dotted path of the module that defines it.
// Sub-packages of a registered package map to dotted sub-paths. It returns
// "" when no registered package owns the symbol.
func (c *Catalog) DefiningModule(symbol string) string {
	pkg := PackageOf(symbol)
	if pkg == "" {
		return ""
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *Module
	for _, m := range c.modules {
		if m.Package == "" {
			continue
		}
		if pkg != m.Package && !strings.HasPrefix(pkg, m.Package+"/") {
			continue
		}
		if best == nil || len(m.Package) > len(best.Package) {
			best = m
		}
	}
	if best == nil {
		return ""
	}
	if pkg == best.Package {
		return best.Path
	}
	rest := strings.TrimPrefix(pkg, best.Package+"/")
	return best.Path + "." + strings.ReplaceAll(rest, "/", ".")
}

// PackageOf returns the Go package path of a function symbol such as
// "github.com/acme/blog.(*Handler).List-fm". Type arguments of generic
// instantiations may hold other package paths and are ignored.
func PackageOf(symbol string) string {
	if i := strings.IndexByte(symbol, '['); i >= 0 {
		symbol = symbol[:i]
	}
	slash := strings.LastIndex(symbol, "/")
	dot := strings.Index(symbol[slash+1:], ".")
	if dot < 0 {
		return ""
	}
	return symbol[:slash+1+dot]
}

// SourceDir returns the directory of the calling source file. App packages
// pass it as Module.Dir when built from a source checkout.
func SourceDir() string {
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return ""
	}
	return filepath.Dir(file)
}
