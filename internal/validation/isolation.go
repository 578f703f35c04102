package validation

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"golang.org/x/mod/modfile"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// DefaultSkipPatterns are source paths the isolation check ignores,
// relative to the app directory.
var DefaultSkipPatterns = []string{"**/testdata/**", "**/vendor/**", "**/.git/**"}

// maxListed caps how many offending imports a finding names.
const maxListed = 5

// Isolation checks that external apps do not import the host's apps or
// core packages.
type Isolation struct {
	layout paths.Layout
	skip   []string
}

// NewIsolation creates an isolation check for the project at layout.
func NewIsolation(layout paths.Layout, skip ...string) *Isolation {
	if len(skip) == 0 {
		skip = DefaultSkipPatterns
	}
	return &Isolation{layout: layout, skip: skip}
}

// HostModule reads the host's module path from its go.mod.
func (v *Isolation) HostModule() (string, error) {
	data, err := os.ReadFile(v.layout.GoModFile())
	if err != nil {
		return "", err
	}
	mod := modfile.ModulePath(data)
	if mod == "" {
		return "", fmt.Errorf("no module directive in %s", v.layout.GoModFile())
	}
	return mod, nil
}

// Validate inspects the imports of every Go file of an external app.
// Imports of host apps are errors; imports of host core packages are
// warnings. Internal apps always pass.
func (v *Isolation) Validate(ctx context.Context, rec *types.AppRecord) Result {
	var r Result
	if rec.Kind != types.KindExternal {
		return r
	}
	if rec.FilesystemPath == "" {
		r.AddWarning("app %s has no package directory, imports not checked", rec.Name)
		return r
	}
	host, err := v.HostModule()
	if err != nil {
		r.AddWarning("cannot determine host module, imports not checked: %v", err)
		return r
	}

	files, err := v.sources(ctx, rec.FilesystemPath)
	if err != nil {
		r.AddError("failed to scan %s: %v", rec.FilesystemPath, err)
		return r
	}
	if len(files) == 0 {
		r.AddWarning("no Go files found in app")
		return r
	}

	appsPrefix, corePrefix := host+"/"+paths.Apps, host+"/"+paths.Core
	var appImports, coreImports []string
	fset := token.NewFileSet()
	for _, file := range files {
		f, err := parser.ParseFile(fset, file, nil, parser.ImportsOnly)
		if err != nil {
			r.AddWarning("could not parse %s: %v", file, err)
			continue
		}
		name := filepath.Base(file)
		for _, spec := range f.Imports {
			imp, err := strconv.Unquote(spec.Path.Value)
			if err != nil {
				continue
			}
			switch {
			case within(imp, appsPrefix):
				appImports = append(appImports, name+": "+imp)
			case within(imp, corePrefix):
				coreImports = append(coreImports, name+": "+imp)
			}
		}
	}

	if len(appImports) > 0 {
		r.AddError("external app imports from internal apps: %s", list(appImports))
	}
	if len(coreImports) > 0 {
		r.AddWarning("imports from core packages (may be allowed): %s", list(coreImports))
	}
	return r
}

// sources lists Go files under dir not matched by a skip pattern, sorted.
func (v *Isolation) sources(ctx context.Context, dir string) ([]string, error) {
	var (
		mu    sync.Mutex
		files []string
	)
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil || d.IsDir() || !strings.HasSuffix(p, ".go") {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return nil
		}
		if v.skipped(filepath.ToSlash(rel)) {
			return nil
		}
		mu.Lock()
		files = append(files, p)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (v *Isolation) skipped(rel string) bool {
	for _, pattern := range v.skip {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func within(imp, prefix string) bool {
	return imp == prefix || strings.HasPrefix(imp, prefix+"/")
}

func list(items []string) string {
	if len(items) > maxListed {
		items = append(items[:maxListed:maxListed], fmt.Sprintf("and %d more", len(items)-maxListed))
	}
	return strings.Join(items, ", ")
}
