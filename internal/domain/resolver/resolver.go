// Package resolver maps configured app entries to code locations.
package resolver

import (
	"fmt"
	"os"
	"strings"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
)

// Resolver turns entries such as "apps.blog" or "payments" into an
// AppLocation.
type Resolver struct {
	layout paths.Layout
	code   code.Resolver
}

// New creates a resolver for the project at root.
func New(root string, r code.Resolver) *Resolver {
	return &Resolver{layout: paths.New(root), code: r}
}

// IsInternalEntry reports whether entry uses the "apps.<name>" form.
func IsInternalEntry(entry string) bool {
	return strings.HasPrefix(entry, paths.InternalNamespace+".") && len(entry) > len(paths.InternalNamespace)+1
}

// Resolve resolves one entry. Failures are *types.LoadError at the
// resolve stage.
func (r *Resolver) Resolve(entry string) (*types.AppLocation, error) {
	if IsInternalEntry(entry) {
		return r.resolveInternal(entry)
	}

	m, err := r.code.Import(entry)
	if err != nil {
		return nil, types.NewLoadError(entry, types.StageResolve, fmt.Errorf(
			"could not resolve app entry %q: it must be either apps.<name> for an app under %s, "+
				"or the path of a package registered in the code catalog (blank-import it from the host binary): %w",
			entry, r.layout.AppsRoot(), err))
	}

	kind := types.KindExternal
	if r.layout.IsInternalDir(m.Dir) {
		kind = types.KindInternal
	}

	loc := &types.AppLocation{
		Name:           lastSegment(entry),
		Entry:          entry,
		Kind:           kind,
		ImportPath:     entry,
		FilesystemPath: m.Dir,
		Files:          m.Files,
	}
	if kind == types.KindExternal {
		loc.PackageName = m.Package
	}
	return loc, nil
}

func (r *Resolver) resolveInternal(entry string) (*types.AppLocation, error) {
	name := strings.TrimPrefix(entry, paths.InternalNamespace+".")
	if err := paths.ValidateAppName(name); err != nil {
		return nil, types.NewLoadError(entry, types.StageResolve,
			fmt.Errorf("invalid internal app entry %q: %w", entry, err))
	}
	dir := r.layout.AppDir(name)

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, types.NewLoadError(entry, types.StageResolve,
			fmt.Errorf("internal app directory not found: %s", dir))
	}
	if !paths.HasGoPackage(dir) {
		return nil, types.NewLoadError(entry, types.StageResolve,
			fmt.Errorf("app directory is not a Go package (no .go files): %s", dir))
	}

	loc := &types.AppLocation{
		Name:           name,
		Entry:          entry,
		Kind:           types.KindInternal,
		ImportPath:     entry,
		FilesystemPath: dir,
	}
	// Compiled-in internal apps may carry embedded files
	if m, err := r.code.Import(entry); err == nil {
		loc.Files = m.Files
	}
	return loc, nil
}

func lastSegment(entry string) string {
	if i := strings.LastIndex(entry, "."); i >= 0 {
		return entry[i+1:]
	}
	return entry
}
