package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Unknown labels routes no registered app can be attributed to.
const Unknown = "unknown"

// RouteInfo is one entry of the assembled route table. Module is the
// dotted path of the defining code, empty when unknown. App is set when
// the registering app is known directly and wins over Module.
type RouteInfo struct {
	Method string
	Path   string
	Module string
	App    string
}

// Collision is a (path, method) pair contributed by more than one app.
type Collision struct {
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Apps       []string `json:"apps"`
	Suggestion string   `json:"suggestion"`
}

// DetectCollisions attributes every route to an app and reports pairs
// owned by several distinct apps. It is a best-effort diagnostic: routes
// mounted outside the registration flow are only attributed when their
// defining module or path identifies an app.
func DetectCollisions(table []RouteInfo, apps []*types.AppRecord) []Collision {
	byModule := sortedBy(apps, func(r *types.AppRecord) string { return r.ImportPath })

	var withPrefix []*types.AppRecord
	for _, a := range apps {
		if a.RoutePrefix != "" && a.RoutePrefix != "/" {
			withPrefix = append(withPrefix, a)
		}
	}
	byPrefix := sortedBy(withPrefix, func(r *types.AppRecord) string { return r.RoutePrefix })

	type key struct{ path, method string }
	owners := make(map[key][]string)
	var order []key
	for _, rt := range table {
		k := key{rt.Path, rt.Method}
		if _, seen := owners[k]; !seen {
			order = append(order, k)
		}
		owners[k] = appendUnique(owners[k], attribute(rt, byModule, byPrefix))
	}

	index := make(map[string]*types.AppRecord, len(apps))
	for _, a := range apps {
		index[a.Name] = a
	}

	var out []Collision
	for _, k := range order {
		if names := owners[k]; len(names) > 1 {
			out = append(out, Collision{
				Path:       k.path,
				Method:     k.method,
				Apps:       names,
				Suggestion: suggestion(names, index),
			})
		}
	}
	return out
}

// attribute finds the owning app: an explicit app first, then the
// defining module with a dot boundary, then the route path against
// non-root prefixes.
func attribute(rt RouteInfo, byModule, byPrefix []*types.AppRecord) string {
	if rt.App != "" {
		return rt.App
	}
	if rt.Module != "" {
		for _, a := range byModule {
			if a.ImportPath == "" {
				continue
			}
			if rt.Module == a.ImportPath || strings.HasPrefix(rt.Module, a.ImportPath+".") {
				return a.Name
			}
		}
	}
	for _, a := range byPrefix {
		if rt.Path == a.RoutePrefix || strings.HasPrefix(rt.Path, a.RoutePrefix+"/") {
			return a.Name
		}
	}
	return Unknown
}

// sortedBy orders apps longest key first, keeping registration order
// among equal lengths.
func sortedBy(apps []*types.AppRecord, keyOf func(*types.AppRecord) string) []*types.AppRecord {
	out := make([]*types.AppRecord, len(apps))
	copy(out, apps)
	sort.SliceStable(out, func(i, j int) bool { return len(keyOf(out[i])) > len(keyOf(out[j])) })
	return out
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

func suggestion(names []string, index map[string]*types.AppRecord) string {
	if len(names) == 2 {
		a, okA := index[names[0]]
		b, okB := index[names[1]]
		if okA && okB {
			return fmt.Sprintf("Change route_prefix for '%s' (current: %q) or '%s' (current: %q) in their manifests",
				a.Name, a.RoutePrefix, b.Name, b.RoutePrefix)
		}
	}
	return "Review route_prefix settings in app manifests to avoid conflicts"
}
