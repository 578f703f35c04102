package migrations

import (
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// AppLister yields apps in configuration order.
type AppLister interface {
	List() []*types.AppRecord
}

// OrderApps returns internal apps then external apps, each group in
// configuration order. Core migrations always run before either group.
func OrderApps(l AppLister) []*types.AppRecord {
	apps := l.List()
	ordered := make([]*types.AppRecord, 0, len(apps))
	for _, kind := range []types.AppKind{types.KindInternal, types.KindExternal} {
		for _, rec := range apps {
			if rec.Kind == kind {
				ordered = append(ordered, rec)
			}
		}
	}
	return ordered
}

// CoreMigrationsDir is the directory shared by the core and internal apps.
func CoreMigrationsDir(layout paths.Layout) string {
	return layout.SharedMigrationsDir()
}
