package migrations

import (
	"strings"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// SharedVersionTable records the migration state of the core and all
// internal apps.
const SharedVersionTable = "schema_migrations"

// VersionTable derives the version table of an app from its kind and name.
func VersionTable(kind types.AppKind, name string) string {
	if kind == types.KindInternal {
		return SharedVersionTable
	}
	return SharedVersionTable + "_" + name
}

// ValidateVersionTable reports whether table is the one derived for the app.
func ValidateVersionTable(kind types.AppKind, name, table string) bool {
	return VersionTable(kind, name) == table
}

// IsVersionTable reports whether table holds migration state rather than
// app data.
func IsVersionTable(table string) bool {
	return table == SharedVersionTable || strings.HasPrefix(table, SharedVersionTable+"_")
}
