package validation

import (
	"sort"
	"strings"
	"unicode"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

var knownKeys = map[string]bool{
	types.KeyName:         true,
	types.KeyVersion:      true,
	types.KeyEntrypoint:   true,
	types.KeyMigrations:   true,
	types.KeyModelsModule: true,
	types.KeyRoutePrefix:  true,
	types.KeyVersionTable: true,
}

var optionalStrings = []string{
	types.KeyMigrations,
	types.KeyModelsModule,
	types.KeyRoutePrefix,
	types.KeyVersionTable,
}

// Manifest checks required keys, value types and formats. A version
// without digits and unknown keys are warnings.
func Manifest(m types.Manifest) Result {
	var r Result

	for _, key := range []string{types.KeyName, types.KeyVersion, types.KeyEntrypoint} {
		if !m.Has(key) {
			r.AddError("missing required field: %s", key)
		}
	}

	if m.Has(types.KeyVersion) {
		v, ok := m.String(types.KeyVersion)
		switch {
		case !ok:
			r.AddError("'version' must be a string")
		case !strings.ContainsFunc(v, unicode.IsDigit):
			r.AddWarning("version format may be invalid: %s", v)
		}
	}

	if m.Has(types.KeyEntrypoint) {
		ep, ok := m.String(types.KeyEntrypoint)
		switch {
		case !ok:
			r.AddError("'entrypoint' must be a string")
		case !strings.Contains(ep, ":"):
			r.AddError("invalid entrypoint format (expected 'module:attribute'): %s", ep)
		}
	}

	if m.Has(types.KeyName) {
		if _, ok := m.String(types.KeyName); !ok {
			r.AddError("'name' must be a string")
		}
	}
	for _, key := range optionalStrings {
		if _, ok := m.String(key); m.Has(key) && !ok {
			r.AddError("'%s' must be a string", key)
		}
	}

	var unknown []string
	for key := range m {
		if !knownKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		r.AddWarning("unknown manifest keys: %s", strings.Join(unknown, ", "))
	}
	return r
}
