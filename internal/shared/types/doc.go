// Package types provides the shared data structures of the app loading
// pipeline.
//
// Core Types:
//   - AppKind: internal or external app
//   - AppLocation: transient resolver output
//   - AppRecord: registry entry for one loaded app
//   - Manifest: raw per-app key/value metadata
//
// Errors:
//   - LoadError: stage-tagged pipeline failure (resolve, manifest,
//     entrypoint-validate, register, router)
//   - ValidationError: every violated rule of one structured check
//   - MigrationError: schema upgrade/downgrade/generate failure
//   - ConfigError: unreadable or missing project configuration
//
// Example Usage:
//
//	rec, ok := registry.Get("blog")
//	if ok && rec.Kind == types.KindInternal {
//	    table := migrations.VersionTable(rec.Kind, rec.Name)
//	}
package types
