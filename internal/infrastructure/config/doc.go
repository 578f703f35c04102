// Package config loads runtime settings from the environment with
// envconfig and the project's app list from appkit.toml.
//
// Settings are created once by the caller and passed explicitly to the
// loader, the migration runner and the CLI; nothing in the module reads
// them from global state.
package config
