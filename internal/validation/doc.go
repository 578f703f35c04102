// Package validation reports problems with loaded apps without running
// their entrypoints.
package validation
