// Package main is the entry point for the standalone appkit command line.
//
// It resolves apps from the default code catalog, so on its own it only
// sees apps compiled into this binary. Host projects usually build their
// own binary that blank-imports their apps and calls kit.Main:
//
//	package main
//
//	import (
//		"github.com/GriffinCanCode/appkit/pkg/kit"
//
//		_ "example.com/host/apps/blog"
//		_ "example.com/payments"
//	)
//
//	func main() { kit.Main() }
//
// Configuration:
//   - Environment variables (DATABASE_URL, PORT, HOST, LOG_LEVEL, ...)
//   - Persistent flags (--root, --verbose, --quiet, --debug)
//
// Usage:
//
//	appkit app list
//	appkit migrate upgrade
//	appkit serve
//
// Signals:
//   - SIGINT, SIGTERM: graceful shutdown of serve
package main
