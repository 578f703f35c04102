// Package paths provides the standard project layout.
//
// # Directory Structure
//
//	<root>/
//	  ├── appkit.toml        (project configuration, [appkit] apps = [...])
//	  ├── go.mod
//	  ├── core/
//	  │   └── db/migrations/ (shared ledger: core + internal apps)
//	  └── apps/
//	      └── <name>/        (internal app package)
//
// External apps ship their own appkit.toml and migrations directory inside
// their package.
//
// # Usage
//
//	layout := paths.New(root)
//	dir := layout.AppDir("blog")           // <root>/apps/blog
//	if paths.HasGoPackage(dir) {
//	    // importable
//	}
package paths
