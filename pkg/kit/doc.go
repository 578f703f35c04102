// Package kit is the entry point for host projects.
//
// A host binary blank-imports its apps so their init functions register
// them in the code catalog, then builds the engine:
//
//	import _ "example.com/host/apps/blog"
//
//	func main() {
//	    k := kit.New(nil)
//	    engine, reg, err := k.CreateApp()
//	    ...
//	}
//
// kit.Main runs the full command line, including "serve".
package kit
