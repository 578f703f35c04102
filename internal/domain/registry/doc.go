// Package registry loads configured apps and keeps them in an ordered,
// name-keyed registry.
//
// Components:
//   - Registry: append-only store; iteration order is configuration order
//   - Loader: drives resolve, manifest, entrypoint-validate and register
//     for every entry, fail-fast, then invokes entrypoints on demand
//
// Loading never runs app code. Entrypoints are only invoked by
// ExecuteRegistrations, so listing and validation stay side-effect free.
//
// Example Usage:
//
//	loader := registry.NewLoader(root, registry.WithLogger(logger))
//	reg, err := loader.LoadAll()
//	if err != nil {
//	    return err
//	}
//	engine := gin.New()
//	if err := loader.ExecuteRegistrations(reg, engine); err != nil {
//	    return err
//	}
package registry
