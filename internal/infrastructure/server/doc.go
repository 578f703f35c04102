// Package server builds and serves the host gin engine that apps are
// mounted on.
package server
