package registry

import "github.com/gin-gonic/gin"

// Mount is a route an entrypoint added to the host engine directly.
// Shadowed mounts were rejected because an earlier app owned the route.
type Mount struct {
	App      string
	Method   string
	Path     string
	Shadowed bool
}

// Mounts returns self-mounted routes in registration order.
func (r *Registry) Mounts() []Mount {
	out := make([]Mount, len(r.mounts))
	copy(out, r.mounts)
	return out
}

type routeKey struct{ method, path string }

func routeKeys(host *gin.Engine) map[routeKey]bool {
	keys := make(map[routeKey]bool)
	for _, ri := range host.Routes() {
		keys[routeKey{ri.Method, ri.Path}] = true
	}
	return keys
}

// recordMounts attributes every route absent from before to app.
func (r *Registry) recordMounts(app string, host *gin.Engine, before map[routeKey]bool) {
	for _, ri := range host.Routes() {
		if !before[routeKey{ri.Method, ri.Path}] {
			r.mounts = append(r.mounts, Mount{App: app, Method: ri.Method, Path: ri.Path})
		}
	}
}

// recordShadowed notes that app tried to take path. gin reports only the
// path, so every method already owned there before app ran is recorded.
func (r *Registry) recordShadowed(app, path string, host *gin.Engine, before map[routeKey]bool) {
	for _, ri := range host.Routes() {
		if ri.Path == path && before[routeKey{ri.Method, ri.Path}] {
			r.mounts = append(r.mounts, Mount{App: app, Method: ri.Method, Path: path, Shadowed: true})
		}
	}
}
