// Package router mounts app route collections on the host engine and
// reports route collisions between apps.
package router

import (
	"fmt"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/domain/registry"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
)

// ModuleLocator maps a handler symbol to the dotted module defining it.
type ModuleLocator interface {
	DefiningModule(symbol string) string
}

// Assembler mounts route collections at their app's prefix.
type Assembler struct {
	modules ModuleLocator
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithModules sets the handler attribution source. Defaults to code.Default.
func WithModules(m ModuleLocator) Option {
	return func(a *Assembler) { a.modules = m }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(a *Assembler) { a.logger = logger }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(a *Assembler) { a.metrics = m }
}

// NewAssembler creates an assembler.
func NewAssembler(opts ...Option) *Assembler {
	a := &Assembler{modules: code.Default, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble mounts every returned route collection, then scans the
// engine's route table for collisions. Collisions are logged and returned;
// they never fail the assembly. A rejected mount is a router-stage
// *types.LoadError.
//
// gin refuses a second handler for one (method, path), so a route already
// owned is not re-registered: the first registration keeps serving it and
// the shadowed route is still reported by the collision scan. Routes apps
// mounted themselves are attributed from reg.Mounts.
func (a *Assembler) Assemble(engine *gin.Engine, reg *registry.Registry) ([]Collision, error) {
	owned := make(map[string]bool)
	for _, ri := range engine.Routes() {
		owned[ri.Method+" "+ri.Path] = true
	}

	var shadowed []RouteInfo
	for _, rec := range reg.List() {
		if rec.Routes.Len() == 0 {
			continue
		}
		s, err := a.mount(engine, rec, owned)
		if err != nil {
			return nil, err
		}
		shadowed = append(shadowed, s...)
	}

	collisions := DetectCollisions(withMounts(a.Table(engine, shadowed...), reg.Mounts()), reg.List())
	a.warn(collisions)
	if a.metrics != nil {
		a.metrics.SetRouteCollisions(len(collisions))
	}
	return collisions, nil
}

func (a *Assembler) mount(engine *gin.Engine, rec *types.AppRecord, owned map[string]bool) (shadowed []RouteInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = types.NewLoadError(rec.Name, types.StageRouter,
				fmt.Errorf("failed to mount routes at prefix %q: %v", rec.RoutePrefix, r))
		}
	}()

	group := engine.Group(rec.RoutePrefix, rec.Routes.Middleware()...)
	mounted := 0
	for _, rt := range rec.Routes.Routes() {
		full := joinPaths(group.BasePath(), rt.Path)
		k := rt.Method + " " + full
		if owned[k] {
			info := RouteInfo{Method: rt.Method, Path: full}
			if len(rt.Handlers) > 0 {
				info.Module = a.modules.DefiningModule(code.FuncName(rt.Handlers[len(rt.Handlers)-1]))
			}
			shadowed = append(shadowed, info)
			a.logger.Warn("Route already registered, keeping first handler",
				zap.String("app", rec.Name),
				zap.String("method", rt.Method),
				zap.String("path", full),
			)
			continue
		}
		group.Handle(rt.Method, rt.Path, rt.Handlers...)
		owned[k] = true
		mounted++
	}

	a.logger.Debug("Mounted app routes",
		zap.String("app", rec.Name),
		zap.String("prefix", rec.RoutePrefix),
		zap.Int("routes", mounted),
	)
	if a.metrics != nil {
		a.metrics.SetRoutesMounted(rec.Name, mounted)
	}
	return shadowed, nil
}

// Table returns the engine's route table with defining modules resolved,
// followed by extra entries.
func (a *Assembler) Table(engine *gin.Engine, extra ...RouteInfo) []RouteInfo {
	routes := engine.Routes()
	table := make([]RouteInfo, 0, len(routes)+len(extra))
	for _, ri := range routes {
		table = append(table, RouteInfo{
			Method: ri.Method,
			Path:   ri.Path,
			Module: a.modules.DefiningModule(ri.Handler),
		})
	}
	return append(table, extra...)
}

// withMounts attributes self-mounted routes to their app and appends the
// ones gin rejected.
func withMounts(table []RouteInfo, mounts []registry.Mount) []RouteInfo {
	owners := make(map[string]string, len(mounts))
	for _, m := range mounts {
		if m.Shadowed {
			table = append(table, RouteInfo{Method: m.Method, Path: m.Path, App: m.App})
			continue
		}
		owners[m.Method+" "+m.Path] = m.App
	}
	for i := range table {
		if table[i].App == "" {
			table[i].App = owners[table[i].Method+" "+table[i].Path]
		}
	}
	return table
}

func (a *Assembler) warn(collisions []Collision) {
	if len(collisions) == 0 {
		return
	}
	a.logger.Warn("Route collisions detected", zap.Int("count", len(collisions)))
	for _, c := range collisions {
		a.logger.Warn("Route collision",
			zap.String("method", c.Method),
			zap.String("path", c.Path),
			zap.Strings("apps", c.Apps),
			zap.String("suggestion", c.Suggestion),
		)
	}
}

// joinPaths mirrors gin's group path joining.
func joinPaths(absolutePath, relativePath string) string {
	if relativePath == "" {
		return absolutePath
	}
	finalPath := path.Join(absolutePath, relativePath)
	if strings.HasSuffix(relativePath, "/") && !strings.HasSuffix(finalPath, "/") {
		return finalPath + "/"
	}
	return finalPath
}
