package registry

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/domain/entrypoint"
	"github.com/GriffinCanCode/appkit/internal/domain/manifest"
	"github.com/GriffinCanCode/appkit/internal/domain/resolver"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
)

// Loader turns the configured app list into a Registry.
type Loader struct {
	layout      paths.Layout
	catalog     entrypoint.Catalog
	resolver    *resolver.Resolver
	manifests   *manifest.Loader
	entrypoints *entrypoint.Loader
	logger      *logging.Logger
	metrics     *monitoring.Metrics
}

// Option configures a Loader.
type Option func(*Loader)

// WithCatalog sets the code catalog. Defaults to code.Default.
func WithCatalog(c entrypoint.Catalog) Option {
	return func(l *Loader) { l.catalog = c }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *monitoring.Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// NewLoader creates a loader for the project at root.
func NewLoader(root string, opts ...Option) *Loader {
	l := &Loader{
		layout:  paths.New(root),
		catalog: code.Default,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.resolver = resolver.New(l.layout.Root, l.catalog)
	l.manifests = manifest.NewLoader()
	l.entrypoints = entrypoint.NewLoader(l.catalog)
	return l
}

// Layout returns the project layout.
func (l *Loader) Layout() paths.Layout {
	return l.layout
}

// LoadAll loads every app listed in the project configuration. A project
// without configuration file has zero apps.
func (l *Loader) LoadAll() (*Registry, error) {
	project, err := config.LoadProjectOrEmpty(l.layout.Root)
	if err != nil {
		return nil, err
	}
	return l.LoadEntries(project.Apps)
}

// LoadEntries loads entries in order. The first failure aborts the load
// and no registry is returned.
func (l *Loader) LoadEntries(entries []string) (*Registry, error) {
	start := time.Now()
	logger := l.logger.With(zap.String("load_id", uuid.NewString()))
	logger.Debug("Loading apps", zap.Int("count", len(entries)), zap.String("root", l.layout.Root))

	reg := New()
	for _, entry := range entries {
		rec, err := l.loadOne(entry)
		if err == nil {
			if regErr := reg.Register(rec); regErr != nil {
				err = types.NewLoadError(entry, types.StageRegister, regErr)
			}
		}
		if err != nil {
			le := asLoadError(entry, err)
			l.recordFailure(le.Stage)
			logger.Error("Failed to load app",
				zap.String("entry", entry),
				zap.String("stage", string(le.Stage)),
				zap.Error(le.Err),
			)
			return nil, le
		}
		logger.Info("Loaded app",
			zap.String("app", rec.Name),
			zap.String("kind", rec.Kind.String()),
			zap.String("prefix", rec.RoutePrefix),
		)
	}

	if l.metrics != nil {
		l.metrics.SetAppsLoaded(types.KindInternal.String(), len(reg.FilterByKind(types.KindInternal)))
		l.metrics.SetAppsLoaded(types.KindExternal.String(), len(reg.FilterByKind(types.KindExternal)))
		l.metrics.ObserveLoad(time.Since(start))
	}
	return reg, nil
}

func (l *Loader) loadOne(entry string) (*types.AppRecord, error) {
	loc, err := l.resolver.Resolve(entry)
	if err != nil {
		return nil, err
	}

	m, err := l.manifests.Load(loc)
	if err != nil {
		return nil, err
	}

	descriptor, _ := m.String(types.KeyEntrypoint)
	if descriptor == "" {
		descriptor = loc.ImportPath + ":" + entrypoint.DefaultAttribute
	}
	if _, err := l.entrypoints.Load(descriptor, loc.ImportPath); err != nil {
		return nil, err
	}

	return &types.AppRecord{
		Name:           loc.Name,
		Kind:           loc.Kind,
		ImportPath:     loc.ImportPath,
		FilesystemPath: loc.FilesystemPath,
		Files:          loc.Files,
		MigrationsPath: manifest.MigrationsPath(l.layout, loc, m),
		RoutePrefix:    manifest.RoutePrefix(loc.Name, m),
		Manifest:       m,
	}, nil
}

// ExecuteRegistrations invokes every app's entrypoint with host in
// registration order, binding returned route collections to the records.
// Routes an entrypoint mounts itself are recorded as Mounts. An entrypoint
// stopped by an already registered route is a collision, not a failure.
func (l *Loader) ExecuteRegistrations(reg *Registry, host *gin.Engine) error {
	for _, rec := range reg.List() {
		descriptor := rec.Entrypoint()
		if descriptor == "" {
			descriptor = rec.ImportPath + ":" + entrypoint.DefaultAttribute
		}
		fn, err := l.entrypoints.Load(descriptor, rec.ImportPath)
		if err != nil {
			le := asLoadError(rec.Name, err)
			l.recordFailure(le.Stage)
			return le
		}

		before := routeKeys(host)
		rc, err := fn(host)
		reg.recordMounts(rec.Name, host, before)

		var conflict *entrypoint.RouteConflictError
		if errors.As(err, &conflict) {
			reg.recordShadowed(rec.Name, conflict.Path, host, before)
			l.recordRegistration(rec.Name, "conflict")
			l.logger.Warn("Route already registered by another app, registration stopped at it",
				zap.String("app", rec.Name),
				zap.String("path", conflict.Path),
			)
			continue
		}
		if err != nil {
			l.recordFailure(types.StageRegister)
			l.recordRegistration(rec.Name, "error")
			l.logger.Error("Failed to execute registration", zap.String("app", rec.Name), zap.Error(err))
			return types.NewLoadError(rec.Name, types.StageRegister,
				fmt.Errorf("failed to execute registration: %w", err))
		}
		l.recordRegistration(rec.Name, "success")

		if rc != nil {
			if err := reg.bindRoutes(rec.Name, rc); err != nil {
				return types.NewLoadError(rec.Name, types.StageRegister, err)
			}
		}
		l.logger.Debug("Registered app",
			zap.String("app", rec.Name),
			zap.Bool("returned_routes", rc != nil),
		)
	}
	return nil
}

func (l *Loader) recordFailure(stage types.Stage) {
	if l.metrics != nil {
		l.metrics.RecordLoadFailure(string(stage))
	}
}

func (l *Loader) recordRegistration(app, status string) {
	if l.metrics != nil {
		l.metrics.RecordRegistration(app, status)
	}
}

// asLoadError retags err with the configured entry, keeping its stage.
func asLoadError(entry string, err error) *types.LoadError {
	var le *types.LoadError
	if errors.As(err, &le) {
		if le.Entry == entry {
			return le
		}
		return types.NewLoadError(entry, le.Stage, le.Err)
	}
	return types.NewLoadError(entry, types.StageResolve, err)
}
