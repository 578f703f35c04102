package kit

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/domain/registry"
	"github.com/GriffinCanCode/appkit/internal/domain/router"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/server"
	"github.com/GriffinCanCode/appkit/pkg/code"
)

type (
	Settings  = config.Settings
	Registry  = registry.Registry
	Collision = router.Collision
	RouteInfo = router.RouteInfo
	Logger    = logging.Logger
)

// Kit builds the host engine from the project's configured apps.
type Kit struct {
	settings   *config.Settings
	catalog    *code.Catalog
	logger     *logging.Logger
	prom       *prometheus.Registry
	metrics    *monitoring.Metrics
	collisions []router.Collision
}

// Option configures a Kit.
type Option func(*Kit)

// WithCatalog sets the code catalog apps are resolved from. Defaults to
// code.Default.
func WithCatalog(c *code.Catalog) Option {
	return func(k *Kit) { k.catalog = c }
}

// WithLogger sets the logger. Defaults to one built from settings.
func WithLogger(l *logging.Logger) Option {
	return func(k *Kit) { k.logger = l }
}

// WithPrometheus registers metrics in reg instead of a private registry.
func WithPrometheus(reg *prometheus.Registry) Option {
	return func(k *Kit) { k.prom = reg }
}

// New creates a kit. Nil settings are loaded from the environment.
func New(settings *Settings, opts ...Option) *Kit {
	if settings == nil {
		settings = config.LoadOrDefault()
	}
	k := &Kit{settings: settings, catalog: code.Default}
	for _, opt := range opts {
		opt(k)
	}
	if k.logger == nil {
		k.logger = logging.FromSettings(settings.Logging.Level, settings.Logging.Development || settings.Debug)
	}
	if settings.Metrics.Enabled {
		if k.prom == nil {
			k.prom = prometheus.NewRegistry()
		}
		k.metrics = monitoring.NewMetrics(k.prom)
	}
	return k
}

// Settings returns the kit's settings.
func (k *Kit) Settings() *Settings {
	return k.settings
}

// CreateApp builds the host engine, loads every configured app, runs the
// entrypoints in configuration order and mounts the returned routes.
func (k *Kit) CreateApp() (*gin.Engine, *Registry, error) {
	var gatherer prometheus.Gatherer
	if k.prom != nil {
		gatherer = k.prom
	}
	engine := server.NewEngine(k.settings, k.logger, k.metrics, gatherer)

	loader := registry.NewLoader(k.settings.ProjectRoot,
		registry.WithCatalog(k.catalog),
		registry.WithLogger(k.logger),
		registry.WithMetrics(k.metrics),
	)
	reg, err := loader.LoadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load apps: %w", err)
	}
	if err := loader.ExecuteRegistrations(reg, engine); err != nil {
		return nil, nil, fmt.Errorf("failed to register apps: %w", err)
	}

	assembler := router.NewAssembler(
		router.WithModules(k.catalog),
		router.WithLogger(k.logger),
		router.WithMetrics(k.metrics),
	)
	collisions, err := assembler.Assemble(engine, reg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to assemble routes: %w", err)
	}
	k.collisions = collisions

	k.logger.Info("Application created",
		zap.Int("apps", reg.Len()),
		zap.Int("routes", len(engine.Routes())),
		zap.Int("collisions", len(collisions)))
	return engine, reg, nil
}

// Collisions returns the route collisions found by the last CreateApp.
func (k *Kit) Collisions() []Collision {
	return k.collisions
}

// Routes returns the engine's route table attributed to app modules.
func (k *Kit) Routes(engine *gin.Engine) []RouteInfo {
	return router.NewAssembler(router.WithModules(k.catalog)).Table(engine)
}

// Run creates the app and serves it on the configured address until ctx
// is cancelled.
func (k *Kit) Run(ctx context.Context) error {
	engine, _, err := k.CreateApp()
	if err != nil {
		return err
	}
	return server.New(engine, k.settings.Addr(), k.logger).Run(ctx)
}
