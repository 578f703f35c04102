package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/appkit/internal/api/middleware"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/tracing"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests.
const ShutdownTimeout = 10 * time.Second

// NewEngine creates the host engine with its middleware chain. The
// metrics endpoint is served from gatherer when metrics are enabled.
func NewEngine(cfg *config.Settings, logger *logging.Logger, metrics *monitoring.Metrics, gatherer prometheus.Gatherer) *gin.Engine {
	if !cfg.Debug && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.Middleware(logger))
	if metrics != nil {
		router.Use(monitoring.Middleware(metrics))
	}
	if cfg.CORS.Enabled {
		router.Use(middleware.CORS(middleware.CORSConfigFrom(cfg.CORS)))
	}
	if cfg.RateLimit.Enabled {
		rl := middleware.RateLimitConfigFrom(cfg.RateLimit)
		logger.Info("Rate limiting enabled",
			zap.Int("rps", rl.RequestsPerSecond),
			zap.Int("burst", rl.Burst),
		)
		router.Use(middleware.RateLimit(rl))
	}

	if cfg.Metrics.Enabled && gatherer != nil {
		router.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

// Server serves a host engine.
type Server struct {
	router *gin.Engine
	addr   string
	logger *logging.Logger
}

// New wraps router for serving at addr.
func New(router *gin.Engine, addr string, logger *logging.Logger) *Server {
	return &Server{router: router, addr: addr, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
