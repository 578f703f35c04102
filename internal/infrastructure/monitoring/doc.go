/*
Package monitoring provides Prometheus metrics for app loading, route
assembly, migrations and the host HTTP surface.

# Usage

	// Create metrics collector on a private registry
	reg := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(reg)

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Time migration operations
	timer := monitoring.NewTimer(metrics, "core", "upgrade")
	// ... run migration ...
	timer.Stop("success")

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
*/
package monitoring
