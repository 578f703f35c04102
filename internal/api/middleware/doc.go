// Package middleware provides the gin middleware installed on the host
// engine before apps are mounted.
//
//	router.Use(middleware.CORS(middleware.CORSConfigFrom(settings.CORS)))
//	router.Use(middleware.RateLimit(middleware.RateLimitConfigFrom(settings.RateLimit)))
package middleware
