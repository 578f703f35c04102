/*
Package tracing tags every request served by the host engine with a
request ID and logs it when it completes.

# Overview

An incoming X-Request-ID header is kept when it is short enough, otherwise
a prefixed ULID is generated. The ID is echoed in the response, stored in
the gin context and in the request context so app handlers and their logs
can refer to it.

# Usage

	router.Use(tracing.Middleware(logger))

	func show(c *gin.Context) {
	    rid := tracing.RequestIDFrom(c.Request.Context())
	    logger.Info("Showing post", zap.String("request_id", rid))
	}
*/
package tracing
