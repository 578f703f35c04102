package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/shared/id"
)

func setupTestRouter(logger *logging.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware(logger))
	router.GET("/echo", func(c *gin.Context) {
		c.String(http.StatusOK, RequestIDFrom(c.Request.Context())+"|"+c.GetString(ContextKey))
	})
	return router
}

func TestMiddlewareRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{"generated when absent", "", false},
		{"client id kept", "abc-123", true},
		{"oversized id replaced", strings.Repeat("x", maxRequestIDLen+1), false},
		{"control characters replaced", "bad\tid", false},
	}

	router := setupTestRouter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/echo", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			rid := w.Header().Get(HeaderRequestID)
			assert.Equal(t, rid+"|"+rid, w.Body.String())
			if tt.keep {
				assert.Equal(t, tt.header, rid)
				return
			}
			assert.True(t, strings.HasPrefix(rid, id.RequestPrefix+"_"), rid)
		})
	}
}

func TestMiddlewareLogsRequest(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	router := setupTestRouter(&logging.Logger{Logger: zap.New(core)})

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set(HeaderRequestID, "trace-me")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("Request served").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "trace-me", fields["request_id"])
		assert.Equal(t, "/echo", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
	}
}

func TestRequestIDFromEmptyContext(t *testing.T) {
	assert.Equal(t, "", RequestIDFrom(context.Background()))
	assert.Equal(t, "r1", RequestIDFrom(WithRequestID(context.Background(), "r1")))
}
