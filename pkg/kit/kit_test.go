package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/internal/infrastructure/config"
	"github.com/GriffinCanCode/appkit/internal/infrastructure/logging"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/routes"
	"github.com/GriffinCanCode/appkit/tests/helpers/testutil"
)

func listPosts(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"posts": []string{"hello"}}) }

func blogRegister(*gin.Engine) *routes.Collection {
	return routes.New().GET("/posts", listPosts)
}

func paymentsRegister(e *gin.Engine) {
	e.GET("/payments/charges", func(c *gin.Context) { c.String(http.StatusOK, "charges") })
}

func newProject(t *testing.T) *testutil.Project {
	t.Helper()
	p := testutil.NewProject(t)
	p.WriteConfig("apps.blog", "payments")
	p.AddInternalApp("blog", blogRegister)
	p.AddExternalApp(testutil.ExternalApp{
		Path:     "payments",
		Manifest: testutil.Manifest("payments", "1.0.0", "payments:Register"),
		Attrs:    map[string]any{"Register": paymentsRegister},
	})
	return p
}

func settingsFor(p *testutil.Project) *config.Settings {
	s := config.Default()
	s.ProjectRoot = p.Root
	return s
}

func serve(engine *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCreateApp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newProject(t)
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	engine, reg, err := k.CreateApp()
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "payments"}, reg.Names())
	assert.Empty(t, k.Collisions())

	w := serve(engine, "/blog/posts")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"posts":["hello"]}`, w.Body.String())

	w = serve(engine, "/payments/charges")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "charges", w.Body.String())

	rec, ok := reg.Get("blog")
	require.True(t, ok)
	assert.Equal(t, 1, rec.Routes.Len())
}

func TestCreateAppServesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newProject(t)
	prom := prometheus.NewRegistry()
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()), WithPrometheus(prom))

	engine, _, err := k.CreateApp()
	require.NoError(t, err)

	w := serve(engine, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `appkit_apps_loaded{kind="internal"} 1`)
	assert.Contains(t, w.Body.String(), `appkit_apps_loaded{kind="external"} 1`)
}

func TestCreateAppWithoutMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newProject(t)
	s := settingsFor(p)
	s.Metrics.Enabled = false
	k := New(s, WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	engine, _, err := k.CreateApp()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, serve(engine, "/metrics").Code)
}

func TestCreateAppLoadFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := testutil.NewProject(t)
	p.WriteConfig("apps.missing")
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	_, _, err := k.CreateApp()
	assert.ErrorIs(t, err, types.ErrResolve)
}

func TestCreateAppReportsSelfMountedDuplicateAsCollision(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := testutil.NewProject(t)
	p.WriteConfig("apps.blog", "apps.shop")
	p.AddInternalApp("blog", func(e *gin.Engine) {
		e.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "blog") })
	})
	p.AddInternalApp("shop", func(e *gin.Engine) {
		e.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "shop") })
	})
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	engine, reg, err := k.CreateApp()
	require.NoError(t, err)
	assert.Equal(t, []string{"blog", "shop"}, reg.Names())

	require.Len(t, k.Collisions(), 1)
	c := k.Collisions()[0]
	assert.Equal(t, "/health", c.Path)
	assert.Equal(t, http.MethodGet, c.Method)
	assert.Equal(t, []string{"blog", "shop"}, c.Apps)

	w := serve(engine, "/health")
	assert.Equal(t, "blog", w.Body.String(), "first registration keeps the route")
}

func TestRoutesAttributesModules(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := newProject(t)
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	engine, _, err := k.CreateApp()
	require.NoError(t, err)

	var paths []string
	for _, ri := range k.Routes(engine) {
		paths = append(paths, ri.Method+" "+ri.Path)
	}
	assert.Contains(t, paths, "GET /blog/posts")
	assert.Contains(t, paths, "GET /payments/charges")
}

func TestCommandIncludesServe(t *testing.T) {
	p := newProject(t)
	k := New(settingsFor(p), WithCatalog(p.Catalog), WithLogger(logging.NewNop()))

	cmd, _, err := k.Command().Find([]string{"serve"})
	require.NoError(t, err)
	assert.Equal(t, "serve", cmd.Name())

	_, _, err = k.Command().Find([]string{"migrate", "all"})
	assert.NoError(t, err)
}
