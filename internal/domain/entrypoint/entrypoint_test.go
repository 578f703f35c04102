package entrypoint

import (
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
	"github.com/GriffinCanCode/appkit/pkg/routes"
)

type blogApp struct {
	initialized bool
}

func (b *blogApp) Init() error {
	b.initialized = true
	return nil
}

func (b *blogApp) Register(e *gin.Engine) *routes.Collection {
	if !b.initialized {
		panic("not initialized")
	}
	return routes.New().GET("/posts", func(c *gin.Context) {})
}

type noRegister struct{}

type failingInit struct{}

func (f *failingInit) Init() error { return errors.New("missing secret") }

func newCatalog(t *testing.T, attrs map[string]any) *code.Catalog {
	t.Helper()
	c := code.NewCatalog()
	require.NoError(t, c.Register(code.Module{Path: "apps.blog", Attrs: attrs}))
	return c
}

func TestParse(t *testing.T) {
	mod, attr := Parse("apps.blog:register", "apps.blog")
	assert.Equal(t, "apps.blog", mod)
	assert.Equal(t, "register", attr)

	mod, attr = Parse("apps.blog", "apps.blog")
	assert.Equal(t, "apps.blog", mod)
	assert.Equal(t, DefaultAttribute, attr)

	mod, attr = Parse("apps.blog.api:Setup", "apps.blog")
	assert.Equal(t, "apps.blog.api", mod)
	assert.Equal(t, "Setup", attr)
}

func TestLoadFunctionShapes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	want := routes.New().GET("/x", func(c *gin.Context) {})
	boom := errors.New("boom")

	tests := []struct {
		name    string
		fn      any
		wantRC  *routes.Collection
		wantErr error
	}{
		{"plain", func(e *gin.Engine) { e.GET("/self", func(c *gin.Context) {}) }, nil, nil},
		{"collection", func(e *gin.Engine) *routes.Collection { return want }, want, nil},
		{"error", func(e *gin.Engine) error { return boom }, nil, boom},
		{"both", func(e *gin.Engine) (*routes.Collection, error) { return want, nil }, want, nil},
		{"interface host", func(r gin.IRouter) *routes.Collection { return want }, want, nil},
		{"extra params", func(e *gin.Engine, s string) *routes.Collection { return want }, want, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLoader(newCatalog(t, map[string]any{"register": tt.fn}))

			fn, err := l.Load("apps.blog:register", "apps.blog")
			require.NoError(t, err)

			rc, err := fn(gin.New())
			assert.Same(t, tt.wantRC, rc)
			assert.Equal(t, tt.wantErr, err)
		})
	}
}

func TestLoadBareModuleUsesRegister(t *testing.T) {
	called := false
	l := NewLoader(newCatalog(t, map[string]any{"register": func(e *gin.Engine) { called = true }}))

	fn, err := l.Load("apps.blog", "apps.blog")
	require.NoError(t, err)
	_, err = fn(gin.New())
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoadEntrypointFromOtherModule(t *testing.T) {
	c := newCatalog(t, nil)
	require.NoError(t, c.Register(code.Module{Path: "apps.blog.api", Attrs: map[string]any{
		"Setup": func(e *gin.Engine) {},
	}}))

	_, err := NewLoader(c).Load("apps.blog.api:Setup", "apps.blog")
	assert.NoError(t, err)

	_, err = NewLoader(c).Load("apps.blog.missing:Setup", "apps.blog")
	assert.ErrorIs(t, err, ErrModuleImport)
}

func TestLoadClass(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewLoader(newCatalog(t, map[string]any{"App": code.Class[blogApp]()}))

	fn, err := l.Load("apps.blog:App", "apps.blog")
	require.NoError(t, err)

	rc, err := fn(gin.New())
	require.NoError(t, err)
	require.Equal(t, 1, rc.Len())
	assert.Equal(t, http.MethodGet, rc.Routes()[0].Method)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		attrs   map[string]any
		desc    string
		wantErr error
	}{
		{"missing attribute", map[string]any{}, "apps.blog:register", ErrAttributeMissing},
		{"not callable", map[string]any{"register": "nope"}, "apps.blog:register", ErrNotCallable},
		{"no parameters", map[string]any{"register": func() {}}, "apps.blog:register", ErrNoParameters},
		{"wrong host type", map[string]any{"register": func(s string) {}}, "apps.blog:register", ErrHostParameter},
		{"class without Register", map[string]any{"App": code.Class[noRegister]()}, "apps.blog:App", ErrNoRegisterMethod},
		{"class init fails", map[string]any{"App": code.Class[failingInit]()}, "apps.blog:App", ErrInstantiate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(newCatalog(t, tt.attrs)).Load(tt.desc, "apps.blog")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, types.ErrEntrypoint)
		})
	}
}

func TestLoadUnknownAppModule(t *testing.T) {
	_, err := NewLoader(code.NewCatalog()).Load("payments:register", "payments")
	assert.ErrorIs(t, err, ErrModuleImport)
	assert.ErrorIs(t, err, code.ErrModuleNotFound)
}

func TestInvokeRecoversPanic(t *testing.T) {
	l := NewLoader(newCatalog(t, map[string]any{"register": func(e *gin.Engine) { panic("db down") }}))

	fn, err := l.Load("apps.blog:register", "apps.blog")
	require.NoError(t, err)

	_, err = fn(gin.New())
	assert.ErrorContains(t, err, "db down")
}

func TestInvokeReportsDuplicateRouteAsConflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewLoader(newCatalog(t, map[string]any{"register": func(e *gin.Engine) {
		e.GET("/status", func(c *gin.Context) {})
		e.GET("/health", func(c *gin.Context) {})
	}}))

	fn, err := l.Load("apps.blog:register", "apps.blog")
	require.NoError(t, err)

	host := gin.New()
	host.GET("/health", func(c *gin.Context) {})

	rc, err := fn(host)
	assert.Nil(t, rc)
	require.ErrorIs(t, err, ErrRouteConflict)

	var conflict *RouteConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "/health", conflict.Path)
	assert.Len(t, host.Routes(), 2, "routes added before the conflict stay mounted")
}

func TestRouteConflictIgnoresOtherPanics(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
		ok    bool
	}{
		{"duplicate", "handlers are already registered for path '/api/items'", "/api/items", true},
		{"other string", "db down", "", false},
		{"error value", errors.New("handlers are already registered for path '/x'"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conflict, ok := routeConflict(tt.value)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, conflict.Path)
			}
		})
	}
}
