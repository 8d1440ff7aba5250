package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		c.Header("X-Api", "yes")
		c.Next()
	})

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, "yes", w.Header().Get("X-Api"))
}

func TestDomainGroup(t *testing.T) {
	ok := func(body string) gin.HandlerFunc {
		return func(c *gin.Context) { c.String(http.StatusOK, body) }
	}

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.GET("/items", ok("list")).
			POST("/items", ok("create")).
			PUT("/items/:id", ok("update")).
			DELETE("/items/:id", ok("delete"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path, body string }{
			{http.MethodGet, "/api/v1/test/items", "list"},
			{http.MethodPost, "/api/v1/test/items", "create"},
			{http.MethodPut, "/api/v1/test/items/1", "update"},
			{http.MethodDelete, "/api/v1/test/items/1", "delete"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, "%s %s", tc.method, tc.path)
			assert.Equal(t, tc.body, w.Body.String())
		}
	})

	t.Run("applies group middleware", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("test", "/test")
		g.Use(func(c *gin.Context) {
			c.Header("X-Test-Middleware", "applied")
			c.Next()
		})
		g.GET("/items", ok("ok"))
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/test/items", nil))
		assert.Equal(t, "applied", w.Header().Get("X-Test-Middleware"))
	})

	t.Run("lists routes with subgroups", func(t *testing.T) {
		g := NewDomainGroup("shop", "/shop")
		g.GET("", ok(""))
		g.Group("items", "/items").POST("/:id/void", ok(""))

		assert.Equal(t, "shop", g.Name())
		assert.Equal(t, "/shop", g.Prefix())
		assert.Equal(t, []RouteInfo{
			{Method: http.MethodGet, Path: "/shop"},
			{Method: http.MethodPost, Path: "/shop/items/:id/void"},
		}, g.Routes())
	})
}

type denyAll struct{}

func (denyAll) Authorize(_ context.Context, _ *identityapp.Principal, _ identity.CheckMode, required ...identity.PermissionCode) error {
	codes := make([]string, len(required))
	for i, c := range required {
		codes[i] = c.String()
	}
	return shared.ErrForbidden.WithDetail("missing", codes)
}

func apiRoutes(g Guards) map[RouteInfo]bool {
	out := make(map[RouteInfo]bool)
	for _, group := range APIGroups(Handlers{}, g) {
		for _, info := range group.Routes() {
			out[info] = true
		}
	}
	return out
}

func TestAPIGroups_RouteTable(t *testing.T) {
	routes := apiRoutes(Guards{Authz: denyAll{}})
	for _, want := range []RouteInfo{
		{http.MethodPost, "/auth/login"},
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/permissions"},
		{http.MethodDelete, "/roles/:id/permissions/:code"},
		{http.MethodPut, "/users/:id/overrides"},
		{http.MethodPut, "/products/:id"},
		{http.MethodGet, "/inventory/low-stock"},
		{http.MethodPost, "/inventory/adjustments"},
		{http.MethodGet, "/inventory/:productId/adjustments"},
		{http.MethodPost, "/sales/:id/void"},
		{http.MethodGet, "/sales/:id/receipt"},
		{http.MethodPost, "/exchanges"},
		{http.MethodPost, "/repairs/:id/collect"},
		{http.MethodGet, "/repairs/:id/ticket"},
		{http.MethodPost, "/warranties/:id/claims"},
		{http.MethodPost, "/warranties/expiry-sweep"},
		{http.MethodGet, "/health/ready"},
	} {
		assert.True(t, routes[want], "missing route %s %s", want.Method, want.Path)
	}
}

func newAPIEngine(t *testing.T, g Guards, principal *identityapp.Principal) *gin.Engine {
	t.Helper()
	engine := gin.New()
	r := NewRouter(engine)
	r.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(middleware.PrincipalKey, principal)
		}
		c.Next()
	})
	RegisterAPI(r, Handlers{}, g)
	require.NotPanics(t, r.Setup)
	return engine
}

func TestRegisterAPI_PermissionGuards(t *testing.T) {
	user, err := identity.NewUser("cashier", "Cashier", "password123")
	require.NoError(t, err)
	principal := &identityapp.Principal{User: user}

	t.Run("denied with the missing code", func(t *testing.T) {
		engine := newAPIEngine(t, Guards{Authz: denyAll{}}, principal)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sales/"+user.ID.String()+"/void", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_FORBIDDEN")
		assert.Contains(t, w.Body.String(), identity.PermSaleVoid.String())
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		engine := newAPIEngine(t, Guards{Authz: denyAll{}}, nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/warranties", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRegisterAPI_IdempotencyOnlyOnCreates(t *testing.T) {
	teapot := func(c *gin.Context) { c.AbortWithStatus(http.StatusTeapot) }
	user, err := identity.NewUser("cashier", "Cashier", "password123")
	require.NoError(t, err)
	engine := newAPIEngine(t, Guards{Authz: denyAll{}, Idempotency: teapot}, &identityapp.Principal{User: user})

	for _, tc := range []struct {
		path string
		want int
	}{
		{"/api/v1/sales", http.StatusTeapot},
		{"/api/v1/returns", http.StatusTeapot},
		{"/api/v1/exchanges", http.StatusTeapot},
		{"/api/v1/repairs", http.StatusTeapot},
		{"/api/v1/repairs/" + user.ID.String() + "/collect", http.StatusTeapot},
		{"/api/v1/sales/" + user.ID.String() + "/void", http.StatusForbidden},
		{"/api/v1/warranties/expiry-sweep", http.StatusForbidden},
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tc.path, nil))
		assert.Equal(t, tc.want, w.Code, tc.path)
	}
}
