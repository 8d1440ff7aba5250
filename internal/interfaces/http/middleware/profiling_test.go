package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestProfilingMiddleware_SetsLabels(t *testing.T) {
	router := gin.New()
	router.Use(Profiling())
	router.POST("/api/v1/repairs/:id/complete", func(c *gin.Context) {
		ctx := c.Request.Context()
		controller, _ := pprof.Label(ctx, ProfilingLabelController)
		route, _ := pprof.Label(ctx, ProfilingLabelRoute)
		method, _ := pprof.Label(ctx, ProfilingLabelMethod)
		c.JSON(http.StatusOK, gin.H{"controller": controller, "route": route, "method": method})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/repairs/abc/complete", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"controller":"repairs","route":"/api/v1/repairs/:id/complete","method":"POST"}`, w.Body.String())
}

func TestProfilingMiddleware_SkipsAndDisabled(t *testing.T) {
	for name, mw := range map[string]gin.HandlerFunc{
		"skip path": Profiling(),
		"disabled":  ProfilingWithConfig(ProfilingConfig{Enabled: false}),
	} {
		t.Run(name, func(t *testing.T) {
			router := gin.New()
			router.Use(mw)
			router.GET("/api/v1/health/live", func(c *gin.Context) {
				_, labelled := pprof.Label(c.Request.Context(), ProfilingLabelRoute)
				assert.False(t, labelled)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health/live", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestExtractControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/sales":                 "sales",
		"/api/v1/sales/:id/void":        "sales",
		"/api/v2/warranties/:id/claims": "warranties",
		"/api/v1/inventory/low-stock":   "inventory",
		"/api/v1/:id":                   "",
		"":                              "",
	}
	for route, want := range tests {
		assert.Equal(t, want, extractControllerFromRoute(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("sales"))
}
