package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(BodyLimit(limit))
	echo := func(c *gin.Context) {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.String(http.StatusRequestEntityTooLarge, "truncated")
			return
		}
		c.String(http.StatusOK, "%d", len(data))
	}
	r.POST("/sales", echo)
	r.GET("/sales", echo)
	return r
}

func TestBodyLimit(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64
		wantStatus    int
		wantBody      string
	}{
		{"body under limit", http.MethodPost, `{"lines":[]}`, 12, http.StatusOK, "12"},
		{"body exactly at limit", http.MethodPost, strings.Repeat("a", 64), 64, http.StatusOK, "64"},
		{"declared length over limit", http.MethodPost, strings.Repeat("a", 65), 65, http.StatusRequestEntityTooLarge, "ERR_REQUEST_TOO_LARGE"},
		{"chunked body over limit", http.MethodPost, strings.Repeat("a", 200), -1, http.StatusRequestEntityTooLarge, "truncated"},
		{"empty GET", http.MethodGet, "", 0, http.StatusOK, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newBodyLimitRouter(64)
			req := httptest.NewRequest(tt.method, "/sales", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
