package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serveSwagger(cfg SwaggerConfig, remoteAddr string) int {
	router := gin.New()
	router.GET("/swagger/*any", SwaggerProtection(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestSwaggerProtection(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serveSwagger(SwaggerConfig{Enabled: false}, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, serveSwagger(SwaggerConfig{Enabled: true}, "10.0.0.1:1234"))

	restricted := SwaggerConfig{Enabled: true, AllowedIPs: []string{"192.168.1.10", "10.1.0.0/16"}}
	assert.Equal(t, http.StatusOK, serveSwagger(restricted, "192.168.1.10:5000"))
	assert.Equal(t, http.StatusOK, serveSwagger(restricted, "10.1.44.2:5000"))
	assert.Equal(t, http.StatusForbidden, serveSwagger(restricted, "10.2.0.1:5000"))
}

func TestIsIPAllowed(t *testing.T) {
	_, network, _ := net.ParseCIDR("172.16.0.0/12")
	ips := []net.IP{net.ParseIP("127.0.0.1")}

	assert.True(t, isIPAllowed(net.ParseIP("127.0.0.1"), ips, nil))
	assert.True(t, isIPAllowed(net.ParseIP("172.20.1.1"), ips, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(net.ParseIP("8.8.8.8"), ips, []*net.IPNet{network}))
	assert.False(t, isIPAllowed(nil, ips, nil))
}
