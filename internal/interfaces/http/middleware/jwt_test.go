package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	identityapp "github.com/shopdesk/backend/internal/application/identity"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/logger"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	tokens map[string]*identityapp.Principal
	calls  int
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*identityapp.Principal, error) {
	f.calls++
	if p, ok := f.tokens[token]; ok {
		return p, nil
	}
	return nil, shared.ErrUnauthorized
}

func newTestPrincipal(username string, codes ...identity.PermissionCode) *identityapp.Principal {
	user := &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		Status:            identity.UserStatusActive,
	}
	return &identityapp.Principal{
		User: user,
		Permissions: identity.EffectivePermissions{
			UserID:  user.ID,
			Allowed: identity.NewPermissionSet(codes...),
		},
	}
}

func decodeError(t *testing.T, body []byte) dto.ErrorInfo {
	t.Helper()
	var resp struct {
		Success bool          `json:"success"`
		Error   dto.ErrorInfo `json:"error"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.False(t, resp.Success)
	return resp.Error
}

func TestAuthMiddleware(t *testing.T) {
	cashier := newTestPrincipal("cashier", identity.PermSaleCreate)
	authn := &fakeAuthenticator{tokens: map[string]*identityapp.Principal{"good-token": cashier}}

	router := gin.New()
	router.Use(RequestID(), AuthMiddleware(authn))
	router.GET("/api/v1/sales", func(c *gin.Context) {
		p := GetPrincipal(c)
		require.NotNil(t, p)
		assert.Equal(t, cashier.ID().String(), logger.GetUserID(c.Request.Context()))
		c.String(http.StatusOK, p.User.Username)
	})
	router.POST("/api/v1/auth/login", func(c *gin.Context) {
		assert.Nil(t, GetPrincipal(c))
		c.Status(http.StatusOK)
	})
	router.GET("/api/v1/health/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("valid token resolves the principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cashier", w.Body.String())
	})

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"empty token", "Bearer "},
		{"unknown token", "Bearer stale-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/sales", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			info := decodeError(t, w.Body.Bytes())
			assert.Equal(t, dto.ErrCodeUnauthorized, info.Code)
			assert.Equal(t, w.Header().Get("X-Request-ID"), info.RequestID)
		})
	}

	t.Run("public paths skip authentication", func(t *testing.T) {
		before := authn.calls
		for _, r := range []struct{ method, path string }{
			{http.MethodPost, "/api/v1/auth/login"},
			{http.MethodGet, "/api/v1/health/live"},
		} {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, r.path)
		}
		assert.Equal(t, before, authn.calls)
	})
}

func TestGetPrincipal_Absent(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, GetPrincipal(c))

	c.Set(PrincipalKey, "not a principal")
	assert.Nil(t, GetPrincipal(c))
}
