package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/infrastructure/cache"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func TestIdempotency(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	fail := true
	calls := 0
	router := gin.New()
	router.Use(Idempotency(store, time.Minute, nil))
	router.POST("/sales", func(c *gin.Context) {
		calls++
		c.Status(http.StatusCreated)
	})
	router.POST("/flaky", func(c *gin.Context) {
		calls++
		if fail {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		c.Status(http.StatusCreated)
	})

	post := func(path, key string) int {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		if w.Code == http.StatusConflict {
			assert.Contains(t, w.Body.String(), dto.ErrCodeConflict)
		}
		return w.Code
	}

	t.Run("replay is rejected", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusCreated, post("/sales", "checkout-1"))
		assert.Equal(t, http.StatusConflict, post("/sales", "checkout-1"))
		assert.Equal(t, 1, calls)
	})

	t.Run("no header is never deduplicated", func(t *testing.T) {
		calls = 0
		post("/sales", "")
		post("/sales", "")
		assert.Equal(t, 2, calls)
	})

	t.Run("failed request releases its key", func(t *testing.T) {
		calls = 0
		assert.Equal(t, http.StatusUnprocessableEntity, post("/flaky", "k-2"))
		fail = false
		assert.Equal(t, http.StatusCreated, post("/flaky", "k-2"))
		assert.Equal(t, http.StatusConflict, post("/flaky", "k-2"))
		assert.Equal(t, 2, calls)
	})

	t.Run("same key on another route is independent", func(t *testing.T) {
		calls = 0
		fail = false
		assert.Equal(t, http.StatusCreated, post("/flaky", "checkout-1"))
		assert.Equal(t, 1, calls)
	})
}
