package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyHeader carries the client-chosen key of a mutating request
const IdempotencyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// Idempotency rejects a replayed POST carrying an Idempotency-Key that is
// already claimed. Keys are scoped per user and route. A request that fails
// with a 4xx or 5xx releases its key so the client can retry it.
// Requests without the header pass through unchanged.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if store == nil || key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, "Idempotency-Key is too long", c.GetString(RequestIDKey)))
			return
		}

		scope := "anonymous"
		if p := GetPrincipal(c); p != nil {
			scope = p.ID().String()
		}
		storeKey := scope + ":" + c.FullPath() + ":" + key

		ctx := c.Request.Context()
		claimed, err := store.Claim(ctx, storeKey, ttl)
		if err != nil {
			if log != nil {
				log.Warn("Idempotency store unavailable, processing request", zap.Error(err))
			}
			c.Next()
			return
		}
		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict,
				dto.NewErrorResponseWithRequestID(dto.ErrCodeConflict,
					"A request with this Idempotency-Key was already processed", c.GetString(RequestIDKey)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, storeKey); err != nil && log != nil {
				log.Warn("Failed to release idempotency key", zap.String("key", storeKey), zap.Error(err))
			}
		}
	}
}
