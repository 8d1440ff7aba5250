package sequence

import (
	"testing"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestRedisGenerator_Key(t *testing.T) {
	day := time.Date(2026, 2, 3, 23, 59, 0, 0, time.UTC)

	g := NewRedisGenerator(nil)
	assert.Equal(t, "seq:SL:20260203", g.Key(shared.DocumentTypeSale, day))
	assert.Equal(t, 72*time.Hour, g.ttl)

	custom := NewRedisGenerator(nil, WithKeyPrefix("shop:seq:"), WithKeyTTL(time.Hour))
	assert.Equal(t, "shop:seq:CLM:20260203", custom.Key(shared.DocumentTypeClaim, day))
	assert.Equal(t, time.Hour, custom.ttl)
}
