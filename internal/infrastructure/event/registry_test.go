package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry(t *testing.T) {
	t.Run("typed handlers come before wildcards", func(t *testing.T) {
		r := NewHandlerRegistry()
		wildcard := newRecordingHandler()
		typed := newRecordingHandler()
		r.Register(wildcard)
		r.Register(typed, "SaleCompleted", "SaleVoided")

		handlers := r.GetHandlers("SaleCompleted")
		assert.Len(t, handlers, 2)
		assert.Same(t, typed, handlers[0])
		assert.Same(t, wildcard, handlers[1])

		assert.Len(t, r.GetHandlers("WarrantyIssued"), 1)
		assert.Equal(t, 2, r.Len())
	})

	t.Run("duplicate registration is ignored", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()
		r.Register(h, "StockAdjusted")
		r.Register(h, "StockAdjusted")
		r.Register(h)
		r.Register(h)

		assert.Len(t, r.GetHandlers("StockAdjusted"), 2)
		assert.Equal(t, 1, r.Len())
	})

	t.Run("unregister removes every registration", func(t *testing.T) {
		r := NewHandlerRegistry()
		h := newRecordingHandler()
		keep := newRecordingHandler()
		r.Register(h, "A", "B")
		r.Register(h)
		r.Register(keep, "A")

		r.Unregister(h)

		assert.Len(t, r.GetHandlers("A"), 1)
		assert.Empty(t, r.GetHandlers("B"))
		assert.Equal(t, 1, r.Len())
	})
}
