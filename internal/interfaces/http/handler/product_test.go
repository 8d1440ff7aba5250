package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	catalogapp "github.com/shopdesk/backend/internal/application/catalog"
	inventoryapp "github.com/shopdesk/backend/internal/application/inventory"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductRouter(f *apiFixture) http.Handler {
	h := NewProductHandler(f.products)
	r := newEngine(f.principal())
	r.POST("/products", h.Create)
	r.GET("/products", h.List)
	r.GET("/products/:id", h.GetByID)
	r.GET("/products/sku/:sku", h.GetBySKU)
	r.PUT("/products/:id", h.Update)
	r.POST("/products/:id/deactivate", h.Deactivate)
	r.POST("/products/:id/activate", h.Activate)
	return r
}

func TestProductHandler_CreateAndFetch(t *testing.T) {
	f := newAPIFixture(t)
	r := newProductRouter(f)

	w := perform(t, r, http.MethodPost, "/products", map[string]any{
		"sku":                      "ph-001",
		"name":                     "Phone X",
		"category":                 "phones",
		"selling_price":            "499.99",
		"cost_price":               "350",
		"tax_rate":                 "10",
		"warranty_duration_months": 12,
		"warranty_type":            "MANUFACTURER",
		"min_stock_level":          2,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeData[catalogapp.ProductResponse](t, w)
	assert.Equal(t, "PH-001", created.SKU)
	assert.True(t, decimal.RequireFromString("499.99").Equal(created.SellingPrice))

	t.Run("by id", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, uuidPath("/products/", created.ID, ""), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decodeData[catalogapp.ProductResponse](t, w).ID)
	})

	t.Run("by sku", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, "/products/sku/PH-001", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, created.ID, decodeData[catalogapp.ProductResponse](t, w).ID)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		w := perform(t, r, http.MethodPost, "/products", map[string]any{
			"sku":           "PH-001",
			"name":          "Other",
			"selling_price": "10",
			"warranty_type": "NONE",
		})
		requireErrorCode(t, w, http.StatusConflict, "ERR_SKU_EXISTS")
	})

	t.Run("unknown id", func(t *testing.T) {
		w := perform(t, r, http.MethodGet, uuidPath("/products/", uuid.New(), ""), nil)
		requireErrorCode(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("bad warranty type", func(t *testing.T) {
		w := perform(t, r, http.MethodPost, "/products", map[string]any{
			"sku":           "PH-002",
			"name":          "Other",
			"warranty_type": "LIFETIME",
		})
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})
}

func TestProductHandler_ListAndDeactivate(t *testing.T) {
	f := newAPIFixture(t)
	r := newProductRouter(f)
	a := f.product(t, "A-1", 10, 0)
	f.product(t, "B-1", 20, 0)

	w := perform(t, r, http.MethodPost, uuidPath("/products/", a.ID, "/deactivate"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decodeData[catalogapp.ProductResponse](t, w).IsActive)

	w = perform(t, r, http.MethodGet, "/products?is_active=true&page=1&page_size=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.Total)
	assert.Equal(t, 10, env.Meta.PageSize)

	items := decodeData[[]catalogapp.ProductResponse](t, w)
	require.Len(t, items, 1)
	assert.Equal(t, "B-1", items[0].SKU)
}

func TestInventoryHandler_AdjustAndRead(t *testing.T) {
	f := newAPIFixture(t)
	h := NewInventoryHandler(f.stock)
	r := newEngine(f.principal())
	r.POST("/inventory/adjustments", h.Adjust)
	r.GET("/inventory/:productId", h.GetStock)
	r.GET("/inventory/:productId/adjustments", h.History)
	p := f.product(t, "INV-1", 10, 5)

	w := perform(t, r, http.MethodPost, "/inventory/adjustments", map[string]any{
		"product_id": p.ID,
		"type":       "DAMAGE",
		"quantity":   2,
		"reason":     "Dropped",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decodeData[inventoryapp.AdjustmentResponse](t, w)
	assert.Equal(t, 5, entry.PreviousQuantity)
	assert.Equal(t, 3, entry.NewQuantity)
	assert.Equal(t, f.user.ID, entry.ActorID)

	w = perform(t, r, http.MethodGet, uuidPath("/inventory/", p.ID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decodeData[inventoryapp.StockResponse](t, w).Quantity)

	w = perform(t, r, http.MethodGet, uuidPath("/inventory/", p.ID, "/adjustments"), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]inventoryapp.AdjustmentResponse](t, w), 2)

	t.Run("over-draw is rejected", func(t *testing.T) {
		w := perform(t, r, http.MethodPost, "/inventory/adjustments", map[string]any{
			"product_id": p.ID,
			"type":       "THEFT",
			"quantity":   10,
		})
		requireErrorCode(t, w, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock)
	})
}
