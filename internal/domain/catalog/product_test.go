package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAttrs() ProductAttributes {
	return ProductAttributes{
		Name:                   "USB-C Cable",
		SellingPrice:           decimal.NewFromInt(150),
		CostPrice:              decimal.NewFromInt(100),
		TaxRate:                decimal.NewFromInt(10),
		WarrantyDurationMonths: 6,
		MinStockLevel:          3,
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("creates active product with upper-case sku", func(t *testing.T) {
		p, err := NewProduct("usb-c-1m", validAttrs())
		require.NoError(t, err)
		assert.Equal(t, "USB-C-1M", p.SKU)
		assert.True(t, p.IsActive)
		assert.True(t, p.HasWarranty())
		assert.Equal(t, WarrantyTypeShop, p.WarrantyType)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("defaults warranty type to none without duration", func(t *testing.T) {
		attrs := validAttrs()
		attrs.WarrantyDurationMonths = 0
		p, err := NewProduct("CASE-1", attrs)
		require.NoError(t, err)
		assert.Equal(t, WarrantyTypeNone, p.WarrantyType)
		assert.False(t, p.HasWarranty())
	})

	tests := []struct {
		name   string
		sku    string
		mutate func(*ProductAttributes)
	}{
		{"empty sku", "", func(*ProductAttributes) {}},
		{"sku with spaces", "A B", func(*ProductAttributes) {}},
		{"empty name", "SKU1", func(a *ProductAttributes) { a.Name = " " }},
		{"negative price", "SKU1", func(a *ProductAttributes) { a.SellingPrice = decimal.NewFromInt(-1) }},
		{"tax above 100", "SKU1", func(a *ProductAttributes) { a.TaxRate = decimal.NewFromInt(101) }},
		{"negative warranty", "SKU1", func(a *ProductAttributes) { a.WarrantyDurationMonths = -1 }},
		{"negative min stock", "SKU1", func(a *ProductAttributes) { a.MinStockLevel = -1 }},
		{"unknown warranty type", "SKU1", func(a *ProductAttributes) { a.WarrantyType = "LIFETIME" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validAttrs()
			tt.mutate(&attrs)
			_, err := NewProduct(tt.sku, attrs)
			assert.Error(t, err)
		})
	}
}

func TestProduct_Lifecycle(t *testing.T) {
	p, err := NewProduct("SKU1", validAttrs())
	require.NoError(t, err)

	attrs := validAttrs()
	attrs.SellingPrice = decimal.NewFromInt(175)
	require.NoError(t, p.Update(attrs))
	assert.True(t, p.SellingPrice.Equal(decimal.NewFromInt(175)))
	assert.Equal(t, 2, p.Version)

	require.NoError(t, p.Deactivate())
	assert.Error(t, p.EnsureSellable())
	assert.Error(t, p.Deactivate())

	require.NoError(t, p.Activate())
	assert.NoError(t, p.EnsureSellable())
}
