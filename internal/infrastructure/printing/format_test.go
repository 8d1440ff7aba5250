package printing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter_RejectsUnknownLocaleOrCurrency(t *testing.T) {
	_, err := NewFormatter("not a locale!", "USD", nil)
	require.Error(t, err)

	_, err = NewFormatter("en-US", "ZZZZ", nil)
	require.Error(t, err)
}

func TestFormatter_Money(t *testing.T) {
	f, err := NewFormatter("en-US", "USD", nil)
	require.NoError(t, err)

	assert.Contains(t, f.Money(decimal.RequireFromString("1234.5")), "1,234.50")
	assert.Contains(t, f.Money(decimal.RequireFromString("1234.5")), "$")
	assert.Contains(t, f.Money(decimal.RequireFromString("0.005")), "0.01")
	assert.Contains(t, f.Money(decimal.Zero), "0.00")
}

func TestFormatter_Dates(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	f, err := NewFormatter("en-US", "USD", loc)
	require.NoError(t, err)

	at := time.Date(2026, 3, 14, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-15", f.Date(at))
	assert.Equal(t, "2026-03-15 03:30", f.DateTime(at))
	assert.Empty(t, f.Date(time.Time{}))
	assert.Empty(t, f.DateTime(time.Time{}))
}

func TestFormatter_Label(t *testing.T) {
	f, err := NewFormatter("en-US", "USD", nil)
	require.NoError(t, err)

	assert.Equal(t, "Bank Transfer", f.Label("BANK_TRANSFER"))
	assert.Equal(t, "In Progress", f.Label("IN_PROGRESS"))
	assert.Equal(t, "Cash", f.Label("CASH"))
}

func TestFormatter_Number(t *testing.T) {
	f, err := NewFormatter("en-US", "USD", nil)
	require.NoError(t, err)

	assert.Equal(t, "3", f.Number(3))
	assert.Equal(t, "12,500", f.Number(12500))
}
