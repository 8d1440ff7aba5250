package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	warrantyapp "github.com/shopdesk/backend/internal/application/warranty"
	"github.com/shopdesk/backend/internal/infrastructure/persistence"
	"github.com/shopdesk/backend/internal/infrastructure/scheduler"
	"github.com/shopdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSweeper struct {
	result *warrantyapp.SweepResult
	err    error
	status scheduler.ExpiryStatus
}

func (s *stubSweeper) RunNow(context.Context) (*warrantyapp.SweepResult, error) {
	return s.result, s.err
}

func (s *stubSweeper) Status() scheduler.ExpiryStatus {
	return s.status
}

func newWarrantyRouter(f *apiFixture, sweeper SweepRunner) http.Handler {
	svc := warrantyapp.NewWarrantyService(f.scope, persistence.NewGormWarrantyRepository(f.db), f.publisher, zap.NewNop())
	h := NewWarrantyHandler(svc, sweeper)

	r := newEngine(f.principal())
	r.POST("/warranties", h.Create)
	r.GET("/warranties", h.List)
	r.GET("/warranties/:id", h.GetByID)
	r.GET("/warranties/:id/validity", h.Validity)
	r.POST("/warranties/:id/void", h.Void)
	r.POST("/warranties/expiry-sweep", h.RunExpirySweep)
	r.GET("/warranties/expiry-sweep", h.ExpirySweepStatus)
	return r
}

func TestWarrantyHandler_ManualLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	r := newWarrantyRouter(f, &stubSweeper{})

	w := perform(t, r, http.MethodPost, "/warranties", map[string]any{
		"source_type":     "MANUAL",
		"product_name":    "Refurbished tablet",
		"serial_number":   "TB-778",
		"warranty_type":   "SHOP",
		"customer":        map[string]any{"name": "Jane Doe", "phone": "555-0100"},
		"duration_months": 6,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	issued := decodeData[warrantyapp.WarrantyResponse](t, w)
	assert.Equal(t, "ACTIVE", issued.Status)
	assert.Equal(t, "MANUAL", issued.SourceType)
	assert.Equal(t, f.user.ID, issued.IssuedBy)

	w = perform(t, r, http.MethodGet, uuidPath("/warranties/", issued.ID, "/validity"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decodeData[warrantyapp.ValidityResponse](t, w).Valid)

	w = perform(t, r, http.MethodGet, "/warranties?customer_phone=555-0100", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeData[[]warrantyapp.WarrantyResponse](t, w), 1)

	w = perform(t, r, http.MethodPost, uuidPath("/warranties/", issued.ID, "/void"), map[string]any{"reason": "Issued in error"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "VOID", decodeData[warrantyapp.WarrantyResponse](t, w).Status)

	w = perform(t, r, http.MethodGet, uuidPath("/warranties/", issued.ID, "/validity"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, decodeData[warrantyapp.ValidityResponse](t, w).Valid)
}

func TestWarrantyHandler_CreateRejections(t *testing.T) {
	f := newAPIFixture(t)
	r := newWarrantyRouter(f, &stubSweeper{})

	t.Run("sale source is not accepted", func(t *testing.T) {
		w := perform(t, r, http.MethodPost, "/warranties", map[string]any{
			"source_type":     "SALE",
			"duration_months": 6,
		})
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeValidation)
	})

	t.Run("malformed start date", func(t *testing.T) {
		w := perform(t, r, http.MethodPost, "/warranties", map[string]any{
			"source_type":     "MANUAL",
			"product_name":    "Tablet",
			"customer":        map[string]any{"name": "Jane Doe", "phone": "555-0100"},
			"duration_months": 6,
			"start_date":      "31/01/2026",
		})
		requireErrorCode(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)
	})
}

func TestWarrantyHandler_ExpirySweep(t *testing.T) {
	f := newAPIFixture(t)
	ranAt := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)

	t.Run("runs", func(t *testing.T) {
		r := newWarrantyRouter(f, &stubSweeper{result: &warrantyapp.SweepResult{Expired: 3, Batches: 1, RanAt: ranAt}})
		w := perform(t, r, http.MethodPost, "/warranties/expiry-sweep", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, 3, decodeData[warrantyapp.SweepResult](t, w).Expired)
	})

	t.Run("already running", func(t *testing.T) {
		r := newWarrantyRouter(f, &stubSweeper{err: scheduler.ErrSweepInProgress})
		w := perform(t, r, http.MethodPost, "/warranties/expiry-sweep", nil)
		requireErrorCode(t, w, http.StatusConflict, dto.ErrCodeSweepInProgress)
	})

	t.Run("sweep failure", func(t *testing.T) {
		r := newWarrantyRouter(f, &stubSweeper{err: errors.New("db down")})
		w := perform(t, r, http.MethodPost, "/warranties/expiry-sweep", nil)
		requireErrorCode(t, w, http.StatusInternalServerError, dto.ErrCodeInternal)
	})

	t.Run("status", func(t *testing.T) {
		r := newWarrantyRouter(f, &stubSweeper{status: scheduler.ExpiryStatus{Running: true, Interval: "1h0m0s", TotalSwept: 7}})
		w := perform(t, r, http.MethodGet, "/warranties/expiry-sweep", nil)
		require.Equal(t, http.StatusOK, w.Code)
		status := decodeData[scheduler.ExpiryStatus](t, w)
		assert.True(t, status.Running)
		assert.Equal(t, 7, status.TotalSwept)
	})
}
