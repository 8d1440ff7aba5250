package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when BusinessMetrics is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// SaleAmountBuckets are histogram boundaries for sale grand totals
var SaleAmountBuckets = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// LowStockCounter reports how many active products sit at or below their minimum level
type LowStockCounter interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// BusinessMetrics turns committed domain events into shop counters.
// It subscribes to the event bus like any other handler.
type BusinessMetrics struct {
	salesCompleted    metric.Int64Counter
	salesVoided       metric.Int64Counter
	saleAmount        metric.Float64Histogram
	refundAmount      metric.Float64Counter
	returns           metric.Int64Counter
	stockAdjustments  metric.Int64Counter
	stockUnits        metric.Int64Counter
	warrantiesIssued  metric.Int64Counter
	warrantyClaims    metric.Int64Counter
	warrantyEnded     metric.Int64Counter
	repairTransitions metric.Int64Counter
}

// NewBusinessMetrics creates the instruments on meter. A non-nil lowStock adds an
// observable gauge evaluated at each collection.
func NewBusinessMetrics(meter metric.Meter, lowStock LowStockCounter) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		bm  BusinessMetrics
		err error
	)
	counter := func(dst *metric.Int64Counter, name, desc string) {
		if err != nil {
			return
		}
		*dst, err = meter.Int64Counter(name, metric.WithDescription(desc))
	}
	counter(&bm.salesCompleted, "shop.sales.completed", "Completed sales")
	counter(&bm.salesVoided, "shop.sales.voided", "Voided sales")
	counter(&bm.returns, "shop.returns", "Returns by type")
	counter(&bm.stockAdjustments, "shop.stock.adjustments", "Stock adjustments by type")
	counter(&bm.stockUnits, "shop.stock.units_moved", "Absolute units moved by adjustment type")
	counter(&bm.warrantiesIssued, "shop.warranties.issued", "Warranties issued by source")
	counter(&bm.warrantyClaims, "shop.warranties.claims", "Warranty claims by resolution")
	counter(&bm.warrantyEnded, "shop.warranties.ended", "Warranties voided or expired")
	counter(&bm.repairTransitions, "shop.repairs.transitions", "Repair job status transitions")
	if err != nil {
		return nil, fmt.Errorf("create business counters: %w", err)
	}

	bm.saleAmount, err = meter.Float64Histogram("shop.sales.amount",
		metric.WithDescription("Sale grand totals"),
		metric.WithExplicitBucketBoundaries(SaleAmountBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create sale amount histogram: %w", err)
	}
	bm.refundAmount, err = meter.Float64Counter("shop.returns.refund_amount",
		metric.WithDescription("Money refunded by return type"))
	if err != nil {
		return nil, fmt.Errorf("create refund counter: %w", err)
	}

	if lowStock != nil {
		gauge, err := meter.Int64ObservableGauge("shop.stock.low_products",
			metric.WithDescription("Active products at or below minimum stock"))
		if err != nil {
			return nil, fmt.Errorf("create low stock gauge: %w", err)
		}
		_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
			n, err := lowStock.CountLowStock(ctx)
			if err != nil {
				return err
			}
			o.ObserveInt64(gauge, n)
			return nil
		}, gauge)
		if err != nil {
			return nil, fmt.Errorf("register low stock callback: %w", err)
		}
	}
	return &bm, nil
}

// EventTypes lists the events that move a counter
func (m *BusinessMetrics) EventTypes() []string {
	return []string{
		sales.EventTypeSaleCompleted,
		sales.EventTypeSaleVoided,
		sales.EventTypeReturnCompleted,
		inventory.EventTypeStockAdjusted,
		warranty.EventTypeWarrantyIssued,
		warranty.EventTypeWarrantyClaimed,
		warranty.EventTypeWarrantyVoided,
		warranty.EventTypeWarrantyExpired,
		repair.EventTypeRepairStatusChanged,
	}
}

// Handle records evt
func (m *BusinessMetrics) Handle(ctx context.Context, evt shared.DomainEvent) error {
	switch e := evt.(type) {
	case *sales.SaleCompletedEvent:
		m.salesCompleted.Add(ctx, 1)
		m.saleAmount.Record(ctx, e.GrandTotal.InexactFloat64())
	case *sales.SaleVoidedEvent:
		m.salesVoided.Add(ctx, 1)
	case *sales.ReturnCompletedEvent:
		attrs := metric.WithAttributes(attribute.String("return_type", string(e.ReturnType)))
		m.returns.Add(ctx, 1, attrs)
		m.refundAmount.Add(ctx, e.TotalRefund.InexactFloat64(), attrs)
	case *inventory.StockAdjustedEvent:
		attrs := metric.WithAttributes(attribute.String("adjustment_type", string(e.AdjustmentType)))
		m.stockAdjustments.Add(ctx, 1, attrs)
		units := int64(e.Delta)
		if units < 0 {
			units = -units
		}
		m.stockUnits.Add(ctx, units, attrs)
	case *warranty.IssuedEvent:
		m.warrantiesIssued.Add(ctx, 1, metric.WithAttributes(attribute.String("source_type", string(e.SourceType))))
	case *warranty.ClaimedEvent:
		m.warrantyClaims.Add(ctx, 1, metric.WithAttributes(attribute.String("resolution", string(e.Resolution))))
	case *warranty.StatusEvent:
		m.warrantyEnded.Add(ctx, 1, metric.WithAttributes(attribute.String("event", e.EventType())))
	case *repair.StatusChangedEvent:
		m.repairTransitions.Add(ctx, 1, metric.WithAttributes(attribute.String("to", string(e.To))))
	}
	return nil
}

var _ shared.EventHandler = (*BusinessMetrics)(nil)
