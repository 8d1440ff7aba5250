package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// AdjustCommand describes one requested stock movement
type AdjustCommand struct {
	ProductID uuid.UUID
	Type      AdjustmentType
	Direction Direction // only read for CORRECTION
	Quantity  int
	ActorID   uuid.UUID
	Reason    string
	Reference Reference
}

// AdjustResult is the outcome of a committed movement
type AdjustResult struct {
	Adjustment       *StockAdjustment
	PreviousQuantity int
	NewQuantity      int
}

// Event returns the domain event describing the movement
func (r *AdjustResult) Event() shared.DomainEvent {
	return NewStockAdjustedEvent(r.Adjustment)
}

// StockLedger is the single writer of stock quantities.
// Each Adjust updates the record with a version check and appends the matching
// adjustment; callers run it inside one database transaction so both writes
// commit or roll back together.
type StockLedger struct {
	records     StockRecordRepository
	adjustments StockAdjustmentRepository
	now         func() time.Time
}

// LedgerOption configures a StockLedger
type LedgerOption func(*StockLedger)

// WithClock overrides the time source
func WithClock(now func() time.Time) LedgerOption {
	return func(l *StockLedger) {
		l.now = now
	}
}

// NewStockLedger creates a StockLedger over the given repositories
func NewStockLedger(records StockRecordRepository, adjustments StockAdjustmentRepository, opts ...LedgerOption) *StockLedger {
	l := &StockLedger{
		records:     records,
		adjustments: adjustments,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetOrCreate returns the product's record, creating an empty one on first use.
// This is the only path that creates stock records.
func (l *StockLedger) GetOrCreate(ctx context.Context, productID uuid.UUID) (*StockRecord, error) {
	record, err := l.records.FindByProductID(ctx, productID)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	record = NewStockRecord(productID, l.now())
	if _, err := l.records.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("create stock record: %w", err)
	}
	// Another writer may have inserted first; read back the stored row either way.
	return l.records.FindByProductID(ctx, productID)
}

// Available returns the on-hand quantity; a product without a record has zero
func (l *StockLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	record, err := l.records.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return record.Quantity, nil
}

// EnsureAvailable fails with INSUFFICIENT_STOCK when fewer than quantity units are on hand
func (l *StockLedger) EnsureAvailable(ctx context.Context, productID uuid.UUID, quantity int) error {
	available, err := l.Available(ctx, productID)
	if err != nil {
		return err
	}
	if available < quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock: available %d, requested %d", available, quantity)).
			WithDetail("product_id", productID.String()).
			WithDetail("available", available).
			WithDetail("requested", quantity)
	}
	return nil
}

// Adjust applies one movement and records it.
// Reductions below zero fail with INSUFFICIENT_STOCK and leave the record untouched.
func (l *StockLedger) Adjust(ctx context.Context, cmd AdjustCommand) (*AdjustResult, error) {
	if cmd.ProductID == uuid.Nil {
		return nil, shared.NewInvalidInputError("Product ID is required")
	}
	if !cmd.Type.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidAdjustmentType, "Unknown adjustment type: "+string(cmd.Type))
	}
	delta, dir, err := SignedDelta(cmd.Type, cmd.Direction, cmd.Quantity)
	if err != nil {
		return nil, err
	}
	if cmd.Reference.Type == "" {
		cmd.Reference.Type = ReferenceTypeManual
	}

	record, err := l.GetOrCreate(ctx, cmd.ProductID)
	if err != nil {
		return nil, err
	}

	now := l.now()
	previous := record.Quantity
	expectedVersion := record.Version
	if err := record.apply(delta, now); err != nil {
		return nil, err
	}
	if err := l.records.UpdateQuantity(ctx, record, expectedVersion); err != nil {
		return nil, err
	}

	adjustment := &StockAdjustment{
		ID:               uuid.New(),
		ProductID:        cmd.ProductID,
		Type:             cmd.Type,
		Direction:        dir,
		Quantity:         cmd.Quantity,
		Delta:            delta,
		PreviousQuantity: previous,
		NewQuantity:      record.Quantity,
		Reference:        cmd.Reference,
		ActorID:          cmd.ActorID,
		Reason:           strings.TrimSpace(cmd.Reason),
		CreatedAt:        now,
	}
	if adjustment.NewQuantity-adjustment.PreviousQuantity != adjustment.Delta {
		return nil, shared.NewDomainError(shared.CodeInvariantViolation, "Stock adjustment delta mismatch")
	}
	if err := l.adjustments.Create(ctx, adjustment); err != nil {
		return nil, fmt.Errorf("append stock adjustment: %w", err)
	}

	return &AdjustResult{
		Adjustment:       adjustment,
		PreviousQuantity: previous,
		NewQuantity:      record.Quantity,
	}, nil
}

// LowStockItem is one line of the low-stock report
type LowStockItem struct {
	ProductID     uuid.UUID
	SKU           string
	Name          string
	Quantity      int
	MinStockLevel int
	Shortfall     int
}

// LowStock reports active products whose quantity is at or below their minimum level,
// largest shortfall first
func (l *StockLedger) LowStock(ctx context.Context, products catalog.ProductCatalog) ([]LowStockItem, error) {
	active, err := products.FindActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active products: %w", err)
	}
	if len(active) == 0 {
		return []LowStockItem{}, nil
	}

	ids := make([]uuid.UUID, len(active))
	for i, p := range active {
		ids[i] = p.ID
	}
	records, err := l.records.FindByProductIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load stock records: %w", err)
	}
	return ComputeLowStock(active, records), nil
}

// ComputeLowStock joins products with their records; products without a record count as zero
func ComputeLowStock(products []*catalog.Product, records []*StockRecord) []LowStockItem {
	quantities := make(map[uuid.UUID]int, len(records))
	for _, r := range records {
		quantities[r.ProductID] = r.Quantity
	}

	items := make([]LowStockItem, 0)
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		qty := quantities[p.ID]
		if qty > p.MinStockLevel {
			continue
		}
		items = append(items, LowStockItem{
			ProductID:     p.ID,
			SKU:           p.SKU,
			Name:          p.Name,
			Quantity:      qty,
			MinStockLevel: p.MinStockLevel,
			Shortfall:     p.MinStockLevel - qty,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Shortfall != items[j].Shortfall {
			return items[i].Shortfall > items[j].Shortfall
		}
		return items[i].SKU < items[j].SKU
	})
	return items
}
