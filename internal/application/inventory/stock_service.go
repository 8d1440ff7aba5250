package inventory

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// StockService exposes the stock ledger to staff: queries, manual adjustments
// and the low-stock report
type StockService struct {
	scope       appshared.TransactionScope
	records     inventory.StockRecordRepository
	adjustments inventory.StockAdjustmentRepository
	products    catalog.ProductCatalog
	publisher   shared.EventPublisher
	logger      *zap.Logger
}

// NewStockService creates a new StockService
func NewStockService(
	scope appshared.TransactionScope,
	records inventory.StockRecordRepository,
	adjustments inventory.StockAdjustmentRepository,
	products catalog.ProductCatalog,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		scope:       scope,
		records:     records,
		adjustments: adjustments,
		products:    products,
		publisher:   publisher,
		logger:      logger,
	}
}

// GetStock returns the current quantity of a product; products never stocked report zero
func (s *StockService) GetStock(ctx context.Context, productID uuid.UUID) (*StockResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := &StockResponse{
		ProductID:     product.ID,
		SKU:           product.SKU,
		Name:          product.Name,
		MinStockLevel: product.MinStockLevel,
	}
	record, err := s.records.FindByProductID(ctx, productID)
	switch {
	case err == nil:
		resp.Quantity = record.Quantity
		resp.LastUpdated = &record.LastUpdated
	case !errors.Is(err, shared.ErrNotFound):
		return nil, err
	}
	resp.IsLow = product.IsActive && resp.Quantity <= product.MinStockLevel
	return resp, nil
}

// History lists a product's adjustments, newest first
func (s *StockService) History(ctx context.Context, productID uuid.UUID, filter shared.Filter) (shared.Paginated[AdjustmentResponse], error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return shared.Paginated[AdjustmentResponse]{}, err
	}
	filter = filter.Normalize()
	items, total, err := s.adjustments.FindByProduct(ctx, productID, filter)
	if err != nil {
		return shared.Paginated[AdjustmentResponse]{}, err
	}
	return shared.NewPaginated(ToAdjustmentResponses(items), total, filter.Page, filter.PageSize), nil
}

// Adjust records a manual stock movement
func (s *StockService) Adjust(ctx context.Context, actorID uuid.UUID, input AdjustStockInput) (*AdjustmentResponse, error) {
	if input.Quantity <= 0 {
		return nil, shared.NewInvalidInputError("Quantity must be positive")
	}
	cmd := inventory.AdjustCommand{
		ProductID: input.ProductID,
		Type:      inventory.AdjustmentType(strings.ToUpper(strings.TrimSpace(input.Type))),
		Direction: inventory.Direction(strings.ToUpper(strings.TrimSpace(input.Direction))),
		Quantity:  input.Quantity,
		ActorID:   actorID,
		Reason:    input.Reason,
		Reference: inventory.ManualReference(),
	}

	var (
		recorder appshared.EventRecorder
		result   *inventory.AdjustResult
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			if _, err := repos.Products().FindByID(ctx, input.ProductID); err != nil {
				return err
			}
			res, err := appshared.Ledger(repos).Adjust(ctx, cmd)
			if err != nil {
				return err
			}
			recorder.Record(res.Event())
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Stock adjusted",
		zap.String("product_id", input.ProductID.String()),
		zap.String("type", string(cmd.Type)),
		zap.Int("previous_quantity", result.PreviousQuantity),
		zap.Int("new_quantity", result.NewQuantity),
		zap.String("actor_id", actorID.String()))
	resp := ToAdjustmentResponse(result.Adjustment)
	return &resp, nil
}

// LowStock reports active products at or below their minimum level
func (s *StockService) LowStock(ctx context.Context) ([]LowStockResponse, error) {
	items, err := inventory.NewStockLedger(s.records, s.adjustments).LowStock(ctx, s.products)
	if err != nil {
		return nil, err
	}
	return toLowStockResponses(items), nil
}

// CountLowStock returns the size of the low-stock report
func (s *StockService) CountLowStock(ctx context.Context) (int64, error) {
	items, err := inventory.NewStockLedger(s.records, s.adjustments).LowStock(ctx, s.products)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}
