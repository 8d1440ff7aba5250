package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"go.uber.org/zap"
)

// SaleService rings up and voids sales. Every operation runs in one transaction
// covering the sale, its stock movements, its warranties and the numbers it draws.
type SaleService struct {
	scope     appshared.TransactionScope
	saleRepo  sales.SaleRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewSaleService creates a new SaleService
func NewSaleService(
	scope appshared.TransactionScope,
	saleRepo sales.SaleRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		scope:     scope,
		saleRepo:  saleRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create completes a sale: prices the lines, deducts stock and issues warranties.
// Underpayment is accepted and reported through the payment status.
func (s *SaleService) Create(ctx context.Context, actorID uuid.UUID, input CreateSaleInput) (*SaleResponse, error) {
	payments, err := parsePayments(input.Payments)
	if err != nil {
		return nil, err
	}
	discount := parseDiscount(input.Discount)

	var (
		recorder appshared.EventRecorder
		sale     *sales.Sale
		issued   []*warranty.Warranty
	)
	err = appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			items, products, err := priceLines(ctx, repos, input.Items)
			if err != nil {
				return err
			}
			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeSale, now)
			if err != nil {
				return err
			}
			sale, err = sales.NewSale(sales.NewSaleParams{
				SaleNumber: number,
				CashierID:  actorID,
				Items:      items,
				Discount:   discount,
				Payments:   payments,
				Customer:   input.Customer,
				Notes:      input.Notes,
				Now:        now,
			})
			if err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
			recorder.Collect(sale)

			if err := deductSaleStock(ctx, appshared.Ledger(repos), sale, actorID, &recorder); err != nil {
				return err
			}
			issued, err = issueSaleWarranties(ctx, repos, sale, products, actorID, now, &recorder)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Sale completed",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("grand_total", sale.GrandTotal.StringFixed(2)),
		zap.Int("items", len(sale.Items)),
		zap.Int("warranties", len(issued)))

	resp := ToSaleResponse(sale)
	resp.Warranties = toWarrantyRefs(issued)
	return &resp, nil
}

// Void cancels a sale and puts every sold unit back in stock. A sale with any
// return against it cannot be voided. Warranties issued by the sale are left as
// they are.
func (s *SaleService) Void(ctx context.Context, actorID, saleID uuid.UUID, input VoidSaleInput) (*SaleResponse, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, shared.NewInvalidInputError("Void reason is required")
	}

	var (
		recorder appshared.EventRecorder
		sale     *sales.Sale
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			var err error
			sale, err = repos.Sales().FindByID(ctx, saleID)
			if err != nil {
				return err
			}
			returns, err := repos.Returns().FindBySale(ctx, sale.ID)
			if err != nil {
				return err
			}
			if len(returns) > 0 {
				return shared.NewDomainError(shared.CodeInvalidState, "Sale has returns and cannot be voided").
					WithDetail("sale_number", sale.SaleNumber).
					WithDetail("returns", len(returns))
			}
			wasCompleted := sale.Status == sales.SaleStatusCompleted
			if err := sale.Void(actorID, input.Reason, s.now()); err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return err
			}
			recorder.Collect(sale)
			if !wasCompleted {
				return nil
			}

			ledger := appshared.Ledger(repos)
			ref := inventory.NewReference(inventory.ReferenceTypeSaleVoid, sale.ID, sale.SaleNumber)
			for _, it := range sale.Items {
				res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
					ProductID: it.ProductID,
					Type:      inventory.AdjustmentTypeReturn,
					Quantity:  it.Quantity,
					ActorID:   actorID,
					Reason:    "Void of " + sale.SaleNumber + ": " + sale.VoidReason,
					Reference: ref,
				})
				if err != nil {
					return err
				}
				recorder.Record(res.Event())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Sale voided",
		zap.String("sale_id", sale.ID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("actor_id", actorID.String()))
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByID returns a sale by ID
func (s *SaleService) GetByID(ctx context.Context, id uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetByNumber returns a sale by its sale number
func (s *SaleService) GetByNumber(ctx context.Context, number string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// List returns a page of sales
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) (shared.Paginated[SaleResponse], error) {
	f := filter.Filter.Normalize()
	status := sales.SaleStatus(strings.ToUpper(strings.TrimSpace(filter.Status)))
	if status != "" && !status.IsValid() {
		return shared.Paginated[SaleResponse]{}, shared.NewInvalidInputError("Unknown sale status: " + filter.Status)
	}
	list, total, err := s.saleRepo.FindAll(ctx, sales.SaleFilter{
		Filter:    f,
		Status:    status,
		From:      filter.From,
		To:        filter.To,
		CashierID: filter.CashierID,
	})
	if err != nil {
		return shared.Paginated[SaleResponse]{}, err
	}
	items := make([]SaleResponse, len(list))
	for i, sale := range list {
		items[i] = ToSaleResponse(sale)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}
