package sales

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReturnService takes goods back, either for a refund or against a new sale
type ReturnService struct {
	scope      appshared.TransactionScope
	returnRepo sales.ReturnRepository
	publisher  shared.EventPublisher
	logger     *zap.Logger
	now        func() time.Time
}

// NewReturnService creates a new ReturnService
func NewReturnService(
	scope appshared.TransactionScope,
	returnRepo sales.ReturnRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ReturnService {
	return &ReturnService{
		scope:      scope,
		returnRepo: returnRepo,
		publisher:  publisher,
		logger:     logger,
		now:        time.Now,
	}
}

// Create records a refund return against a sale, restocks the units and voids
// the active warranties the sale issued for the returned products
func (s *ReturnService) Create(ctx context.Context, actorID uuid.UUID, input CreateReturnInput) (*ReturnResponse, error) {
	lines, err := toReturnLines(input.Items)
	if err != nil {
		return nil, err
	}

	var (
		recorder appshared.EventRecorder
		ret      *sales.Return
		voided   []string
	)
	err = appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			sale, err := repos.Sales().FindByID(ctx, input.SaleID)
			if err != nil {
				return err
			}
			returned, err := repos.Returns().ReturnedQuantities(ctx, sale.ID)
			if err != nil {
				return err
			}
			items, totalRefund, err := sales.BuildReturnItems(sale, lines, returned)
			if err != nil {
				return err
			}
			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeReturn, now)
			if err != nil {
				return err
			}
			ret, err = sales.NewReturn(sales.NewReturnParams{
				ReturnNumber: number,
				Sale:         sale,
				ReturnType:   sales.ReturnTypeRefund,
				Items:        items,
				TotalRefund:  totalRefund,
				RefundMethod: sales.PaymentMethod(strings.ToUpper(strings.TrimSpace(input.RefundMethod))),
				Reason:       input.Reason,
				ProcessedBy:  actorID,
				Now:          now,
			})
			if err != nil {
				return err
			}
			if err := repos.Returns().Create(ctx, ret); err != nil {
				return err
			}
			recorder.Collect(ret)

			if err := restockReturn(ctx, appshared.Ledger(repos), ret, actorID, &recorder); err != nil {
				return err
			}
			voided, err = voidReturnedWarranties(ctx, repos, ret, actorID, now, &recorder)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Return completed",
		zap.String("return_number", ret.ReturnNumber),
		zap.String("sale_id", input.SaleID.String()),
		zap.String("total_refund", ret.TotalRefund.StringFixed(2)),
		zap.Strings("voided_warranties", voided))
	resp := ToReturnResponse(ret)
	resp.VoidedWarranties = voided
	return &resp, nil
}

// Exchange returns items from a sale and rings up replacement items in a new
// sale. The refund is applied to the new sale as exchange credit; any remaining
// amount due must be covered by the supplied payments.
func (s *ReturnService) Exchange(ctx context.Context, actorID uuid.UUID, input CreateExchangeInput) (*ExchangeResponse, error) {
	lines, err := toReturnLines(input.ReturnItems)
	if err != nil {
		return nil, err
	}
	payments, err := parsePayments(input.Payments)
	if err != nil {
		return nil, err
	}

	var (
		recorder appshared.EventRecorder
		ret      *sales.Return
		newSale  *sales.Sale
		voided   []string
		issued   int
	)
	err = appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			original, err := repos.Sales().FindByID(ctx, input.SaleID)
			if err != nil {
				return err
			}
			returned, err := repos.Returns().ReturnedQuantities(ctx, original.ID)
			if err != nil {
				return err
			}
			returnItems, totalRefund, err := sales.BuildReturnItems(original, lines, returned)
			if err != nil {
				return err
			}

			returnNumber, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeReturn, now)
			if err != nil {
				return err
			}
			ret, err = sales.NewReturn(sales.NewReturnParams{
				ReturnNumber: returnNumber,
				Sale:         original,
				ReturnType:   sales.ReturnTypeExchange,
				Items:        returnItems,
				TotalRefund:  totalRefund,
				RefundMethod: sales.PaymentMethodExchangeCredit,
				Reason:       input.Reason,
				ProcessedBy:  actorID,
				Now:          now,
			})
			if err != nil {
				return err
			}

			// returned units are back on the shelf before the new lines are checked
			ledger := appshared.Ledger(repos)
			if err := restockReturn(ctx, ledger, ret, actorID, &recorder); err != nil {
				return err
			}

			newItems, products, err := priceLines(ctx, repos, input.NewItems)
			if err != nil {
				return err
			}
			totals, err := sales.ComputeTotals(newItems, nil)
			if err != nil {
				return err
			}
			due := sales.ExchangeAmountDue(totals.GrandTotal, totalRefund)
			if due.IsPositive() && sumPayments(payments).LessThan(due) {
				return shared.NewDomainError("INSUFFICIENT_PAYMENT", "Payments do not cover the exchange amount due").
					WithDetail("amount_due", due.StringFixed(2))
			}

			salePayments := make([]sales.Payment, 0, len(payments)+1)
			credit := decimal.Min(totalRefund, totals.GrandTotal)
			if credit.IsPositive() {
				p, err := sales.NewPayment(sales.PaymentMethodExchangeCredit, credit, returnNumber)
				if err != nil {
					return err
				}
				salePayments = append(salePayments, p)
			}
			salePayments = append(salePayments, payments...)

			customer := original.Customer
			if input.Customer != nil {
				customer = *input.Customer
			}
			saleNumber, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeSale, now)
			if err != nil {
				return err
			}
			newSale, err = sales.NewSale(sales.NewSaleParams{
				SaleNumber: saleNumber,
				CashierID:  actorID,
				Items:      newItems,
				Payments:   salePayments,
				Customer:   customer,
				Notes:      "Exchange for " + original.SaleNumber,
				Now:        now,
			})
			if err != nil {
				return err
			}
			newSale.LinkExchange(ret.ID)
			ret.SettleExchange(newSale)

			if err := repos.Sales().Save(ctx, newSale); err != nil {
				return err
			}
			if err := repos.Returns().Create(ctx, ret); err != nil {
				return err
			}
			recorder.Collect(ret, newSale)

			if err := deductSaleStock(ctx, ledger, newSale, actorID, &recorder); err != nil {
				return err
			}
			voided, err = voidReturnedWarranties(ctx, repos, ret, actorID, now, &recorder)
			if err != nil {
				return err
			}
			ws, err := issueSaleWarranties(ctx, repos, newSale, products, actorID, now, &recorder)
			issued = len(ws)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Exchange completed",
		zap.String("return_number", ret.ReturnNumber),
		zap.String("sale_number", newSale.SaleNumber),
		zap.String("amount_due", ret.ExchangeAmountDue.StringFixed(2)),
		zap.Int("warranties", issued))

	retResp := ToReturnResponse(ret)
	retResp.VoidedWarranties = voided
	return &ExchangeResponse{Return: retResp, Sale: ToSaleResponse(newSale)}, nil
}

// GetByID returns a return by ID
func (s *ReturnService) GetByID(ctx context.Context, id uuid.UUID) (*ReturnResponse, error) {
	ret, err := s.returnRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToReturnResponse(ret)
	return &resp, nil
}

// ListBySale returns every return recorded against a sale
func (s *ReturnService) ListBySale(ctx context.Context, saleID uuid.UUID) ([]ReturnResponse, error) {
	list, err := s.returnRepo.FindBySale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	out := make([]ReturnResponse, len(list))
	for i, r := range list {
		out[i] = ToReturnResponse(r)
	}
	return out, nil
}

func toReturnLines(input []ReturnLineInput) ([]sales.ReturnLine, error) {
	lines := make([]sales.ReturnLine, len(input))
	for i, l := range input {
		condition := sales.ItemCondition(strings.ToUpper(strings.TrimSpace(l.Condition)))
		switch condition {
		case "", sales.ConditionGood, sales.ConditionDamaged, sales.ConditionDefective:
		default:
			return nil, shared.NewInvalidInputError("Unknown item condition: " + l.Condition)
		}
		lines[i] = sales.ReturnLine{
			SaleItemID: l.SaleItemID,
			Quantity:   l.Quantity,
			Condition:  condition,
		}
	}
	return lines, nil
}
