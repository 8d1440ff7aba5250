package warranty

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/sales"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WarrantyService issues warranties outside the sale flow and resolves claims.
// A claim and its repair job, replacement stock movement or refund return are
// written in one transaction.
type WarrantyService struct {
	scope        appshared.TransactionScope
	warrantyRepo warranty.Repository
	publisher    shared.EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewWarrantyService creates a new WarrantyService
func NewWarrantyService(
	scope appshared.TransactionScope,
	warrantyRepo warranty.Repository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *WarrantyService {
	return &WarrantyService{
		scope:        scope,
		warrantyRepo: warrantyRepo,
		publisher:    publisher,
		logger:       logger,
		now:          time.Now,
	}
}

// Create issues a MANUAL or REPAIR warranty
func (s *WarrantyService) Create(ctx context.Context, actorID uuid.UUID, input CreateWarrantyInput) (*WarrantyResponse, error) {
	source := warranty.SourceType(strings.ToUpper(strings.TrimSpace(input.SourceType)))
	if source == "" {
		source = warranty.SourceManual
	}
	if source != warranty.SourceManual && source != warranty.SourceRepair {
		return nil, shared.NewInvalidInputError("Warranties can only be created manually or from a repair job")
	}

	var (
		recorder appshared.EventRecorder
		issued   *warranty.Warranty
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			params := warranty.NewWarrantyParams{
				SourceType:     source,
				ProductID:      input.ProductID,
				ProductName:    input.ProductName,
				SerialNumber:   input.SerialNumber,
				WarrantyType:   strings.ToUpper(strings.TrimSpace(input.WarrantyType)),
				Customer:       input.Customer,
				DurationMonths: input.DurationMonths,
				StartDate:      now,
				IssuedBy:       actorID,
				Terms:          input.Terms,
			}
			if input.StartDate != nil {
				params.StartDate = *input.StartDate
			}

			if input.ProductID != nil {
				product, err := repos.Products().FindByID(ctx, *input.ProductID)
				if err != nil {
					return err
				}
				applyProductDefaults(&params, product)
			}
			if source == warranty.SourceRepair {
				if input.RepairJobID == nil {
					return shared.NewInvalidInputError("Repair warranties need a repair job")
				}
				job, err := repos.RepairJobs().FindByID(ctx, *input.RepairJobID)
				if err != nil {
					return err
				}
				if job.Status == repair.StatusCancelled {
					return shared.NewInvalidStateError("Cannot issue a warranty for a cancelled repair")
				}
				applyJobDefaults(&params, job)
			}

			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeWarranty, now)
			if err != nil {
				return err
			}
			params.WarrantyNumber = number
			issued, err = warranty.NewWarranty(params)
			if err != nil {
				return err
			}
			if err := repos.Warranties().Save(ctx, issued); err != nil {
				return err
			}
			recorder.Collect(issued)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Warranty issued",
		zap.String("warranty_number", issued.WarrantyNumber),
		zap.String("source", string(issued.SourceType)),
		zap.Time("end_date", issued.EndDate))
	resp := ToWarrantyResponse(issued, s.now())
	return &resp, nil
}

func applyProductDefaults(p *warranty.NewWarrantyParams, product *catalog.Product) {
	if strings.TrimSpace(p.ProductName) == "" {
		p.ProductName = product.Name
	}
	p.SKU = product.SKU
	if p.DurationMonths == 0 {
		p.DurationMonths = product.WarrantyDurationMonths
	}
	if p.WarrantyType == "" && product.HasWarranty() {
		p.WarrantyType = string(product.WarrantyType)
	}
}

func applyJobDefaults(p *warranty.NewWarrantyParams, job *repair.Job) {
	jobID := job.ID
	p.RepairJobID = &jobID
	if !p.Customer.IsIdentified() {
		p.Customer = job.Customer
	}
	if strings.TrimSpace(p.ProductName) == "" {
		p.ProductName = strings.TrimSpace(job.Device.Brand + " " + job.Device.Model)
	}
	if p.SerialNumber == "" {
		p.SerialNumber = job.Device.SerialNumber
	}
	if p.Terms == "" {
		p.Terms = "Covers the work done under repair " + job.JobNumber
	}
}

// FileClaim files a claim against a valid warranty and applies its resolution:
// REPAIR books (or links) a repair job, REPLACE takes one replacement unit out of
// stock and REFUND creates a non-restocking return and voids the warranty.
func (s *WarrantyService) FileClaim(ctx context.Context, actorID, warrantyID uuid.UUID, input FileClaimInput) (*ClaimResult, error) {
	resolution := warranty.Resolution(strings.ToUpper(strings.TrimSpace(input.Resolution)))
	if resolution != "" && !resolution.IsValid() {
		return nil, shared.NewInvalidInputError("Unknown claim resolution: " + input.Resolution)
	}
	if strings.TrimSpace(input.Issue) == "" {
		return nil, shared.NewInvalidInputError("Claim issue is required")
	}

	var (
		recorder appshared.EventRecorder
		w        *warranty.Warranty
		claim    warranty.Claim
		job      *repair.Job
		ret      *sales.Return
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		job, ret = nil, nil
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			var err error
			w, err = repos.Warranties().FindByID(ctx, warrantyID)
			if err != nil {
				return err
			}
			if err := w.EnsureValid(now); err != nil {
				return err
			}
			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeClaim, now)
			if err != nil {
				return err
			}
			claim = warranty.NewClaim(number, input.Issue, resolution, actorID, now)
			claim.Notes = strings.TrimSpace(input.Notes)

			switch claim.Resolution {
			case warranty.ResolutionRepair:
				job, err = s.resolveRepair(ctx, repos, w, &claim, input, actorID, now)
			case warranty.ResolutionReplace:
				err = s.resolveReplace(ctx, repos, w, &claim, input, actorID, &recorder)
			case warranty.ResolutionRefund:
				ret, err = s.resolveRefund(ctx, repos, w, &claim, input, actorID, now)
			}
			if err != nil {
				return err
			}

			if err := w.FileClaim(claim, actorID, now); err != nil {
				return err
			}
			if err := repos.Warranties().Save(ctx, w); err != nil {
				return err
			}
			recorder.Collect(w)
			if job != nil {
				recorder.Collect(job)
			}
			if ret != nil {
				recorder.Collect(ret)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Warranty claim filed",
		zap.String("warranty_number", w.WarrantyNumber),
		zap.String("claim_number", claim.ClaimNumber),
		zap.String("resolution", string(claim.Resolution)),
		zap.String("claim_cost", claim.ClaimCost.StringFixed(2)))

	filed, _ := w.FindClaim(claim.ID)
	result := &ClaimResult{
		Warranty: ToWarrantyResponse(w, s.now()),
		Claim:    toClaimResponse(filed),
	}
	if job != nil {
		result.RepairJobID = &job.ID
		result.JobNumber = job.JobNumber
	}
	if ret != nil {
		result.ReturnID = &ret.ID
		result.ReturnNo = ret.ReturnNumber
	}
	return result, nil
}

// resolveRepair links an existing job or books a new one from the warranty.
// No stock or money moves here; cost accrues through the job.
func (s *WarrantyService) resolveRepair(
	ctx context.Context,
	repos appshared.Repositories,
	w *warranty.Warranty,
	claim *warranty.Claim,
	input FileClaimInput,
	actorID uuid.UUID,
	now time.Time,
) (*repair.Job, error) {
	var (
		job *repair.Job
		err error
	)
	if input.RepairJobID != nil {
		job, err = repos.RepairJobs().FindByID(ctx, *input.RepairJobID)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return nil, shared.NewInvalidStateError("Cannot link a " + string(job.Status) + " repair job to a claim")
		}
	} else {
		number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeRepair, now)
		if err != nil {
			return nil, err
		}
		job, err = repair.NewJob(repair.NewJobParams{
			JobNumber: number,
			Customer:  w.Customer,
			Device: repair.Device{
				Type:         "Warranty",
				Model:        w.ProductName,
				SerialNumber: w.SerialNumber,
			},
			ProblemDescription: "Warranty Claim: " + claim.Issue,
			ReceivedBy:         actorID,
			Now:                now,
		})
		if err != nil {
			return nil, err
		}
	}
	job.LinkWarrantyClaim(w.ID, claim.ID)
	if err := repos.RepairJobs().Save(ctx, job); err != nil {
		return nil, err
	}
	claim.RepairJobID = &job.ID
	return job, nil
}

// resolveReplace hands out one unit of the replacement product at cost
func (s *WarrantyService) resolveReplace(
	ctx context.Context,
	repos appshared.Repositories,
	w *warranty.Warranty,
	claim *warranty.Claim,
	input FileClaimInput,
	actorID uuid.UUID,
	rec *appshared.EventRecorder,
) error {
	target := input.ReplacementProductID
	if target == nil {
		target = w.ProductID
	}
	if target == nil {
		return shared.NewInvalidInputError("Replacement product is required for a warranty without a product")
	}
	product, err := repos.Products().FindByID(ctx, *target)
	if err != nil {
		return err
	}
	res, err := appshared.Ledger(repos).Adjust(ctx, inventory.AdjustCommand{
		ProductID: product.ID,
		Type:      inventory.AdjustmentTypeWarrantyReplace,
		Quantity:  1,
		ActorID:   actorID,
		Reason:    "Warranty replacement " + claim.ClaimNumber + " for " + w.WarrantyNumber,
		Reference: inventory.NewReference(inventory.ReferenceTypeWarrantyClaim, claim.ID, claim.ClaimNumber),
	})
	if err != nil {
		return err
	}
	rec.Record(res.Event())
	productID := product.ID
	claim.ReplacementProductID = &productID
	claim.ClaimCost = product.CostPrice
	return nil
}

// resolveRefund refunds one unit through a WARRANTY_REFUND return. The unit is
// defective and never goes back on the shelf.
func (s *WarrantyService) resolveRefund(
	ctx context.Context,
	repos appshared.Repositories,
	w *warranty.Warranty,
	claim *warranty.Claim,
	input FileClaimInput,
	actorID uuid.UUID,
	now time.Time,
) (*sales.Return, error) {
	var (
		sale       *sales.Sale
		saleItemID *uuid.UUID
		refund     decimal.Decimal
		found      bool
	)
	if w.SaleID != nil {
		var err error
		sale, err = repos.Sales().FindByID(ctx, *w.SaleID)
		if err != nil {
			return nil, err
		}
		var item sales.SaleItem
		if w.SaleItemID != nil {
			item, found = sale.FindItem(*w.SaleItemID)
		}
		if !found && w.ProductID != nil {
			item, found = sale.FindItemByProduct(*w.ProductID)
		}
		if found {
			itemID := item.ID
			saleItemID = &itemID
			refund = sales.UnitLineTotal(item)
		}
	}

	var product *catalog.Product
	if w.ProductID != nil {
		p, err := repos.Products().FindByID(ctx, *w.ProductID)
		if err != nil {
			return nil, err
		}
		product = p
	}
	if !found {
		if product == nil {
			return nil, shared.NewInvalidInputError("Cannot price a refund for a warranty without a sale or product")
		}
		refund = product.SellingPrice
	}

	productID := uuid.Nil
	sku := w.SKU
	if product != nil {
		productID = product.ID
		sku = product.SKU
	}
	number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeReturn, now)
	if err != nil {
		return nil, err
	}
	ret, err := sales.NewReturn(sales.NewReturnParams{
		ReturnNumber: number,
		Sale:         sale,
		ReturnType:   sales.ReturnTypeWarrantyRefund,
		Items:        []sales.ReturnItem{sales.NewWarrantyRefundItem(saleItemID, productID, w.ProductName, sku, refund)},
		TotalRefund:  refund,
		RefundMethod: sales.PaymentMethod(strings.ToUpper(strings.TrimSpace(input.RefundMethod))),
		Reason:       "Warranty claim " + claim.ClaimNumber + ": " + claim.Issue,
		Customer:     w.Customer,
		ProcessedBy:  actorID,
		Now:          now,
	})
	if err != nil {
		return nil, err
	}
	ret.LinkClaim(claim.ID)
	if err := repos.Returns().Create(ctx, ret); err != nil {
		return nil, err
	}
	claim.ReturnID = &ret.ID
	claim.RefundAmount = ret.TotalRefund
	claim.ClaimCost = ret.TotalRefund
	return ret, nil
}

// Void terminates a warranty
func (s *WarrantyService) Void(ctx context.Context, actorID, warrantyID uuid.UUID, reason string) (*WarrantyResponse, error) {
	var (
		recorder appshared.EventRecorder
		w        *warranty.Warranty
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			var err error
			w, err = repos.Warranties().FindByID(ctx, warrantyID)
			if err != nil {
				return err
			}
			if err := w.Void(actorID, reason, s.now()); err != nil {
				return err
			}
			if err := repos.Warranties().Save(ctx, w); err != nil {
				return err
			}
			recorder.Collect(w)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Warranty voided",
		zap.String("warranty_number", w.WarrantyNumber),
		zap.String("actor_id", actorID.String()))
	resp := ToWarrantyResponse(w, s.now())
	return &resp, nil
}

// GetByID returns a warranty by ID
func (s *WarrantyService) GetByID(ctx context.Context, id uuid.UUID) (*WarrantyResponse, error) {
	w, err := s.warrantyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToWarrantyResponse(w, s.now())
	return &resp, nil
}

// GetByNumber returns a warranty by its WR number
func (s *WarrantyService) GetByNumber(ctx context.Context, number string) (*WarrantyResponse, error) {
	w, err := s.warrantyRepo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	resp := ToWarrantyResponse(w, s.now())
	return &resp, nil
}

// List returns a page of warranties filtered by effective status
func (s *WarrantyService) List(ctx context.Context, filter ListFilter) (shared.Paginated[WarrantyResponse], error) {
	status := warranty.Status(strings.ToUpper(strings.TrimSpace(filter.Status)))
	if status != "" && !status.IsValid() {
		return shared.Paginated[WarrantyResponse]{}, shared.NewInvalidInputError("Unknown warranty status: " + filter.Status)
	}
	now := s.now()
	f := warranty.Filter{
		Filter:        filter.Filter.Normalize(),
		Status:        status,
		Now:           now,
		CustomerPhone: strings.TrimSpace(filter.CustomerPhone),
		SaleID:        filter.SaleID,
		ProductID:     filter.ProductID,
	}
	ws, total, err := s.warrantyRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[WarrantyResponse]{}, err
	}
	items := make([]WarrantyResponse, len(ws))
	for i, w := range ws {
		items[i] = ToWarrantyResponse(w, now)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

// CheckValidity reports whether a warranty can be claimed now. It never writes.
func (s *WarrantyService) CheckValidity(ctx context.Context, id uuid.UUID) (*ValidityResponse, error) {
	w, err := s.warrantyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := w.CheckValidity(s.now())
	return &ValidityResponse{
		WarrantyID:     w.ID,
		WarrantyNumber: w.WarrantyNumber,
		Valid:          v.Valid,
		Status:         string(v.Status),
		Reason:         v.Reason,
		DaysRemaining:  v.DaysRemaining,
		EndDate:        v.EndDate,
	}, nil
}

// Claims lists the claims filed against a warranty, oldest first
func (s *WarrantyService) Claims(ctx context.Context, id uuid.UUID) ([]ClaimResponse, error) {
	w, err := s.warrantyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]ClaimResponse, len(w.Claims))
	for i, c := range w.Claims {
		out[i] = toClaimResponse(c)
	}
	return out, nil
}
