package repair

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopdesk/backend/internal/application/shared"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RepairService moves devices through the workshop. Part consumption and its
// reversal on cancellation run in the same transaction as the job update.
type RepairService struct {
	scope     appshared.TransactionScope
	jobRepo   repair.JobRepository
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRepairService creates a new RepairService
func NewRepairService(
	scope appshared.TransactionScope,
	jobRepo repair.JobRepository,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *RepairService {
	return &RepairService{
		scope:     scope,
		jobRepo:   jobRepo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Create books a device in as RECEIVED
func (s *RepairService) Create(ctx context.Context, actorID uuid.UUID, input CreateJobInput) (*JobResponse, error) {
	var (
		recorder appshared.EventRecorder
		job      *repair.Job
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			now := s.now()
			number, err := shared.NextDocumentNumber(ctx, repos.Sequences(), shared.DocumentTypeRepair, now)
			if err != nil {
				return err
			}
			job, err = repair.NewJob(repair.NewJobParams{
				JobNumber:          number,
				Customer:           input.Customer,
				Device:             input.Device,
				ProblemDescription: input.ProblemDescription,
				EstimatedCost:      input.EstimatedCost,
				AdvancePayment:     input.AdvancePayment,
				ReceivedBy:         actorID,
				Now:                now,
			})
			if err != nil {
				return err
			}
			if err := repos.RepairJobs().Save(ctx, job); err != nil {
				return err
			}
			recorder.Collect(job)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)

	s.logger.Info("Repair job received",
		zap.String("job_id", job.ID.String()),
		zap.String("job_number", job.JobNumber),
		zap.String("advance", job.AdvancePayment.StringFixed(2)))
	resp := ToJobResponse(job)
	return &resp, nil
}

// AssignTechnician hands the job to an active user. The job status is unchanged.
func (s *RepairService) AssignTechnician(ctx context.Context, actorID, jobID, technicianID uuid.UUID) (*JobResponse, error) {
	job, err := s.mutate(ctx, jobID, func(repos appshared.Repositories, job *repair.Job, now time.Time) error {
		tech, err := repos.Users().FindByID(ctx, technicianID)
		if err != nil {
			return err
		}
		if !tech.IsActive() {
			return shared.NewInvalidInputError("Technician account is deactivated").
				WithDetail("technician_id", technicianID.String())
		}
		return job.AssignTechnician(technicianID, actorID, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Technician assigned",
		zap.String("job_number", job.JobNumber),
		zap.String("technician_id", technicianID.String()))
	resp := ToJobResponse(job)
	return &resp, nil
}

// Start moves a RECEIVED job to IN_PROGRESS; only the assignee may start it
func (s *RepairService) Start(ctx context.Context, actorID, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.mutate(ctx, jobID, func(_ appshared.Repositories, job *repair.Job, now time.Time) error {
		return job.Start(actorID, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Repair started", zap.String("job_number", job.JobNumber))
	resp := ToJobResponse(job)
	return &resp, nil
}

// Complete fits the parts, deducts them from stock and marks the job READY
func (s *RepairService) Complete(ctx context.Context, actorID, jobID uuid.UUID, input CompleteJobInput) (*JobResponse, error) {
	job, err := s.mutateRecording(ctx, jobID, func(repos appshared.Repositories, job *repair.Job, now time.Time, rec *appshared.EventRecorder) error {
		if err := job.EnsureCompletable(actorID); err != nil {
			return err
		}
		if input.LaborCost.IsNegative() {
			return shared.NewInvalidInputError("Labor cost cannot be negative")
		}
		parts, err := priceParts(ctx, repos, input.Parts)
		if err != nil {
			return err
		}
		ledger := appshared.Ledger(repos)
		ref := inventory.NewReference(inventory.ReferenceTypeRepair, job.ID, job.JobNumber)
		for _, p := range parts {
			res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
				ProductID: p.ProductID,
				Type:      inventory.AdjustmentTypeSale,
				Quantity:  p.Quantity,
				ActorID:   actorID,
				Reason:    "Parts for repair " + job.JobNumber,
				Reference: ref,
			})
			if err != nil {
				return err
			}
			rec.Record(res.Event())
		}
		return job.Complete(actorID, parts, input.LaborCost, input.Notes, now)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Repair ready for pickup",
		zap.String("job_number", job.JobNumber),
		zap.Int("parts", len(job.Parts)),
		zap.String("total_cost", job.TotalCost.StringFixed(2)))
	resp := ToJobResponse(job)
	return &resp, nil
}

// CollectPayment settles the balance of a READY job and closes it
func (s *RepairService) CollectPayment(ctx context.Context, actorID, jobID uuid.UUID, input CollectPaymentInput) (*CollectPaymentResponse, error) {
	var change decimal.Decimal
	job, err := s.mutate(ctx, jobID, func(_ appshared.Repositories, job *repair.Job, now time.Time) error {
		var err error
		change, err = job.CollectPayment(input.AmountReceived, strings.ToUpper(strings.TrimSpace(input.PaymentMethod)), actorID, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Repair payment collected",
		zap.String("job_number", job.JobNumber),
		zap.String("final_payment", job.FinalPayment.StringFixed(2)),
		zap.String("change", change.StringFixed(2)))
	return &CollectPaymentResponse{Job: ToJobResponse(job), Change: change}, nil
}

// Cancel closes a job that has not been picked up and restores any parts it consumed
func (s *RepairService) Cancel(ctx context.Context, actorID, jobID uuid.UUID, reason string) (*JobResponse, error) {
	job, err := s.mutateRecording(ctx, jobID, func(repos appshared.Repositories, job *repair.Job, now time.Time, rec *appshared.EventRecorder) error {
		consumed, err := job.Cancel(actorID, reason, now)
		if err != nil {
			return err
		}
		ledger := appshared.Ledger(repos)
		ref := inventory.NewReference(inventory.ReferenceTypeRepairCancel, job.ID, job.JobNumber)
		for _, p := range consumed {
			res, err := ledger.Adjust(ctx, inventory.AdjustCommand{
				ProductID: p.ProductID,
				Type:      inventory.AdjustmentTypeReturn,
				Quantity:  p.Quantity,
				ActorID:   actorID,
				Reason:    "Cancelled repair " + job.JobNumber,
				Reference: ref,
			})
			if err != nil {
				return err
			}
			rec.Record(res.Event())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Repair cancelled",
		zap.String("job_number", job.JobNumber),
		zap.Int("parts_restored", len(job.Parts)),
		zap.String("reason", job.CancelReason))
	resp := ToJobResponse(job)
	return &resp, nil
}

// GetByID returns a job by ID
func (s *RepairService) GetByID(ctx context.Context, id uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// GetByNumber returns a job by its RJ number
func (s *RepairService) GetByNumber(ctx context.Context, number string) (*JobResponse, error) {
	job, err := s.jobRepo.FindByNumber(ctx, strings.ToUpper(strings.TrimSpace(number)))
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// List returns a page of jobs, newest first
func (s *RepairService) List(ctx context.Context, filter JobListFilter) (shared.Paginated[JobResponse], error) {
	status := repair.Status(strings.ToUpper(strings.TrimSpace(filter.Status)))
	if status != "" && !status.IsValid() {
		return shared.Paginated[JobResponse]{}, shared.NewInvalidInputError("Unknown repair status: " + filter.Status)
	}
	f := repair.JobFilter{Filter: filter.Filter.Normalize(), Status: status, AssignedTo: filter.AssignedTo}
	jobs, total, err := s.jobRepo.FindAll(ctx, f)
	if err != nil {
		return shared.Paginated[JobResponse]{}, err
	}
	items := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		items[i] = ToJobResponse(j)
	}
	return shared.NewPaginated(items, total, f.Page, f.PageSize), nil
}

func (s *RepairService) mutate(ctx context.Context, id uuid.UUID, fn func(repos appshared.Repositories, job *repair.Job, now time.Time) error) (*repair.Job, error) {
	return s.mutateRecording(ctx, id, func(repos appshared.Repositories, job *repair.Job, now time.Time, _ *appshared.EventRecorder) error {
		return fn(repos, job, now)
	})
}

// mutateRecording loads a job inside a transaction, applies fn and saves it,
// retrying the whole unit on a version conflict
func (s *RepairService) mutateRecording(
	ctx context.Context,
	id uuid.UUID,
	fn func(repos appshared.Repositories, job *repair.Job, now time.Time, rec *appshared.EventRecorder) error,
) (*repair.Job, error) {
	var (
		recorder appshared.EventRecorder
		result   *repair.Job
	)
	err := appshared.RetryOnConflict(ctx, appshared.DefaultConflictRetries, func() error {
		recorder.Reset()
		return s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			job, err := repos.RepairJobs().FindByID(ctx, id)
			if err != nil {
				return err
			}
			if err := fn(repos, job, s.now(), &recorder); err != nil {
				return err
			}
			if err := repos.RepairJobs().Save(ctx, job); err != nil {
				return err
			}
			recorder.Collect(job)
			result = job
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	recorder.Publish(ctx, s.publisher, s.logger)
	return result, nil
}

// priceParts loads the products behind the requested parts, checks stock for the
// combined quantity per product and snapshots their prices
func priceParts(ctx context.Context, repos appshared.Repositories, input []PartInput) ([]repair.Part, error) {
	if len(input) == 0 {
		return []repair.Part{}, nil
	}
	ids := make([]uuid.UUID, 0, len(input))
	wanted := make(map[uuid.UUID]int, len(input))
	for _, in := range input {
		if in.Quantity <= 0 {
			return nil, shared.NewInvalidInputError("Part quantity must be positive")
		}
		if _, seen := wanted[in.ProductID]; !seen {
			ids = append(ids, in.ProductID)
		}
		wanted[in.ProductID] += in.Quantity
	}
	found, err := repos.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]int, len(found))
	for i, p := range found {
		byID[p.ID] = i
	}
	ledger := appshared.Ledger(repos)
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewNotFoundError("Product").WithDetail("product_id", id.String())
		}
		if err := ledger.EnsureAvailable(ctx, id, wanted[id]); err != nil {
			return nil, err
		}
	}

	parts := make([]repair.Part, 0, len(input))
	for _, in := range input {
		part, err := repair.PricePart(found[byID[in.ProductID]], repair.PartRequest{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, nil
}
