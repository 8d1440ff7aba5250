package repair

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the state of a repair job
type Status string

const (
	StatusReceived   Status = "RECEIVED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReady      Status = "READY"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusReceived, StatusInProgress, StatusReady, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true for COMPLETED and CANCELLED
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo checks the repair state machine
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusReceived:
		return target == StatusInProgress || target == StatusReady || target == StatusCancelled
	case StatusInProgress:
		return target == StatusReady || target == StatusCancelled
	case StatusReady:
		return target == StatusCompleted || target == StatusCancelled
	}
	return false
}

// PaymentStatus is derived from payments received against the total cost
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// Device is the intake snapshot of the customer's device
type Device struct {
	Type         string `json:"type"`
	Brand        string `json:"brand"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number,omitempty"`
	Accessories  string `json:"accessories,omitempty"`
	Condition    string `json:"condition,omitempty"`
}

// Part is a stock-backed product consumed by a repair, with a price snapshot
type Part struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	SKU         string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// PartRequest asks to consume quantity units of a product
type PartRequest struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal // overrides the catalog price when set
}

// PricePart snapshots the product and computes unitPrice × qty
func PricePart(product *catalog.Product, req PartRequest) (Part, error) {
	if req.Quantity <= 0 {
		return Part{}, shared.NewInvalidInputError("Part quantity must be positive")
	}
	price := product.SellingPrice
	if req.UnitPrice != nil {
		if req.UnitPrice.IsNegative() {
			return Part{}, shared.NewDomainError("INVALID_PRICE", "Part price cannot be negative")
		}
		price = *req.UnitPrice
	}
	return Part{
		ID:          uuid.New(),
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Quantity:    req.Quantity,
		UnitPrice:   price,
		Total:       shared.RoundMoney(price.Mul(decimal.NewFromInt(int64(req.Quantity)))),
	}, nil
}

// Job tracks one device through the workshop
type Job struct {
	shared.BaseAggregateRoot
	JobNumber          string
	Status             Status
	Customer           shared.CustomerSnapshot
	Device             Device
	ProblemDescription string
	TechnicianNotes    string
	EstimatedCost      decimal.Decimal
	LaborCost          decimal.Decimal
	Parts              []Part
	PartsTotal         decimal.Decimal
	TotalCost          decimal.Decimal
	AdvancePayment     decimal.Decimal
	AdvancePaidAt      *time.Time
	AdvanceReceivedBy  *uuid.UUID
	FinalPayment       decimal.Decimal
	PaymentMethod      string
	ReceivedBy         uuid.UUID
	AssignedTo         *uuid.UUID
	AssignedBy         *uuid.UUID
	AssignedAt         *time.Time
	StartedAt          *time.Time
	ReadyAt            *time.Time
	PickupDate         *time.Time
	CompletedBy        *uuid.UUID
	CancelledAt        *time.Time
	CancelledBy        *uuid.UUID
	CancelReason       string
	WarrantyID         *uuid.UUID
	WarrantyClaimID    *uuid.UUID
}

// NewJobParams carries intake data
type NewJobParams struct {
	JobNumber          string
	Customer           shared.CustomerSnapshot
	Device             Device
	ProblemDescription string
	EstimatedCost      decimal.Decimal
	AdvancePayment     decimal.Decimal
	ReceivedBy         uuid.UUID
	Now                time.Time
}

// NewJob books a device in with status RECEIVED
func NewJob(p NewJobParams) (*Job, error) {
	if p.JobNumber == "" {
		return nil, shared.NewInvalidInputError("Job number is required")
	}
	problem := strings.TrimSpace(p.ProblemDescription)
	if problem == "" {
		return nil, shared.NewInvalidInputError("Problem description is required")
	}
	if strings.TrimSpace(p.Customer.Name) == "" {
		return nil, shared.NewInvalidInputError("Customer name is required")
	}
	if p.AdvancePayment.IsNegative() || p.EstimatedCost.IsNegative() {
		return nil, shared.NewInvalidInputError("Amounts cannot be negative")
	}
	now := p.Now
	if now.IsZero() {
		now = time.Now()
	}

	job := &Job{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		JobNumber:          p.JobNumber,
		Status:             StatusReceived,
		Customer:           p.Customer.Normalized(),
		Device:             p.Device,
		ProblemDescription: problem,
		EstimatedCost:      shared.RoundMoney(p.EstimatedCost),
		LaborCost:          decimal.Zero,
		Parts:              make([]Part, 0),
		AdvancePayment:     shared.RoundMoney(p.AdvancePayment),
		FinalPayment:       decimal.Zero,
		ReceivedBy:         p.ReceivedBy,
	}
	if job.AdvancePayment.IsPositive() {
		receivedBy := p.ReceivedBy
		job.AdvancePaidAt = &now
		job.AdvanceReceivedBy = &receivedBy
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Recalculate()
	job.AddDomainEvent(NewStatusChangedEvent(job, ""))
	return job, nil
}

// LinkWarrantyClaim marks the job as the repair resolution of a warranty claim
func (j *Job) LinkWarrantyClaim(warrantyID, claimID uuid.UUID) {
	j.WarrantyID = &warrantyID
	j.WarrantyClaimID = &claimID
	j.IncrementVersion()
}

// AssignTechnician records who works the job. Status is left unchanged.
func (j *Job) AssignTechnician(technicianID, assignedBy uuid.UUID, now time.Time) error {
	if j.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot assign a technician to a " + string(j.Status) + " job")
	}
	if technicianID == uuid.Nil {
		return shared.NewInvalidInputError("Technician is required")
	}
	j.AssignedTo = &technicianID
	j.AssignedBy = &assignedBy
	j.AssignedAt = &now
	j.IncrementVersion()
	return nil
}

// IsAssignedTo reports whether userID is the assigned technician
func (j *Job) IsAssignedTo(userID uuid.UUID) bool {
	return j.AssignedTo != nil && *j.AssignedTo == userID
}

func (j *Job) requireAssignee(actorID uuid.UUID) error {
	if !j.IsAssignedTo(actorID) {
		return shared.NewDomainError(shared.CodeForbidden, "Only the assigned technician can work on this job").
			WithDetail("job_number", j.JobNumber)
	}
	return nil
}

// Start moves a RECEIVED job to IN_PROGRESS
func (j *Job) Start(actorID uuid.UUID, now time.Time) error {
	if err := j.requireAssignee(actorID); err != nil {
		return err
	}
	if j.Status != StatusReceived {
		return shared.NewInvalidStateError("Only RECEIVED jobs can be started")
	}
	return j.transition(StatusInProgress, now, func() { j.StartedAt = &now })
}

// Complete records parts and labor and moves the job to READY.
// Parts must already have been deducted from stock by the caller.
func (j *Job) Complete(actorID uuid.UUID, parts []Part, laborCost decimal.Decimal, notes string, now time.Time) error {
	if err := j.EnsureCompletable(actorID); err != nil {
		return err
	}
	if laborCost.IsNegative() {
		return shared.NewInvalidInputError("Labor cost cannot be negative")
	}
	return j.transition(StatusReady, now, func() {
		j.Parts = append(j.Parts, parts...)
		j.LaborCost = shared.RoundMoney(laborCost)
		if n := strings.TrimSpace(notes); n != "" {
			j.TechnicianNotes = n
		}
		j.ReadyAt = &now
		j.CompletedBy = &actorID
	})
}

// EnsureCompletable checks that actorID may complete the job in its current state
func (j *Job) EnsureCompletable(actorID uuid.UUID) error {
	if err := j.requireAssignee(actorID); err != nil {
		return err
	}
	if j.Status != StatusReceived && j.Status != StatusInProgress {
		return shared.NewInvalidStateError("Only RECEIVED or IN_PROGRESS jobs can be completed")
	}
	return nil
}

// CollectPayment settles the balance of a READY job and closes it.
// It returns the change owed to the customer.
func (j *Job) CollectPayment(amountReceived decimal.Decimal, method string, actorID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	if j.Status != StatusReady {
		return decimal.Zero, shared.NewInvalidStateError("Payment can only be collected for READY jobs")
	}
	if amountReceived.IsNegative() {
		return decimal.Zero, shared.NewInvalidInputError("Amount received cannot be negative")
	}
	balance := j.BalanceDue()
	if amountReceived.LessThan(balance) {
		return decimal.Zero, shared.NewInvalidInputError("Amount received is less than the balance due").
			WithDetail("balance_due", balance.StringFixed(2))
	}
	change := shared.RoundMoney(amountReceived.Sub(balance))
	err := j.transition(StatusCompleted, now, func() {
		j.FinalPayment = balance
		j.PaymentMethod = strings.TrimSpace(method)
		j.PickupDate = &now
	})
	if err != nil {
		return decimal.Zero, err
	}
	return change, nil
}

// Cancel closes a non-completed job. It returns the parts whose stock must be restored.
func (j *Job) Cancel(actorID uuid.UUID, reason string, now time.Time) ([]Part, error) {
	if j.Status == StatusCompleted {
		return nil, shared.NewInvalidStateError("Completed jobs cannot be cancelled")
	}
	if j.Status == StatusCancelled {
		return nil, shared.NewInvalidStateError("Job is already cancelled")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewInvalidInputError("Cancel reason is required")
	}
	consumed := append([]Part(nil), j.Parts...)
	err := j.transition(StatusCancelled, now, func() {
		j.CancelledAt = &now
		j.CancelledBy = &actorID
		j.CancelReason = reason
	})
	if err != nil {
		return nil, err
	}
	return consumed, nil
}

func (j *Job) transition(target Status, now time.Time, apply func()) error {
	if !j.Status.CanTransitionTo(target) {
		return shared.NewInvalidStateError("Cannot move job from " + string(j.Status) + " to " + string(target))
	}
	from := j.Status
	apply()
	j.Status = target
	j.Recalculate()
	j.IncrementVersion()
	j.UpdatedAt = now
	j.AddDomainEvent(NewStatusChangedEvent(j, from))
	return nil
}

// Recalculate refreshes the derived totals; repositories call it before every save
func (j *Job) Recalculate() {
	parts := decimal.Zero
	for _, p := range j.Parts {
		parts = parts.Add(p.Total)
	}
	j.PartsTotal = shared.RoundMoney(parts)
	j.TotalCost = shared.RoundMoney(j.LaborCost.Add(j.PartsTotal))
}

// AmountPaid is advance plus final payment
func (j *Job) AmountPaid() decimal.Decimal {
	return j.AdvancePayment.Add(j.FinalPayment)
}

// BalanceDue is max(0, totalCost − advancePayment − finalPayment)
func (j *Job) BalanceDue() decimal.Decimal {
	return shared.RoundMoney(shared.MaxZero(j.TotalCost.Sub(j.AmountPaid())))
}

// PaymentStatus derives PENDING, PARTIAL or PAID
func (j *Job) PaymentStatus() PaymentStatus {
	paid := j.AmountPaid()
	switch {
	case j.TotalCost.IsPositive() && paid.GreaterThanOrEqual(j.TotalCost):
		return PaymentStatusPaid
	case j.Status == StatusCompleted && paid.GreaterThanOrEqual(j.TotalCost):
		return PaymentStatusPaid
	case paid.IsPositive():
		return PaymentStatusPartial
	}
	return PaymentStatusPending
}
