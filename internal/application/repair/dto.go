package repair

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateJobInput books a device in
type CreateJobInput struct {
	Customer           shared.CustomerSnapshot
	Device             repair.Device
	ProblemDescription string
	EstimatedCost      decimal.Decimal
	AdvancePayment     decimal.Decimal
}

// PartInput asks for quantity units of a product to be fitted
type PartInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CompleteJobInput records the work done
type CompleteJobInput struct {
	Parts     []PartInput
	LaborCost decimal.Decimal
	Notes     string
}

// CollectPaymentInput settles a ready job
type CollectPaymentInput struct {
	AmountReceived decimal.Decimal
	PaymentMethod  string
}

// JobListFilter narrows job listings
type JobListFilter struct {
	shared.Filter
	Status     string
	AssignedTo *uuid.UUID
}

// PartResponse is a fitted part
type PartResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// JobResponse represents a repair job in API responses
type JobResponse struct {
	ID                 uuid.UUID               `json:"id"`
	JobNumber          string                  `json:"job_number"`
	Status             string                  `json:"status"`
	PaymentStatus      string                  `json:"payment_status"`
	Customer           shared.CustomerSnapshot `json:"customer"`
	Device             repair.Device           `json:"device"`
	ProblemDescription string                  `json:"problem_description"`
	TechnicianNotes    string                  `json:"technician_notes,omitempty"`
	EstimatedCost      decimal.Decimal         `json:"estimated_cost"`
	LaborCost          decimal.Decimal         `json:"labor_cost"`
	Parts              []PartResponse          `json:"parts"`
	PartsTotal         decimal.Decimal         `json:"parts_total"`
	TotalCost          decimal.Decimal         `json:"total_cost"`
	AdvancePayment     decimal.Decimal         `json:"advance_payment"`
	FinalPayment       decimal.Decimal         `json:"final_payment"`
	BalanceDue         decimal.Decimal         `json:"balance_due"`
	PaymentMethod      string                  `json:"payment_method,omitempty"`
	ReceivedBy         uuid.UUID               `json:"received_by"`
	AssignedTo         *uuid.UUID              `json:"assigned_to,omitempty"`
	AssignedAt         *time.Time              `json:"assigned_at,omitempty"`
	StartedAt          *time.Time              `json:"started_at,omitempty"`
	ReadyAt            *time.Time              `json:"ready_at,omitempty"`
	PickupDate         *time.Time              `json:"pickup_date,omitempty"`
	CancelledAt        *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason       string                  `json:"cancel_reason,omitempty"`
	WarrantyID         *uuid.UUID              `json:"warranty_id,omitempty"`
	WarrantyClaimID    *uuid.UUID              `json:"warranty_claim_id,omitempty"`
	Version            int                     `json:"version"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// CollectPaymentResponse is the closed job plus the change handed back
type CollectPaymentResponse struct {
	Job    JobResponse     `json:"job"`
	Change decimal.Decimal `json:"change"`
}

// ToJobResponse converts a domain job
func ToJobResponse(j *repair.Job) JobResponse {
	parts := make([]PartResponse, len(j.Parts))
	for i, p := range j.Parts {
		parts[i] = PartResponse{
			ID:          p.ID,
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			SKU:         p.SKU,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Total:       p.Total,
		}
	}
	return JobResponse{
		ID:                 j.ID,
		JobNumber:          j.JobNumber,
		Status:             string(j.Status),
		PaymentStatus:      string(j.PaymentStatus()),
		Customer:           j.Customer,
		Device:             j.Device,
		ProblemDescription: j.ProblemDescription,
		TechnicianNotes:    j.TechnicianNotes,
		EstimatedCost:      j.EstimatedCost,
		LaborCost:          j.LaborCost,
		Parts:              parts,
		PartsTotal:         j.PartsTotal,
		TotalCost:          j.TotalCost,
		AdvancePayment:     j.AdvancePayment,
		FinalPayment:       j.FinalPayment,
		BalanceDue:         j.BalanceDue(),
		PaymentMethod:      j.PaymentMethod,
		ReceivedBy:         j.ReceivedBy,
		AssignedTo:         j.AssignedTo,
		AssignedAt:         j.AssignedAt,
		StartedAt:          j.StartedAt,
		ReadyAt:            j.ReadyAt,
		PickupDate:         j.PickupDate,
		CancelledAt:        j.CancelledAt,
		CancelReason:       j.CancelReason,
		WarrantyID:         j.WarrantyID,
		WarrantyClaimID:    j.WarrantyClaimID,
		Version:            j.GetVersion(),
		CreatedAt:          j.CreatedAt,
		UpdatedAt:          j.UpdatedAt,
	}
}
