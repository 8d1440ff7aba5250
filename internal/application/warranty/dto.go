package warranty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
	"github.com/shopspring/decimal"
)

// CreateWarrantyInput issues a warranty outside the sale flow. SourceType is
// MANUAL or REPAIR; REPAIR warranties copy the customer and device from the job.
type CreateWarrantyInput struct {
	SourceType     string
	RepairJobID    *uuid.UUID
	ProductID      *uuid.UUID
	ProductName    string
	SerialNumber   string
	WarrantyType   string
	Customer       shared.CustomerSnapshot
	DurationMonths int
	StartDate      *time.Time
	Terms          string
}

// FileClaimInput files a claim. Resolution may be empty for an undecided claim.
type FileClaimInput struct {
	Issue                string
	Resolution           string
	RepairJobID          *uuid.UUID
	ReplacementProductID *uuid.UUID
	RefundMethod         string
	Notes                string
}

// ListFilter narrows warranty listings
type ListFilter struct {
	shared.Filter
	Status        string
	CustomerPhone string
	SaleID        *uuid.UUID
	ProductID     *uuid.UUID
}

// ClaimResponse is a claim filed against a warranty
type ClaimResponse struct {
	ID                   uuid.UUID       `json:"id"`
	ClaimNumber          string          `json:"claim_number"`
	Issue                string          `json:"issue"`
	Resolution           string          `json:"resolution"`
	ClaimCost            decimal.Decimal `json:"claim_cost"`
	RefundAmount         decimal.Decimal `json:"refund_amount"`
	RepairJobID          *uuid.UUID      `json:"repair_job_id,omitempty"`
	ReplacementProductID *uuid.UUID      `json:"replacement_product_id,omitempty"`
	ReturnID             *uuid.UUID      `json:"return_id,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	FiledBy              uuid.UUID       `json:"filed_by"`
	CreatedAt            time.Time       `json:"created_at"`
}

// WarrantyResponse represents a warranty in API responses. Status is the
// effective status at read time.
type WarrantyResponse struct {
	ID             uuid.UUID               `json:"id"`
	WarrantyNumber string                  `json:"warranty_number"`
	SourceType     string                  `json:"source_type"`
	Status         string                  `json:"status"`
	SaleID         *uuid.UUID              `json:"sale_id,omitempty"`
	SaleNumber     string                  `json:"sale_number,omitempty"`
	RepairJobID    *uuid.UUID              `json:"repair_job_id,omitempty"`
	ProductID      *uuid.UUID              `json:"product_id,omitempty"`
	ProductName    string                  `json:"product_name"`
	SKU            string                  `json:"sku,omitempty"`
	SerialNumber   string                  `json:"serial_number,omitempty"`
	WarrantyType   string                  `json:"warranty_type,omitempty"`
	Customer       shared.CustomerSnapshot `json:"customer"`
	DurationMonths int                     `json:"duration_months"`
	StartDate      time.Time               `json:"start_date"`
	EndDate        time.Time               `json:"end_date"`
	Claims         []ClaimResponse         `json:"claims"`
	Terms          string                  `json:"terms,omitempty"`
	IssuedBy       uuid.UUID               `json:"issued_by"`
	VoidedAt       *time.Time              `json:"voided_at,omitempty"`
	VoidReason     string                  `json:"void_reason,omitempty"`
	Version        int                     `json:"version"`
	CreatedAt      time.Time               `json:"created_at"`
}

// ValidityResponse answers whether a warranty can be claimed now
type ValidityResponse struct {
	WarrantyID     uuid.UUID `json:"warranty_id"`
	WarrantyNumber string    `json:"warranty_number"`
	Valid          bool      `json:"valid"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	DaysRemaining  int       `json:"days_remaining"`
	EndDate        time.Time `json:"end_date"`
}

// ClaimResult is the warranty after a claim, with the claim and the documents it produced
type ClaimResult struct {
	Warranty    WarrantyResponse `json:"warranty"`
	Claim       ClaimResponse    `json:"claim"`
	RepairJobID *uuid.UUID       `json:"repair_job_id,omitempty"`
	JobNumber   string           `json:"job_number,omitempty"`
	ReturnID    *uuid.UUID       `json:"return_id,omitempty"`
	ReturnNo    string           `json:"return_number,omitempty"`
}

// SweepResult reports one expiry sweep
type SweepResult struct {
	Expired int       `json:"expired"`
	Batches int       `json:"batches"`
	RanAt   time.Time `json:"ran_at"`
}

// ToWarrantyResponse converts a domain warranty as seen at now
func ToWarrantyResponse(w *warranty.Warranty, now time.Time) WarrantyResponse {
	claims := make([]ClaimResponse, len(w.Claims))
	for i, c := range w.Claims {
		claims[i] = toClaimResponse(c)
	}
	return WarrantyResponse{
		ID:             w.ID,
		WarrantyNumber: w.WarrantyNumber,
		SourceType:     string(w.SourceType),
		Status:         string(w.EffectiveStatus(now)),
		SaleID:         w.SaleID,
		SaleNumber:     w.SaleNumber,
		RepairJobID:    w.RepairJobID,
		ProductID:      w.ProductID,
		ProductName:    w.ProductName,
		SKU:            w.SKU,
		SerialNumber:   w.SerialNumber,
		WarrantyType:   w.WarrantyType,
		Customer:       w.Customer,
		DurationMonths: w.DurationMonths,
		StartDate:      w.StartDate,
		EndDate:        w.EndDate,
		Claims:         claims,
		Terms:          w.Terms,
		IssuedBy:       w.IssuedBy,
		VoidedAt:       w.VoidedAt,
		VoidReason:     w.VoidReason,
		Version:        w.GetVersion(),
		CreatedAt:      w.CreatedAt,
	}
}

func toClaimResponse(c warranty.Claim) ClaimResponse {
	return ClaimResponse{
		ID:                   c.ID,
		ClaimNumber:          c.ClaimNumber,
		Issue:                c.Issue,
		Resolution:           string(c.Resolution),
		ClaimCost:            c.ClaimCost,
		RefundAmount:         c.RefundAmount,
		RepairJobID:          c.RepairJobID,
		ReplacementProductID: c.ReplacementProductID,
		ReturnID:             c.ReturnID,
		Notes:                c.Notes,
		FiledBy:              c.FiledBy,
		CreatedAt:            c.CreatedAt,
	}
}
