package warranty

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Resolution is the outcome chosen for a claim
type Resolution string

const (
	ResolutionRepair   Resolution = "REPAIR"
	ResolutionReplace  Resolution = "REPLACE"
	ResolutionRefund   Resolution = "REFUND"
	ResolutionRejected Resolution = "REJECTED"
	ResolutionPending  Resolution = "PENDING" // no decision yet
)

// IsValid checks if the resolution is known
func (r Resolution) IsValid() bool {
	switch r {
	case ResolutionRepair, ResolutionReplace, ResolutionRefund, ResolutionRejected, ResolutionPending:
		return true
	}
	return false
}

// Claim is owned by its warranty and only written through it
type Claim struct {
	ID                   uuid.UUID
	WarrantyID           uuid.UUID
	ClaimNumber          string
	Issue                string
	Resolution           Resolution
	ClaimCost            decimal.Decimal
	RefundAmount         decimal.Decimal
	RepairJobID          *uuid.UUID
	ReplacementProductID *uuid.UUID
	ReturnID             *uuid.UUID
	Notes                string
	FiledBy              uuid.UUID
	CreatedAt            time.Time
}

// NewClaim creates an unresolved claim skeleton; callers fill in side-effect links
func NewClaim(number, issue string, resolution Resolution, filedBy uuid.UUID, now time.Time) Claim {
	if resolution == "" {
		resolution = ResolutionPending
	}
	return Claim{
		ID:           uuid.New(),
		ClaimNumber:  number,
		Issue:        strings.TrimSpace(issue),
		Resolution:   resolution,
		ClaimCost:    decimal.Zero,
		RefundAmount: decimal.Zero,
		FiledBy:      filedBy,
		CreatedAt:    now,
	}
}

func (c Claim) validate() error {
	if c.ClaimNumber == "" {
		return shared.NewInvalidInputError("Claim number is required")
	}
	if c.Issue == "" {
		return shared.NewInvalidInputError("Claim issue is required")
	}
	if !c.Resolution.IsValid() {
		return shared.NewInvalidInputError("Unknown claim resolution: " + string(c.Resolution))
	}
	switch c.Resolution {
	case ResolutionRepair:
		if c.RepairJobID == nil {
			return shared.NewDomainError(shared.CodeInvariantViolation, "Repair claim without a repair job")
		}
	case ResolutionReplace:
		if c.ReplacementProductID == nil {
			return shared.NewDomainError(shared.CodeInvariantViolation, "Replace claim without a product")
		}
	case ResolutionRefund:
		if c.ReturnID == nil {
			return shared.NewDomainError(shared.CodeInvariantViolation, "Refund claim without a return")
		}
	}
	if c.ClaimCost.IsNegative() {
		return shared.NewInvalidInputError("Claim cost cannot be negative")
	}
	return nil
}
