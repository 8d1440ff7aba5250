package warranty

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AggregateTypeWarranty names the warranty in events
const AggregateTypeWarranty = "Warranty"

// Event type constants
const (
	EventTypeWarrantyIssued  = "WarrantyIssued"
	EventTypeWarrantyClaimed = "WarrantyClaimed"
	EventTypeWarrantyVoided  = "WarrantyVoided"
	EventTypeWarrantyExpired = "WarrantyExpired"
)

// IssuedEvent is raised when a warranty is created
type IssuedEvent struct {
	shared.BaseDomainEvent
	WarrantyID     uuid.UUID  `json:"warranty_id"`
	WarrantyNumber string     `json:"warranty_number"`
	SourceType     SourceType `json:"source_type"`
	EndDate        time.Time  `json:"end_date"`
}

// NewIssuedEvent creates an IssuedEvent
func NewIssuedEvent(w *Warranty) *IssuedEvent {
	return &IssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarrantyIssued, AggregateTypeWarranty, w.ID),
		WarrantyID:      w.ID,
		WarrantyNumber:  w.WarrantyNumber,
		SourceType:      w.SourceType,
		EndDate:         w.EndDate,
	}
}

// ClaimedEvent is raised for every filed claim
type ClaimedEvent struct {
	shared.BaseDomainEvent
	WarrantyID  uuid.UUID       `json:"warranty_id"`
	ClaimID     uuid.UUID       `json:"claim_id"`
	ClaimNumber string          `json:"claim_number"`
	Resolution  Resolution      `json:"resolution"`
	ClaimCost   decimal.Decimal `json:"claim_cost"`
}

// NewClaimedEvent creates a ClaimedEvent
func NewClaimedEvent(w *Warranty, c Claim) *ClaimedEvent {
	return &ClaimedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarrantyClaimed, AggregateTypeWarranty, w.ID),
		WarrantyID:      w.ID,
		ClaimID:         c.ID,
		ClaimNumber:     c.ClaimNumber,
		Resolution:      c.Resolution,
		ClaimCost:       c.ClaimCost,
	}
}

// StatusEvent is raised when a warranty is voided or expired
type StatusEvent struct {
	shared.BaseDomainEvent
	WarrantyID     uuid.UUID `json:"warranty_id"`
	WarrantyNumber string    `json:"warranty_number"`
	Reason         string    `json:"reason,omitempty"`
}

// NewVoidedEvent creates a WarrantyVoided StatusEvent
func NewVoidedEvent(w *Warranty) *StatusEvent {
	return &StatusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarrantyVoided, AggregateTypeWarranty, w.ID),
		WarrantyID:      w.ID,
		WarrantyNumber:  w.WarrantyNumber,
		Reason:          w.VoidReason,
	}
}

// NewExpiredEvent creates a WarrantyExpired StatusEvent
func NewExpiredEvent(w *Warranty) *StatusEvent {
	return &StatusEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeWarrantyExpired, AggregateTypeWarranty, w.ID),
		WarrantyID:      w.ID,
		WarrantyNumber:  w.WarrantyNumber,
	}
}
