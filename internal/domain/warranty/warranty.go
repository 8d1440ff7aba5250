package warranty

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// SourceType records what issued the warranty
type SourceType string

const (
	SourceSale   SourceType = "SALE"
	SourceRepair SourceType = "REPAIR"
	SourceManual SourceType = "MANUAL"
)

// IsValid checks if the source type is known
func (s SourceType) IsValid() bool {
	return s == SourceSale || s == SourceRepair || s == SourceManual
}

// Status represents the stored state of a warranty
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusExpired Status = "EXPIRED"
	StatusClaimed Status = "CLAIMED"
	StatusVoid    Status = "VOID"
)

// IsValid checks if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusClaimed, StatusVoid:
		return true
	}
	return false
}

// Warranty covers one unit of a product for a number of calendar months
type Warranty struct {
	shared.BaseAggregateRoot
	WarrantyNumber string
	SourceType     SourceType
	SaleID         *uuid.UUID
	SaleItemID     *uuid.UUID
	SaleNumber     string
	RepairJobID    *uuid.UUID
	ProductID      *uuid.UUID
	ProductName    string
	SKU            string
	SerialNumber   string
	WarrantyType   string
	Customer       shared.CustomerSnapshot
	DurationMonths int
	StartDate      time.Time
	EndDate        time.Time
	Status         Status
	Claims         []Claim
	IssuedBy       uuid.UUID
	Terms          string
	VoidedAt       *time.Time
	VoidedBy       *uuid.UUID
	VoidReason     string
}

// NewWarrantyParams carries issuance data
type NewWarrantyParams struct {
	WarrantyNumber string
	SourceType     SourceType
	SaleID         *uuid.UUID
	SaleItemID     *uuid.UUID
	SaleNumber     string
	RepairJobID    *uuid.UUID
	ProductID      *uuid.UUID
	ProductName    string
	SKU            string
	SerialNumber   string
	WarrantyType   string
	Customer       shared.CustomerSnapshot
	DurationMonths int
	StartDate      time.Time
	IssuedBy       uuid.UUID
	Terms          string
}

// NewWarranty issues an ACTIVE warranty ending DurationMonths calendar months after StartDate
func NewWarranty(p NewWarrantyParams) (*Warranty, error) {
	if p.WarrantyNumber == "" {
		return nil, shared.NewInvalidInputError("Warranty number is required")
	}
	if !p.SourceType.IsValid() {
		return nil, shared.NewInvalidInputError("Unknown warranty source: " + string(p.SourceType))
	}
	if p.DurationMonths < 1 {
		return nil, shared.NewDomainError("INVALID_WARRANTY_DURATION", "Warranty duration must be at least one month")
	}
	name := strings.TrimSpace(p.ProductName)
	if name == "" {
		return nil, shared.NewInvalidInputError("Product name is required")
	}
	if !p.Customer.IsIdentified() {
		return nil, shared.NewInvalidInputError("Customer name and phone are required for a warranty")
	}
	if p.SourceType == SourceSale && p.SaleID == nil {
		return nil, shared.NewInvalidInputError("Sale warranties need a sale reference")
	}
	if p.SourceType == SourceRepair && p.RepairJobID == nil {
		return nil, shared.NewInvalidInputError("Repair warranties need a repair job reference")
	}
	start := p.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	w := &Warranty{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WarrantyNumber:    p.WarrantyNumber,
		SourceType:        p.SourceType,
		SaleID:            p.SaleID,
		SaleItemID:        p.SaleItemID,
		SaleNumber:        p.SaleNumber,
		RepairJobID:       p.RepairJobID,
		ProductID:         p.ProductID,
		ProductName:       name,
		SKU:               p.SKU,
		SerialNumber:      strings.TrimSpace(p.SerialNumber),
		WarrantyType:      p.WarrantyType,
		Customer:          p.Customer.Normalized(),
		DurationMonths:    p.DurationMonths,
		StartDate:         start,
		EndDate:           AddMonths(start, p.DurationMonths),
		Status:            StatusActive,
		Claims:            make([]Claim, 0),
		IssuedBy:          p.IssuedBy,
		Terms:             strings.TrimSpace(p.Terms),
	}
	w.AddDomainEvent(NewIssuedEvent(w))
	return w, nil
}

// AddMonths adds calendar months, clamping to the last day of the target month
// (Jan 31 + 1 month = Feb 28/29)
func AddMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	firstOfTarget := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return firstOfTarget.AddDate(0, 0, d-1)
}

// IsExpired is the single authority for expiry: not VOID and past the end date
func (w *Warranty) IsExpired(now time.Time) bool {
	return w.Status != StatusVoid && w.EndDate.Before(now)
}

// EffectiveStatus is the status as of now; it never writes
func (w *Warranty) EffectiveStatus(now time.Time) Status {
	if w.IsExpired(now) {
		return StatusExpired
	}
	return w.Status
}

// Validity is the result of a validity check
type Validity struct {
	Valid         bool
	Status        Status
	Reason        string
	DaysRemaining int
	EndDate       time.Time
}

// CheckValidity reports whether the warranty can be claimed against now
func (w *Warranty) CheckValidity(now time.Time) Validity {
	v := Validity{Status: w.EffectiveStatus(now), EndDate: w.EndDate}
	switch {
	case w.Status == StatusVoid:
		v.Reason = "Warranty is void"
	case w.IsExpired(now):
		v.Reason = "Warranty has expired"
	default:
		v.Valid = true
		v.DaysRemaining = int(math.Ceil(w.EndDate.Sub(now).Hours() / 24))
	}
	return v
}

// EnsureValid fails when the warranty cannot be claimed against now
func (w *Warranty) EnsureValid(now time.Time) error {
	v := w.CheckValidity(now)
	if !v.Valid {
		return shared.NewInvalidStateError(v.Reason).
			WithDetail("warranty_number", w.WarrantyNumber).
			WithDetail("status", string(v.Status))
	}
	return nil
}

// FileClaim appends a claim. REFUND claims void the warranty; any other claim
// moves an ACTIVE warranty to CLAIMED.
func (w *Warranty) FileClaim(claim Claim, actorID uuid.UUID, now time.Time) error {
	if err := w.EnsureValid(now); err != nil {
		return err
	}
	if err := claim.validate(); err != nil {
		return err
	}
	claim.WarrantyID = w.ID
	w.Claims = append(w.Claims, claim)
	w.AddDomainEvent(NewClaimedEvent(w, claim))

	if claim.Resolution == ResolutionRefund {
		return w.Void(actorID, "Refunded through warranty claim "+claim.ClaimNumber, now)
	}
	if w.Status == StatusActive {
		w.Status = StatusClaimed
	}
	w.IncrementVersion()
	return nil
}

// Void terminates the warranty. It cannot be undone.
func (w *Warranty) Void(actorID uuid.UUID, reason string, now time.Time) error {
	if w.Status == StatusVoid {
		return shared.NewInvalidStateError("Warranty is already void")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewInvalidInputError("Void reason is required")
	}
	w.Status = StatusVoid
	w.VoidedAt = &now
	w.VoidedBy = &actorID
	w.VoidReason = reason
	w.IncrementVersion()
	w.AddDomainEvent(NewVoidedEvent(w))
	return nil
}

// Expire materializes expiry for ACTIVE or CLAIMED warranties past their end date.
// It reports whether anything changed, so repeated sweeps are no-ops.
func (w *Warranty) Expire(now time.Time) bool {
	if w.Status != StatusActive && w.Status != StatusClaimed {
		return false
	}
	if !w.EndDate.Before(now) {
		return false
	}
	w.Status = StatusExpired
	w.IncrementVersion()
	w.AddDomainEvent(NewExpiredEvent(w))
	return true
}

// FindClaim returns the claim with the given id
func (w *Warranty) FindClaim(id uuid.UUID) (Claim, bool) {
	for _, c := range w.Claims {
		if c.ID == id {
			return c, true
		}
	}
	return Claim{}, false
}
