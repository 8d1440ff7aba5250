package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// AdjustmentType classifies a stock movement
type AdjustmentType string

const (
	AdjustmentTypeAddition        AdjustmentType = "ADDITION"
	AdjustmentTypeReduction       AdjustmentType = "REDUCTION"
	AdjustmentTypePurchase        AdjustmentType = "PURCHASE"
	AdjustmentTypeSale            AdjustmentType = "SALE"
	AdjustmentTypeReturn          AdjustmentType = "RETURN"
	AdjustmentTypeDamage          AdjustmentType = "DAMAGE"
	AdjustmentTypeTheft           AdjustmentType = "THEFT"
	AdjustmentTypeCorrection      AdjustmentType = "CORRECTION"
	AdjustmentTypeTransferIn      AdjustmentType = "TRANSFER_IN"
	AdjustmentTypeTransferOut     AdjustmentType = "TRANSFER_OUT"
	AdjustmentTypeWarrantyReplace AdjustmentType = "WARRANTY_REPLACE"
)

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// IsValid returns true if the adjustment type is known
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentTypeAddition,
		AdjustmentTypeReduction,
		AdjustmentTypePurchase,
		AdjustmentTypeSale,
		AdjustmentTypeReturn,
		AdjustmentTypeDamage,
		AdjustmentTypeTheft,
		AdjustmentTypeCorrection,
		AdjustmentTypeTransferIn,
		AdjustmentTypeTransferOut,
		AdjustmentTypeWarrantyReplace:
		return true
	}
	return false
}

// AllAdjustmentTypes lists every adjustment type
func AllAdjustmentTypes() []AdjustmentType {
	return []AdjustmentType{
		AdjustmentTypeAddition, AdjustmentTypeReduction, AdjustmentTypePurchase,
		AdjustmentTypeSale, AdjustmentTypeReturn, AdjustmentTypeDamage,
		AdjustmentTypeTheft, AdjustmentTypeCorrection, AdjustmentTypeTransferIn,
		AdjustmentTypeTransferOut, AdjustmentTypeWarrantyReplace,
	}
}

// Direction is the sign of a stock movement
type Direction string

const (
	DirectionIncrease Direction = "INCREASE"
	DirectionDecrease Direction = "DECREASE"
)

// IsValid returns true if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionIncrease || d == DirectionDecrease
}

// ResolveDirection returns the direction a type moves stock in.
// CORRECTION has no implied direction and must be given one explicitly;
// for every other type the supplied direction is ignored.
func ResolveDirection(t AdjustmentType, explicit Direction) (Direction, error) {
	switch t {
	case AdjustmentTypeAddition, AdjustmentTypePurchase, AdjustmentTypeReturn, AdjustmentTypeTransferIn:
		return DirectionIncrease, nil
	case AdjustmentTypeReduction, AdjustmentTypeSale, AdjustmentTypeDamage, AdjustmentTypeTheft,
		AdjustmentTypeTransferOut, AdjustmentTypeWarrantyReplace:
		return DirectionDecrease, nil
	case AdjustmentTypeCorrection:
		if !explicit.IsValid() {
			return "", shared.NewDomainError(shared.CodeInvalidAdjustmentType,
				"CORRECTION adjustments require a direction of INCREASE or DECREASE")
		}
		return explicit, nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidAdjustmentType, "Unknown adjustment type: "+string(t))
}

// SignedDelta returns the quantity change for (type, direction, quantity)
func SignedDelta(t AdjustmentType, explicit Direction, quantity int) (int, Direction, error) {
	if quantity <= 0 {
		return 0, "", shared.NewInvalidInputError("Adjustment quantity must be positive")
	}
	dir, err := ResolveDirection(t, explicit)
	if err != nil {
		return 0, "", err
	}
	if dir == DirectionDecrease {
		return -quantity, dir, nil
	}
	return quantity, dir, nil
}

// ReferenceType names the kind of entity that caused an adjustment
type ReferenceType string

const (
	ReferenceTypeManual        ReferenceType = "MANUAL"
	ReferenceTypeSale          ReferenceType = "SALE"
	ReferenceTypeSaleVoid      ReferenceType = "SALE_VOID"
	ReferenceTypeReturn        ReferenceType = "RETURN"
	ReferenceTypeRepair        ReferenceType = "REPAIR"
	ReferenceTypeRepairCancel  ReferenceType = "REPAIR_CANCEL"
	ReferenceTypeWarrantyClaim ReferenceType = "WARRANTY_CLAIM"
)

// Reference points at the originating entity of an adjustment
type Reference struct {
	Type   ReferenceType
	ID     *uuid.UUID
	Number string
}

// ManualReference is used for adjustments recorded directly by staff
func ManualReference() Reference {
	return Reference{Type: ReferenceTypeManual}
}

// NewReference builds a reference to an entity with a business number
func NewReference(t ReferenceType, id uuid.UUID, number string) Reference {
	return Reference{Type: t, ID: &id, Number: number}
}

// StockAdjustment is an immutable record of one stock movement.
// Corrections are made with new adjustments, never by editing old ones.
// NewQuantity - PreviousQuantity always equals Delta.
type StockAdjustment struct {
	ID               uuid.UUID
	ProductID        uuid.UUID
	Type             AdjustmentType
	Direction        Direction
	Quantity         int // always positive
	Delta            int // signed
	PreviousQuantity int
	NewQuantity      int
	Reference        Reference
	ActorID          uuid.UUID
	Reason           string
	CreatedAt        time.Time
}

// IsIncrease returns true if the adjustment added stock
func (a *StockAdjustment) IsIncrease() bool {
	return a.Delta > 0
}
