package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopspring/decimal"
)

// DeviceColumns stores the received device inline with a device_ prefix
type DeviceColumns struct {
	Type         string `gorm:"type:varchar(50);not null"`
	Brand        string `gorm:"type:varchar(100);not null"`
	Model        string `gorm:"type:varchar(100);not null"`
	SerialNumber string `gorm:"type:varchar(100);index"`
	Accessories  string `gorm:"type:varchar(500)"`
	Condition    string `gorm:"column:device_condition;type:varchar(500)"`
}

// RepairJobModel is the persistence model for the repair Job aggregate root.
type RepairJobModel struct {
	AggregateModel
	JobNumber          string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status             repair.Status   `gorm:"type:varchar(20);not null;index"`
	Customer           CustomerColumns `gorm:"embedded;embeddedPrefix:customer_"`
	Device             DeviceColumns   `gorm:"embedded;embeddedPrefix:device_"`
	ProblemDescription string          `gorm:"type:text;not null"`
	TechnicianNotes    string          `gorm:"type:text"`
	EstimatedCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LaborCost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PartsTotal         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalCost          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdvancePayment     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdvancePaidAt      *time.Time
	AdvanceReceivedBy  *uuid.UUID      `gorm:"type:uuid"`
	FinalPayment       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentMethod      string          `gorm:"type:varchar(20)"`
	ReceivedBy         uuid.UUID       `gorm:"type:uuid;not null"`
	AssignedTo         *uuid.UUID      `gorm:"type:uuid;index"`
	AssignedBy         *uuid.UUID      `gorm:"type:uuid"`
	AssignedAt         *time.Time
	StartedAt          *time.Time
	ReadyAt            *time.Time
	PickupDate         *time.Time
	CompletedBy        *uuid.UUID `gorm:"type:uuid"`
	CancelledAt        *time.Time
	CancelledBy        *uuid.UUID        `gorm:"type:uuid"`
	CancelReason       string            `gorm:"type:varchar(500)"`
	WarrantyID         *uuid.UUID        `gorm:"type:uuid"`
	WarrantyClaimID    *uuid.UUID        `gorm:"type:uuid"`
	Parts              []RepairPartModel `gorm:"foreignKey:JobID;references:ID"`
}

// TableName returns the table name for GORM
func (RepairJobModel) TableName() string {
	return "repair_jobs"
}

// ToDomain converts the persistence model to a domain repair Job
func (m *RepairJobModel) ToDomain() *repair.Job {
	j := &repair.Job{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		JobNumber:         m.JobNumber,
		Status:            m.Status,
		Customer:          m.Customer.toDomain(),
		Device: repair.Device{
			Type:         m.Device.Type,
			Brand:        m.Device.Brand,
			Model:        m.Device.Model,
			SerialNumber: m.Device.SerialNumber,
			Accessories:  m.Device.Accessories,
			Condition:    m.Device.Condition,
		},
		ProblemDescription: m.ProblemDescription,
		TechnicianNotes:    m.TechnicianNotes,
		EstimatedCost:      m.EstimatedCost,
		LaborCost:          m.LaborCost,
		Parts:              make([]repair.Part, 0, len(m.Parts)),
		PartsTotal:         m.PartsTotal,
		TotalCost:          m.TotalCost,
		AdvancePayment:     m.AdvancePayment,
		AdvancePaidAt:      m.AdvancePaidAt,
		AdvanceReceivedBy:  m.AdvanceReceivedBy,
		FinalPayment:       m.FinalPayment,
		PaymentMethod:      m.PaymentMethod,
		ReceivedBy:         m.ReceivedBy,
		AssignedTo:         m.AssignedTo,
		AssignedBy:         m.AssignedBy,
		AssignedAt:         m.AssignedAt,
		StartedAt:          m.StartedAt,
		ReadyAt:            m.ReadyAt,
		PickupDate:         m.PickupDate,
		CompletedBy:        m.CompletedBy,
		CancelledAt:        m.CancelledAt,
		CancelledBy:        m.CancelledBy,
		CancelReason:       m.CancelReason,
		WarrantyID:         m.WarrantyID,
		WarrantyClaimID:    m.WarrantyClaimID,
	}
	for i := range m.Parts {
		j.Parts = append(j.Parts, m.Parts[i].ToDomain())
	}
	return j
}

// RepairJobModelFromDomain creates a persistence model from a domain repair Job
func RepairJobModelFromDomain(j *repair.Job) *RepairJobModel {
	m := &RepairJobModel{
		JobNumber: j.JobNumber,
		Status:    j.Status,
		Customer:  customerFromDomain(j.Customer),
		Device: DeviceColumns{
			Type:         j.Device.Type,
			Brand:        j.Device.Brand,
			Model:        j.Device.Model,
			SerialNumber: j.Device.SerialNumber,
			Accessories:  j.Device.Accessories,
			Condition:    j.Device.Condition,
		},
		ProblemDescription: j.ProblemDescription,
		TechnicianNotes:    j.TechnicianNotes,
		EstimatedCost:      j.EstimatedCost,
		LaborCost:          j.LaborCost,
		PartsTotal:         j.PartsTotal,
		TotalCost:          j.TotalCost,
		AdvancePayment:     j.AdvancePayment,
		AdvancePaidAt:      j.AdvancePaidAt,
		AdvanceReceivedBy:  j.AdvanceReceivedBy,
		FinalPayment:       j.FinalPayment,
		PaymentMethod:      j.PaymentMethod,
		ReceivedBy:         j.ReceivedBy,
		AssignedTo:         j.AssignedTo,
		AssignedBy:         j.AssignedBy,
		AssignedAt:         j.AssignedAt,
		StartedAt:          j.StartedAt,
		ReadyAt:            j.ReadyAt,
		PickupDate:         j.PickupDate,
		CompletedBy:        j.CompletedBy,
		CancelledAt:        j.CancelledAt,
		CancelledBy:        j.CancelledBy,
		CancelReason:       j.CancelReason,
		WarrantyID:         j.WarrantyID,
		WarrantyClaimID:    j.WarrantyClaimID,
		Parts:              make([]RepairPartModel, 0, len(j.Parts)),
	}
	m.FromDomainAggregateRoot(j.BaseAggregateRoot)
	for i, p := range j.Parts {
		m.Parts = append(m.Parts, RepairPartModel{
			ID:          p.ID,
			JobID:       j.ID,
			Position:    i,
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			SKU:         p.SKU,
			Quantity:    p.Quantity,
			UnitPrice:   p.UnitPrice,
			Total:       p.Total,
		})
	}
	return m
}

// RepairPartModel is one stock item consumed by a repair
type RepairPartModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	JobID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position    int             `gorm:"not null;default:0"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"column:sku;type:varchar(50);not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (RepairPartModel) TableName() string {
	return "repair_parts"
}

// ToDomain converts the persistence model to a domain Part
func (m *RepairPartModel) ToDomain() repair.Part {
	return repair.Part{
		ID:          m.ID,
		ProductID:   m.ProductID,
		ProductName: m.ProductName,
		SKU:         m.SKU,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Total:       m.Total,
	}
}
