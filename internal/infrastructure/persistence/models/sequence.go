package models

import "github.com/shopdesk/backend/internal/domain/shared"

// DocumentSequenceModel is the per-day counter behind document numbers
type DocumentSequenceModel struct {
	DocType shared.DocumentType `gorm:"type:varchar(10);primaryKey"`
	Day     string              `gorm:"type:varchar(8);primaryKey"`
	Value   int64               `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (DocumentSequenceModel) TableName() string {
	return "document_sequences"
}
