package shared

import (
	"context"
	"fmt"
	"time"
)

// DocumentType identifies a family of human-readable business numbers.
// Each type has its own per-day sequence.
type DocumentType string

const (
	DocumentTypeSale     DocumentType = "SL"
	DocumentTypeReturn   DocumentType = "RT"
	DocumentTypeRepair   DocumentType = "RJ"
	DocumentTypeWarranty DocumentType = "WR"
	DocumentTypeClaim    DocumentType = "CLM"
)

// IsValid checks if the document type is known
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentTypeSale, DocumentTypeReturn, DocumentTypeRepair, DocumentTypeWarranty, DocumentTypeClaim:
		return true
	}
	return false
}

// SequenceGenerator hands out per-(type, day) sequence values starting at 1.
// Implementations must be atomic: two concurrent callers never receive the same value.
type SequenceGenerator interface {
	Next(ctx context.Context, docType DocumentType, day time.Time) (int64, error)
}

// SequenceDay returns the calendar day key (YYYYMMDD) used for sequencing
func SequenceDay(t time.Time) string {
	return t.Format("20060102")
}

// FormatDocumentNumber renders PREFIX-YYYYMMDD-NNNN
func FormatDocumentNumber(docType DocumentType, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", docType, SequenceDay(day), seq)
}

// NextDocumentNumber draws the next sequence value and formats it
func NextDocumentNumber(ctx context.Context, gen SequenceGenerator, docType DocumentType, now time.Time) (string, error) {
	if !docType.IsValid() {
		return "", NewInvalidInputError("unknown document type: " + string(docType))
	}
	seq, err := gen.Next(ctx, docType, now)
	if err != nil {
		return "", fmt.Errorf("next %s sequence: %w", docType, err)
	}
	return FormatDocumentNumber(docType, now, seq), nil
}
