package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceGenerator draws document sequence values from the document_sequences table.
// The increment is an upsert, so the row lock it takes serializes concurrent callers;
// bound to a transaction, the increment rolls back with everything else.
type GormSequenceGenerator struct {
	db *gorm.DB
}

// NewGormSequenceGenerator creates a new GormSequenceGenerator
func NewGormSequenceGenerator(db *gorm.DB) *GormSequenceGenerator {
	return &GormSequenceGenerator{db: db}
}

// Next increments and returns the counter for (docType, day)
func (g *GormSequenceGenerator) Next(ctx context.Context, docType shared.DocumentType, day time.Time) (int64, error) {
	key := shared.SequenceDay(day)
	var value int64
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.DocumentSequenceModel{DocType: docType, Day: key, Value: 1}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "doc_type"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"value": gorm.Expr("document_sequences.value + 1"),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}
		return tx.Model(&models.DocumentSequenceModel{}).
			Where("doc_type = ? AND day = ?", docType, key).
			Pluck("value", &value).Error
	})
	if err != nil {
		return 0, fmt.Errorf("increment %s sequence for %s: %w", docType, key, err)
	}
	return value, nil
}

// Current returns the last value handed out for (docType, day), or 0
func (g *GormSequenceGenerator) Current(ctx context.Context, docType shared.DocumentType, day time.Time) (int64, error) {
	var values []int64
	err := g.db.WithContext(ctx).Model(&models.DocumentSequenceModel{}).
		Where("doc_type = ? AND day = ?", docType, shared.SequenceDay(day)).
		Pluck("value", &values).Error
	if err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}
	return values[0], nil
}

var _ shared.SequenceGenerator = (*GormSequenceGenerator)(nil)
