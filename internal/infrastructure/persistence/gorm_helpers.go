package persistence

import (
	"errors"
	"strings"

	"github.com/shopdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notFound maps gorm.ErrRecordNotFound to a NOT_FOUND domain error for resource
func notFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(resource)
	}
	return err
}

// applyPaging orders and pages a query from a normalized filter
func applyPaging(query *gorm.DB, filter shared.Filter, sort sortColumns) *gorm.DB {
	f := filter.Normalize()
	return query.Clauses(sort.orderBy(f.OrderBy, f.OrderDir)).Offset(f.Offset()).Limit(f.PageSize)
}

// likePattern builds a case-insensitive contains pattern
func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// saveAggregateHeader inserts the model when the aggregate is new, otherwise
// updates every column except id, created_at and associations under a version
// predicate. A stale version yields CONCURRENCY_CONFLICT.
func saveAggregateHeader(tx *gorm.DB, model any, root *shared.BaseAggregateRoot) error {
	if root.IsNew() {
		if err := tx.Omit(clause.Associations).Create(model).Error; err != nil {
			return err
		}
		return nil
	}
	result := tx.Model(model).
		Where("id = ? AND version = ?", root.ID, root.PersistedVersion()).
		Select("*").
		Omit("id", "created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
