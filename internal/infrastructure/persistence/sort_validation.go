package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list endpoint may order by. Anything
// outside the set falls back to the fallback column, so user input never
// reaches the ORDER BY clause verbatim.
type sortColumns struct {
	fallback string
	allowed  map[string]struct{}
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+2)
	for _, c := range append(columns, "id", fallback) {
		allowed[c] = struct{}{}
	}
	return sortColumns{fallback: fallback, allowed: allowed}
}

// column returns the requested column when allowed, otherwise the fallback
func (s sortColumns) column(requested string) string {
	requested = strings.TrimSpace(requested)
	if _, ok := s.allowed[requested]; ok {
		return requested
	}
	return s.fallback
}

// orderBy builds the ORDER BY clause. Direction defaults to descending and id
// breaks ties so pages stay stable when the sort column repeats.
func (s sortColumns) orderBy(requested, direction string) clause.OrderBy {
	col := s.column(requested)
	desc := !strings.EqualFold(strings.TrimSpace(direction), "asc")
	cols := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: desc}}
	if col != "id" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return clause.OrderBy{Columns: cols}
}

var (
	userSort       = newSortColumns("created_at", "updated_at", "username", "display_name", "status", "last_login_at")
	productSort    = newSortColumns("created_at", "updated_at", "sku", "name", "category", "selling_price", "cost_price")
	adjustmentSort = newSortColumns("created_at", "adjustment_type", "quantity")
	saleSort       = newSortColumns("created_at", "updated_at", "sale_number", "grand_total", "status", "completed_at")
	repairJobSort  = newSortColumns("created_at", "updated_at", "job_number", "status", "total_cost")
	warrantySort   = newSortColumns("created_at", "updated_at", "warranty_number", "start_date", "end_date", "status")
)
