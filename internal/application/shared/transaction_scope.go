package shared

import (
	"context"

	"github.com/shopdesk/backend/internal/domain/catalog"
	"github.com/shopdesk/backend/internal/domain/identity"
	"github.com/shopdesk/backend/internal/domain/inventory"
	"github.com/shopdesk/backend/internal/domain/repair"
	"github.com/shopdesk/backend/internal/domain/sales"
	domainshared "github.com/shopdesk/backend/internal/domain/shared"
	"github.com/shopdesk/backend/internal/domain/warranty"
)

// TransactionScope runs a unit of work atomically.
// Every repository handed to fn is bound to the same database transaction, so a
// sale, its stock adjustments, its warranties and the sequence increments that
// numbered them commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a transaction. Returning an error rolls everything back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides transaction-bound access to every aggregate store
type Repositories interface {
	Users() identity.UserRepository
	Roles() identity.RoleRepository
	Products() catalog.ProductRepository
	StockRecords() inventory.StockRecordRepository
	StockAdjustments() inventory.StockAdjustmentRepository
	Sales() sales.SaleRepository
	Returns() sales.ReturnRepository
	RepairJobs() repair.JobRepository
	Warranties() warranty.Repository
	Sequences() domainshared.SequenceGenerator
}

// Ledger builds a stock ledger over the transaction-bound repositories
func Ledger(repos Repositories) *inventory.StockLedger {
	return inventory.NewStockLedger(repos.StockRecords(), repos.StockAdjustments())
}
