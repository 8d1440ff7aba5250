// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Mappers convert between domain entities and persistence models
// 4. Owned children (sale items, claims, repair parts) are separate tables keyed by their parent
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - identity.go: users, roles, role permissions, user roles, permission overrides
// - catalog.go: products
// - inventory.go: stock records and the adjustment ledger
// - sales.go: sales, sale items, payments, returns, return items
// - repair.go: repair jobs and consumed parts
// - warranty.go: warranties and claims
// - sequence.go: per-day document number counters
package models
