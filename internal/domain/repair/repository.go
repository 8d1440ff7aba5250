package repair

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// JobFilter narrows job listings
type JobFilter struct {
	shared.Filter
	Status     Status
	AssignedTo *uuid.UUID
}

// JobRepository persists repair jobs with their owned parts
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Job, error)
	FindByNumber(ctx context.Context, number string) (*Job, error)
	FindAll(ctx context.Context, filter JobFilter) ([]*Job, int64, error)

	// Save inserts a new job or updates an existing one with a version check,
	// replacing its part lines
	Save(ctx context.Context, job *Job) error
}
