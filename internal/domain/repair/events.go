package repair

import (
	"github.com/google/uuid"
	"github.com/shopdesk/backend/internal/domain/shared"
)

// AggregateTypeRepairJob names the repair job in events
const AggregateTypeRepairJob = "RepairJob"

// EventTypeRepairStatusChanged is raised on intake and every state transition
const EventTypeRepairStatusChanged = "RepairStatusChanged"

// StatusChangedEvent carries a repair transition; From is empty on intake
type StatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID     uuid.UUID `json:"job_id"`
	JobNumber string    `json:"job_number"`
	From      Status    `json:"from,omitempty"`
	To        Status    `json:"to"`
}

// NewStatusChangedEvent creates a StatusChangedEvent
func NewStatusChangedEvent(j *Job, from Status) *StatusChangedEvent {
	return &StatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRepairStatusChanged, AggregateTypeRepairJob, j.ID),
		JobID:           j.ID,
		JobNumber:       j.JobNumber,
		From:            from,
		To:              j.Status,
	}
}
