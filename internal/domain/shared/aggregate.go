package shared

// BaseAggregateRoot provides common fields for aggregate roots.
// Version backs optimistic locking: repositories update WHERE version equals the
// version the aggregate was loaded with, however many mutations happened since.
type BaseAggregateRoot struct {
	BaseEntity
	Version          int
	persistedVersion int
	domainEvents     []DomainEvent
}

// GetVersion returns the aggregate version for optimistic locking
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number and touches UpdatedAt
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
	a.Touch()
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// PullDomainEvents returns pending events and clears them
func (a *BaseAggregateRoot) PullDomainEvents() []DomainEvent {
	events := a.domainEvents
	a.domainEvents = nil
	return events
}

// IsNew reports whether the aggregate has never been stored
func (a *BaseAggregateRoot) IsNew() bool {
	return a.persistedVersion == 0
}

// PersistedVersion returns the version last read from or written to storage
func (a *BaseAggregateRoot) PersistedVersion() int {
	return a.persistedVersion
}

// MarkPersisted records that the current version is now stored
func (a *BaseAggregateRoot) MarkPersisted() {
	a.persistedVersion = a.Version
}

// RestoreAggregateRoot rebuilds the base of an aggregate loaded from storage
func RestoreAggregateRoot(entity BaseEntity, version int) BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:       entity,
		Version:          version,
		persistedVersion: version,
		domainEvents:     make([]DomainEvent, 0),
	}
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}
