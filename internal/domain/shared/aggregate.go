package shared

// AggregateRoot provides version tracking and domain event collection
// for aggregate roots. Version is used for optimistic locking in the
// store; events are drained by the application layer after a save.
type AggregateRoot struct {
	Version      int
	domainEvents []DomainEvent
}

// NewAggregateRoot creates a new aggregate root at version 1
func NewAggregateRoot() AggregateRoot {
	return AggregateRoot{Version: 1}
}

// GetVersion returns the aggregate version for optimistic locking
func (a *AggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion increments the version number
func (a *AggregateRoot) IncrementVersion() {
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *AggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *AggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *AggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
