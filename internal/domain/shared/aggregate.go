package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot adds optimistic-locking and event collection on top of
// BaseEntity. Domain events accumulate on the aggregate until a service
// publishes them after a successful save.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

// Touch bumps the update timestamp and the optimistic-locking version
func (a *BaseAggregateRoot) Touch() {
	a.UpdatedAt = time.Now()
	a.Version++
}

// AddDomainEvent adds a domain event to be published
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

// GetDomainEvents returns all pending domain events
func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

// ClearDomainEvents clears the pending domain events
func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// NewBaseAggregateRoot creates a new base aggregate root
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity:   NewBaseEntity(),
		Version:      1,
		domainEvents: make([]DomainEvent, 0),
	}
}

// ProjectAggregateRoot extends BaseAggregateRoot with project scoping
// and creator tracking for the audit trail
type ProjectAggregateRoot struct {
	BaseAggregateRoot
	ProjectID uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid;index"`
}

// NewProjectAggregateRoot creates a new project-scoped aggregate root
func NewProjectAggregateRoot(projectID uuid.UUID) ProjectAggregateRoot {
	return ProjectAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		ProjectID:         projectID,
	}
}

// SetCreatedBy sets the creator user ID
func (p *ProjectAggregateRoot) SetCreatedBy(userID uuid.UUID) {
	p.CreatedBy = &userID
}

// GetCreatedBy returns the creator user ID
func (p *ProjectAggregateRoot) GetCreatedBy() *uuid.UUID {
	return p.CreatedBy
}
