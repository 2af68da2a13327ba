// Package sequence issues per-entity document numbers. Counters are
// strictly increasing with no gaps under serialized access; the storage
// implementation must make the read-then-increment atomic.
package sequence

import (
	"context"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
)

// NumberSequence is one per-entity counter row. Counter holds the next
// value to be issued; an absent row behaves as Counter=1.
type NumberSequence struct {
	EntityKey string `gorm:"type:varchar(100);primaryKey"`
	Counter   int64  `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (NumberSequence) TableName() string {
	return "number_sequences"
}

// NewNumberSequence creates a sequence starting at the given counter
func NewNumberSequence(entityKey string, counter int64) (*NumberSequence, error) {
	if entityKey == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY_KEY", "Entity key cannot be empty")
	}
	if counter < 1 {
		return nil, shared.NewDomainError("INVALID_COUNTER", "Counter must be at least 1")
	}
	now := time.Now()
	return &NumberSequence{
		EntityKey: entityKey,
		Counter:   counter,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Repository defines the persistence contract for number sequences.
// Next must be atomic with respect to concurrent callers on the same key.
type Repository interface {
	// Next issues the current counter value for the key and persists
	// counter+1. An absent key yields 1 and leaves the row at 2.
	Next(ctx context.Context, entityKey string) (int64, error)
	// Peek returns the current counter without mutating it. An absent key
	// yields 1 and inserts nothing.
	Peek(ctx context.Context, entityKey string) (int64, error)
	// Set overwrites the counter for the key, creating the row if needed
	Set(ctx context.Context, entityKey string, counter int64) error
	// List returns all known sequences ordered by entity key
	List(ctx context.Context) ([]*NumberSequence, error)
}
