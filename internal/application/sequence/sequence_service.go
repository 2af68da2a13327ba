package sequence

import (
	"context"
	"time"

	"github.com/buildledger/backend/internal/domain/sequence"
)

// SequenceResponse represents a number sequence in API responses
type SequenceResponse struct {
	EntityKey string    `json:"entityKey"`
	Counter   int64     `json:"counter"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetSequenceRequest represents a request to set a counter's next value
type SetSequenceRequest struct {
	Counter int64 `json:"counter" binding:"required,min=1"`
}

// SequenceService exposes the per-entity document number counters
type SequenceService struct {
	repo sequence.Repository
}

// NewSequenceService creates a new SequenceService
func NewSequenceService(repo sequence.Repository) *SequenceService {
	return &SequenceService{repo: repo}
}

// List returns all known counters ordered by entity key
func (s *SequenceService) List(ctx context.Context) ([]SequenceResponse, error) {
	sequences, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]SequenceResponse, len(sequences))
	for i, seq := range sequences {
		responses[i] = SequenceResponse{
			EntityKey: seq.EntityKey,
			Counter:   seq.Counter,
			UpdatedAt: seq.UpdatedAt,
		}
	}
	return responses, nil
}

// Peek returns the number the next allocation for the key would produce,
// without consuming it. Unknown keys peek as 1.
func (s *SequenceService) Peek(ctx context.Context, entityKey string) (*SequenceResponse, error) {
	counter, err := s.repo.Peek(ctx, entityKey)
	if err != nil {
		return nil, err
	}
	return &SequenceResponse{EntityKey: entityKey, Counter: counter}, nil
}

// Set overrides the next value the key will allocate
func (s *SequenceService) Set(ctx context.Context, entityKey string, counter int64) (*SequenceResponse, error) {
	seq, err := sequence.NewNumberSequence(entityKey, counter)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Set(ctx, seq.EntityKey, seq.Counter); err != nil {
		return nil, err
	}
	return &SequenceResponse{EntityKey: entityKey, Counter: counter}, nil
}

// Next atomically consumes and returns the next number for the key
func (s *SequenceService) Next(ctx context.Context, entityKey string) (int64, error) {
	return s.repo.Next(ctx, entityKey)
}
