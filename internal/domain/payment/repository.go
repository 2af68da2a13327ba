package payment

import (
	"context"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the persistence contract for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*Payment, error)
	FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*Payment, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Payment, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error)
	Save(ctx context.Context, pay *Payment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
