package budget

import (
	"context"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BudgetItemRepository defines the persistence contract for budget items
type BudgetItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BudgetItem, error)
	FindByProjectAndCategory(ctx context.Context, projectID uuid.UUID, category string) (*BudgetItem, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*BudgetItem, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, item *BudgetItem) error
	SaveWithLock(ctx context.Context, item *BudgetItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the persistence contract for the category list
type CategoryRepository interface {
	ListNames(ctx context.Context) ([]string, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	Replace(ctx context.Context, names []string) error
}

// CategoryUsageChecker reports how many documents still reference a
// category. Used to enforce the referential delete guard.
type CategoryUsageChecker interface {
	CountReferences(ctx context.Context, projectID uuid.UUID, category string) (int64, error)
}
