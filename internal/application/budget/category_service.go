package budget

import (
	"context"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CategoryService maintains the budget category list
type CategoryService struct {
	categoryRepo budget.CategoryRepository
	usageChecker budget.CategoryUsageChecker
	itemRepo     budget.BudgetItemRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo budget.CategoryRepository, usageChecker budget.CategoryUsageChecker, itemRepo budget.BudgetItemRepository) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		usageChecker: usageChecker,
		itemRepo:     itemRepo,
	}
}

// List returns all category names
func (s *CategoryService) List(ctx context.Context) ([]string, error) {
	return s.categoryRepo.ListNames(ctx)
}

// Replace overwrites the category list. Names being removed are rejected
// while any document or budget item still references them.
func (s *CategoryService) Replace(ctx context.Context, req ReplaceCategoriesRequest) ([]string, error) {
	current, err := s.categoryRepo.ListNames(ctx)
	if err != nil {
		return nil, err
	}

	keep := make(map[string]bool, len(req.Categories))
	for _, name := range req.Categories {
		if name == "" {
			return nil, shared.NewDomainError("INVALID_CATEGORY", "Category name cannot be empty")
		}
		keep[name] = true
	}

	for _, name := range current {
		if keep[name] {
			continue
		}
		references, err := s.usageChecker.CountReferences(ctx, uuid.Nil, name)
		if err != nil {
			return nil, err
		}
		items, err := s.itemRepo.Count(ctx, shared.Filter{
			Filters: map[string]interface{}{"category": name},
		})
		if err != nil {
			return nil, err
		}
		if references > 0 || items > 0 {
			return nil, shared.NewDomainError("REFERENCE_CONFLICT",
				"Cannot remove category \""+name+"\": it is still referenced by existing documents or budget items")
		}
	}

	if err := s.categoryRepo.Replace(ctx, req.Categories); err != nil {
		return nil, err
	}

	return s.categoryRepo.ListNames(ctx)
}
