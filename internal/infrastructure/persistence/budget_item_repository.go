package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBudgetItemRepository implements budget.BudgetItemRepository using GORM
type GormBudgetItemRepository struct {
	db *gorm.DB
}

// NewGormBudgetItemRepository creates a new GormBudgetItemRepository
func NewGormBudgetItemRepository(db *gorm.DB) *GormBudgetItemRepository {
	return &GormBudgetItemRepository{db: db}
}

// FindByID finds a budget item by its ID
func (r *GormBudgetItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetItem, error) {
	var item budget.BudgetItem
	if err := dbFromContext(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByProjectAndCategory finds the budget item holding a category's totals
func (r *GormBudgetItemRepository) FindByProjectAndCategory(ctx context.Context, projectID uuid.UUID, category string) (*budget.BudgetItem, error) {
	var item budget.BudgetItem
	if err := dbFromContext(ctx, r.db).
		Where("project_id = ? AND category = ?", projectID, category).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindAll finds budget items matching the filter
func (r *GormBudgetItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*budget.BudgetItem, error) {
	var items []*budget.BudgetItem
	query := dbFromContext(ctx, r.db).Model(&budget.BudgetItem{})
	query = r.applyFilter(query, filter)
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Count counts budget items matching the filter
func (r *GormBudgetItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).Model(&budget.BudgetItem{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a budget item
func (r *GormBudgetItemRepository) Save(ctx context.Context, item *budget.BudgetItem) error {
	return dbFromContext(ctx, r.db).Save(item).Error
}

// SaveWithLock saves the item with an optimistic version check. Ledger
// mutations go through this path so racing approvals fail instead of losing
// an update.
func (r *GormBudgetItemRepository) SaveWithLock(ctx context.Context, item *budget.BudgetItem) error {
	// Touch() already advanced the in-memory version
	previousVersion := item.Version - 1
	item.UpdatedAt = time.Now()

	result := dbFromContext(ctx, r.db).Model(&budget.BudgetItem{}).
		Where("id = ? AND version = ?", item.ID, previousVersion).
		Updates(map[string]interface{}{
			"category":   item.Category,
			"name":       item.Name,
			"budgeted":   item.Budgeted,
			"reserved":   item.Reserved,
			"actual":     item.Actual,
			"version":    item.Version,
			"updated_at": item.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError("CONCURRENT_MODIFICATION", "The budget item has been modified by another user")
	}
	return nil
}

// Delete removes a budget item
func (r *GormBudgetItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := dbFromContext(ctx, r.db).Delete(&budget.BudgetItem{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormBudgetItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, BudgetItemSortFields, "category")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBudgetItemRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("category LIKE ? OR name LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "category":
			query = query.Where("category = ?", value)
		}
	}

	return query
}
