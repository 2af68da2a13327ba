package persistence

import (
	"context"
	"errors"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/payment"
	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCategoryRepository implements budget.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListNames returns all category names ordered alphabetically
func (r *GormCategoryRepository) ListNames(ctx context.Context) ([]string, error) {
	var names []string
	if err := dbFromContext(ctx, r.db).Model(&budget.Category{}).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// FindByName finds a category by its name
func (r *GormCategoryRepository) FindByName(ctx context.Context, name string) (*budget.Category, error) {
	var category budget.Category
	if err := dbFromContext(ctx, r.db).First(&category, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Replace overwrites the category list with the given names. Removed names
// must pass the usage check before this is called.
func (r *GormCategoryRepository) Replace(ctx context.Context, names []string) error {
	db := dbFromContext(ctx, r.db)

	var existing []budget.Category
	if err := db.Find(&existing).Error; err != nil {
		return err
	}

	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}

	for _, category := range existing {
		if !keep[category.Name] {
			if err := db.Delete(&budget.Category{}, "id = ?", category.ID).Error; err != nil {
				return err
			}
		}
	}

	known := make(map[string]bool, len(existing))
	for _, category := range existing {
		known[category.Name] = true
	}

	for _, name := range names {
		if known[name] {
			continue
		}
		category, err := budget.NewCategory(name)
		if err != nil {
			return err
		}
		if err := db.Create(category).Error; err != nil {
			return err
		}
	}

	return nil
}

// GormCategoryUsageChecker counts document references to a category across
// purchase orders, vendor invoices, payments and their line items
type GormCategoryUsageChecker struct {
	db *gorm.DB
}

// NewGormCategoryUsageChecker creates a new GormCategoryUsageChecker
func NewGormCategoryUsageChecker(db *gorm.DB) *GormCategoryUsageChecker {
	return &GormCategoryUsageChecker{db: db}
}

// CountReferences returns how many documents still reference the category.
// A nil project ID checks across all projects (category-list maintenance).
func (c *GormCategoryUsageChecker) CountReferences(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	db := dbFromContext(ctx, c.db)
	var total int64

	scoped := func(query *gorm.DB) *gorm.DB {
		query = query.Where("category = ?", category)
		if projectID != uuid.Nil {
			query = query.Where("project_id = ?", projectID)
		}
		return query
	}

	var count int64
	if err := scoped(db.Model(&procurement.PurchaseOrder{})).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := scoped(db.Model(&procurement.VendorInvoice{})).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	if err := scoped(db.Model(&payment.Payment{})).Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	// Line items carry no project column; scope through the parent document
	lineItems := db.Model(&procurement.LineItem{}).Where("category = ?", category)
	if projectID != uuid.Nil {
		lineItems = lineItems.Where(
			"document_id IN (?) OR document_id IN (?)",
			db.Model(&procurement.PurchaseOrder{}).Select("id").Where("project_id = ?", projectID),
			db.Model(&procurement.VendorInvoice{}).Select("id").Where("project_id = ?", projectID),
		)
	}
	if err := lineItems.Count(&count).Error; err != nil {
		return 0, err
	}
	total += count

	return total, nil
}
