package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements procurement.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := dbFromContext(ctx, r.db).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByDocumentNumber finds a purchase order by its document number
func (r *GormPurchaseOrderRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := dbFromContext(ctx, r.db).
		Preload("Items").
		Where("document_number = ?", documentNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.PurchaseOrder, error) {
	var orders []*procurement.PurchaseOrder
	query := dbFromContext(ctx, r.db).Model(&procurement.PurchaseOrder{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).Model(&procurement.PurchaseOrder{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts orders in a project referencing a category at the
// document level
func (r *GormPurchaseOrderRepository) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).Model(&procurement.PurchaseOrder{}).
		Where("project_id = ? AND category = ?", projectID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a purchase order and synchronizes its line items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return syncLineItems(tx, order.ID, order.Items)
	})
}

// Delete removes a purchase order and its line items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).
			Delete(&procurement.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&procurement.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, DocumentSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPurchaseOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("document_number LIKE ? OR vendor_name LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "statuses":
			if statuses, ok := value.([]string); ok && len(statuses) > 0 {
				query = query.Where("status IN ?", statuses)
			}
		case "category":
			query = query.Where("category = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// syncLineItems deletes removed lines and upserts the current ones
func syncLineItems(tx *gorm.DB, documentID uuid.UUID, items []procurement.LineItem) error {
	currentIDs := make([]uuid.UUID, len(items))
	for i, item := range items {
		currentIDs[i] = item.ID
	}

	if len(currentIDs) > 0 {
		if err := tx.Where("document_id = ? AND id NOT IN ?", documentID, currentIDs).
			Delete(&procurement.LineItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("document_id = ?", documentID).
			Delete(&procurement.LineItem{}).Error; err != nil {
			return err
		}
	}

	for i := range items {
		items[i].DocumentID = documentID
		if err := tx.Save(&items[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
