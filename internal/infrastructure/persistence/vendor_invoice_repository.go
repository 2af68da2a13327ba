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

// GormVendorInvoiceRepository implements procurement.VendorInvoiceRepository using GORM
type GormVendorInvoiceRepository struct {
	db *gorm.DB
}

// NewGormVendorInvoiceRepository creates a new GormVendorInvoiceRepository
func NewGormVendorInvoiceRepository(db *gorm.DB) *GormVendorInvoiceRepository {
	return &GormVendorInvoiceRepository{db: db}
}

// FindByID finds a vendor invoice by its ID
func (r *GormVendorInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.VendorInvoice, error) {
	var invoice procurement.VendorInvoice
	if err := dbFromContext(ctx, r.db).
		Preload("Items").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByDocumentNumber finds a vendor invoice by its document number
func (r *GormVendorInvoiceRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*procurement.VendorInvoice, error) {
	var invoice procurement.VendorInvoice
	if err := dbFromContext(ctx, r.db).
		Preload("Items").
		Where("document_number = ?", documentNumber).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByPurchaseOrderID finds invoices billing a purchase order
func (r *GormVendorInvoiceRepository) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) ([]*procurement.VendorInvoice, error) {
	var invoices []*procurement.VendorInvoice
	if err := dbFromContext(ctx, r.db).
		Preload("Items").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at DESC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// FindAll finds vendor invoices matching the filter
func (r *GormVendorInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.VendorInvoice, error) {
	var invoices []*procurement.VendorInvoice
	query := dbFromContext(ctx, r.db).Model(&procurement.VendorInvoice{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Items").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Count counts vendor invoices matching the filter
func (r *GormVendorInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).Model(&procurement.VendorInvoice{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts invoices in a project referencing a category at the
// document level
func (r *GormVendorInvoiceRepository) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).Model(&procurement.VendorInvoice{}).
		Where("project_id = ? AND category = ?", projectID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a vendor invoice and synchronizes its line items
func (r *GormVendorInvoiceRepository) Save(ctx context.Context, invoice *procurement.VendorInvoice) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(invoice).Error; err != nil {
			return err
		}
		return syncLineItems(tx, invoice.ID, invoice.Items)
	})
}

// Delete removes a vendor invoice and its line items
func (r *GormVendorInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", id).
			Delete(&procurement.LineItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&procurement.VendorInvoice{}, "id = ?", id)
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
func (r *GormVendorInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
func (r *GormVendorInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
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
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
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
