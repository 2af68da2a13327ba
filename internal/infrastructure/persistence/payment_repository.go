package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/buildledger/backend/internal/domain/payment"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	var pay payment.Payment
	if err := dbFromContext(ctx, r.db).
		Preload("Lines").
		First(&pay, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// FindByDocumentNumber finds a payment by its document number
func (r *GormPaymentRepository) FindByDocumentNumber(ctx context.Context, documentNumber string) (*payment.Payment, error) {
	var pay payment.Payment
	if err := dbFromContext(ctx, r.db).
		Preload("Lines").
		Where("document_number = ?", documentNumber).
		First(&pay).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &pay, nil
}

// FindByDocumentID finds payments linked to a purchase order or invoice.
// Used to replay per-line paid sums when allocating a new payment.
func (r *GormPaymentRepository) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	if err := dbFromContext(ctx, r.db).
		Preload("Lines").
		Where("document_id = ?", documentID).
		Order("created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// FindAll finds payments matching the filter
func (r *GormPaymentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	query := dbFromContext(ctx, r.db).Model(&payment.Payment{})
	query = r.applyFilter(query, filter)
	if err := query.Preload("Lines").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// Count counts payments matching the filter
func (r *GormPaymentRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := dbFromContext(ctx, r.db).Model(&payment.Payment{})
	query = r.applyFilterWithoutPagination(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByCategory counts payments in a project referencing a category at the
// payment level
func (r *GormPaymentRepository) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	var count int64
	if err := dbFromContext(ctx, r.db).Model(&payment.Payment{}).
		Where("project_id = ? AND category = ?", projectID, category).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a payment and synchronizes its line breakdown
func (r *GormPaymentRepository) Save(ctx context.Context, pay *payment.Payment) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(pay).Error; err != nil {
			return err
		}

		currentIDs := make([]uuid.UUID, len(pay.Lines))
		for i, line := range pay.Lines {
			currentIDs[i] = line.ID
		}

		if len(currentIDs) > 0 {
			if err := tx.Where("payment_id = ? AND id NOT IN ?", pay.ID, currentIDs).
				Delete(&payment.LineItemPayment{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("payment_id = ?", pay.ID).
				Delete(&payment.LineItemPayment{}).Error; err != nil {
				return err
			}
		}

		for i := range pay.Lines {
			pay.Lines[i].PaymentID = pay.ID
			if err := tx.Save(&pay.Lines[i]).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// Delete removes a payment and its line breakdown
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return dbFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("payment_id = ?", id).
			Delete(&payment.LineItemPayment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&payment.Payment{}, "id = ?", id)
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
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	sortField := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	query = query.Order(sortField + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormPaymentRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("document_number LIKE ?", pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "type":
			query = query.Where("type = ?", value)
		case "document_id":
			query = query.Where("document_id = ?", value)
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
