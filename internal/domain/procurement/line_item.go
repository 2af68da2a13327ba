package procurement

import (
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem represents one priced row of a purchase order or vendor invoice.
// Category optionally overrides the document-level budget category.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Category    string          `gorm:"type:varchar(100)"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "line_items"
}

// NewLineItem creates a new line item with Total = Quantity * UnitPrice
func NewLineItem(documentID uuid.UUID, description string, quantity decimal.Decimal, unitPrice valueobject.Money, category string) (*LineItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Line item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &LineItem{
		ID:          uuid.New(),
		DocumentID:  documentID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount(),
		Total:       quantity.Mul(unitPrice.Amount()),
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update replaces quantity and unit price and recalculates the total
func (i *LineItem) Update(quantity decimal.Decimal, unitPrice valueobject.Money) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	i.Quantity = quantity
	i.UnitPrice = unitPrice.Amount()
	i.Total = quantity.Mul(unitPrice.Amount())
	i.UpdatedAt = time.Now()
	return nil
}

// SetCategory sets the category override for this line
func (i *LineItem) SetCategory(category string) {
	i.Category = category
	i.UpdatedAt = time.Now()
}

// GetTotalMoney returns the line total as Money
func (i *LineItem) GetTotalMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(i.Total)
}
