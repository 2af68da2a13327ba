package budget

import (
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetItem represents a budget line for one category of project spend.
// Reserved and Actual are caches over committed documents: Reserved is the
// sum of approved-but-unpaid commitments, Actual the sum of paid amounts.
// Neither may ever go negative.
type BudgetItem struct {
	shared.ProjectAggregateRoot
	Category string          `gorm:"type:varchar(100);not null;index:idx_budget_item_project_category"`
	Name     string          `gorm:"type:varchar(200);not null"`
	Budgeted decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Actual   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (BudgetItem) TableName() string {
	return "budget_items"
}

// NewBudgetItem creates a new budget item
func NewBudgetItem(projectID uuid.UUID, category, name string, budgeted valueobject.Money) (*BudgetItem, error) {
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	if category == "" {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Budget item name cannot be empty")
	}
	if budgeted.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Budgeted amount cannot be negative")
	}

	item := &BudgetItem{
		ProjectAggregateRoot: shared.NewProjectAggregateRoot(projectID),
		Category:             category,
		Name:                 name,
		Budgeted:             budgeted.Amount(),
		Reserved:             decimal.Zero,
		Actual:               decimal.Zero,
	}

	item.AddDomainEvent(NewBudgetItemCreatedEvent(item))

	return item, nil
}

// UpdateBudgeted replaces the budgeted amount
func (b *BudgetItem) UpdateBudgeted(budgeted valueobject.Money) error {
	if budgeted.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Budgeted amount cannot be negative")
	}
	b.Budgeted = budgeted.Amount()
	b.Touch()
	return nil
}

// Rename changes the display name
func (b *BudgetItem) Rename(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Budget item name cannot be empty")
	}
	b.Name = name
	b.Touch()
	return nil
}

// Reserve increases the reserved amount when a document is approved
func (b *BudgetItem) Reserve(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Reserve amount must be positive")
	}
	b.Reserved = b.Reserved.Add(amount)
	b.Touch()
	b.AddDomainEvent(NewBudgetReservedEvent(b, amount))
	return nil
}

// Release decreases the reserved amount, clamping at zero so partial
// replays or rounding drift can never drive the cache negative
func (b *BudgetItem) Release(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Release amount must be positive")
	}
	released := b.Reserved.Sub(amount)
	if released.IsNegative() {
		released = decimal.Zero
	}
	b.Reserved = released
	b.Touch()
	b.AddDomainEvent(NewBudgetReleasedEvent(b, amount))
	return nil
}

// RecordActual increases the actual amount when a payment is marked paid
func (b *BudgetItem) RecordActual(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Actual amount must be positive")
	}
	b.Actual = b.Actual.Add(amount)
	b.Touch()
	b.AddDomainEvent(NewBudgetActualRecordedEvent(b, amount))
	return nil
}

// Remaining returns budgeted minus reserved and actual commitments
func (b *BudgetItem) Remaining() decimal.Decimal {
	return b.Budgeted.Sub(b.Reserved).Sub(b.Actual)
}

// GetBudgetedMoney returns the budgeted amount as Money
func (b *BudgetItem) GetBudgetedMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(b.Budgeted)
}

// GetReservedMoney returns the reserved amount as Money
func (b *BudgetItem) GetReservedMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(b.Reserved)
}

// GetActualMoney returns the actual amount as Money
func (b *BudgetItem) GetActualMoney() valueobject.Money {
	return valueobject.NewMoneyZAR(b.Actual)
}
