package budget

import (
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBudgetItem = "BudgetItem"

// Event type constants
const (
	EventTypeBudgetItemCreated      = "BudgetItemCreated"
	EventTypeBudgetReserved         = "BudgetReserved"
	EventTypeBudgetReleased         = "BudgetReleased"
	EventTypeBudgetActualRecorded   = "BudgetActualRecorded"
)

// BudgetItemCreatedEvent is raised when a new budget item is created
type BudgetItemCreatedEvent struct {
	shared.BaseDomainEvent
	BudgetItemID uuid.UUID       `json:"budget_item_id"`
	Category     string          `json:"category"`
	Name         string          `json:"name"`
	Budgeted     decimal.Decimal `json:"budgeted"`
}

// NewBudgetItemCreatedEvent creates a new BudgetItemCreatedEvent
func NewBudgetItemCreatedEvent(item *BudgetItem) *BudgetItemCreatedEvent {
	return &BudgetItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetItemCreated, AggregateTypeBudgetItem, item.ID, item.ProjectID),
		BudgetItemID:    item.ID,
		Category:        item.Category,
		Name:            item.Name,
		Budgeted:        item.Budgeted,
	}
}

// BudgetReservedEvent is raised when an approval reserves budget in a category
type BudgetReservedEvent struct {
	shared.BaseDomainEvent
	BudgetItemID uuid.UUID       `json:"budget_item_id"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Reserved     decimal.Decimal `json:"reserved"`
}

// NewBudgetReservedEvent creates a new BudgetReservedEvent
func NewBudgetReservedEvent(item *BudgetItem, amount decimal.Decimal) *BudgetReservedEvent {
	return &BudgetReservedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetReserved, AggregateTypeBudgetItem, item.ID, item.ProjectID),
		BudgetItemID:    item.ID,
		Category:        item.Category,
		Amount:          amount,
		Reserved:        item.Reserved,
	}
}

// BudgetReleasedEvent is raised when a reservation is released
type BudgetReleasedEvent struct {
	shared.BaseDomainEvent
	BudgetItemID uuid.UUID       `json:"budget_item_id"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Reserved     decimal.Decimal `json:"reserved"`
}

// NewBudgetReleasedEvent creates a new BudgetReleasedEvent
func NewBudgetReleasedEvent(item *BudgetItem, amount decimal.Decimal) *BudgetReleasedEvent {
	return &BudgetReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetReleased, AggregateTypeBudgetItem, item.ID, item.ProjectID),
		BudgetItemID:    item.ID,
		Category:        item.Category,
		Amount:          amount,
		Reserved:        item.Reserved,
	}
}

// BudgetActualRecordedEvent is raised when a payment moves spend from reserved to actual
type BudgetActualRecordedEvent struct {
	shared.BaseDomainEvent
	BudgetItemID uuid.UUID       `json:"budget_item_id"`
	Category     string          `json:"category"`
	Amount       decimal.Decimal `json:"amount"`
	Actual       decimal.Decimal `json:"actual"`
}

// NewBudgetActualRecordedEvent creates a new BudgetActualRecordedEvent
func NewBudgetActualRecordedEvent(item *BudgetItem, amount decimal.Decimal) *BudgetActualRecordedEvent {
	return &BudgetActualRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBudgetActualRecorded, AggregateTypeBudgetItem, item.ID, item.ProjectID),
		BudgetItemID:    item.ID,
		Category:        item.Category,
		Amount:          amount,
		Actual:          item.Actual,
	}
}
