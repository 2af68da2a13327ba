package budget

import (
	"time"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBudgetItemRequest represents a request to create a budget item
type CreateBudgetItemRequest struct {
	ProjectID uuid.UUID       `json:"projectId" binding:"required"`
	Category  string          `json:"category" binding:"required,min=1,max=100"`
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Budgeted  decimal.Decimal `json:"budgeted"`
}

// UpdateBudgetItemRequest represents a request to update a budget item
// Reserved and actual are ledger-maintained caches and cannot be set directly
type UpdateBudgetItemRequest struct {
	Name     *string          `json:"name"`
	Budgeted *decimal.Decimal `json:"budgeted"`
}

// BudgetItemResponse represents a budget item in API responses
type BudgetItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProjectID uuid.UUID       `json:"projectId"`
	Category  string          `json:"category"`
	Name      string          `json:"name"`
	Budgeted  decimal.Decimal `json:"budgeted"`
	Reserved  decimal.Decimal `json:"reserved"`
	Actual    decimal.Decimal `json:"actual"`
	Remaining decimal.Decimal `json:"remaining"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// BudgetItemListFilter carries list query options
type BudgetItemListFilter struct {
	ProjectID *uuid.UUID
	Category  *string
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}

// ReplaceCategoriesRequest represents a request to overwrite the category list
type ReplaceCategoriesRequest struct {
	Categories []string `json:"categories" binding:"required"`
}

// ToBudgetItemResponse converts a domain budget item to a response DTO
func ToBudgetItemResponse(item *budget.BudgetItem) BudgetItemResponse {
	return BudgetItemResponse{
		ID:        item.ID,
		ProjectID: item.ProjectID,
		Category:  item.Category,
		Name:      item.Name,
		Budgeted:  item.Budgeted,
		Reserved:  item.Reserved,
		Actual:    item.Actual,
		Remaining: item.Remaining(),
		Version:   item.Version,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// ToBudgetItemResponses converts a slice of domain budget items
func ToBudgetItemResponses(items []*budget.BudgetItem) []BudgetItemResponse {
	responses := make([]BudgetItemResponse, len(items))
	for i, item := range items {
		responses[i] = ToBudgetItemResponse(item)
	}
	return responses
}
