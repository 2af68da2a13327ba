package budget

import (
	"context"
	"errors"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BudgetItemService handles budget item business operations
type BudgetItemService struct {
	itemRepo       budget.BudgetItemRepository
	usageChecker   budget.CategoryUsageChecker
	eventPublisher shared.EventPublisher
}

// NewBudgetItemService creates a new BudgetItemService
func NewBudgetItemService(itemRepo budget.BudgetItemRepository, usageChecker budget.CategoryUsageChecker) *BudgetItemService {
	return &BudgetItemService{
		itemRepo:     itemRepo,
		usageChecker: usageChecker,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BudgetItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new budget item
func (s *BudgetItemService) Create(ctx context.Context, req CreateBudgetItemRequest) (*BudgetItemResponse, error) {
	existing, err := s.itemRepo.FindByProjectAndCategory(ctx, req.ProjectID, req.Category)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A budget item for this category already exists in the project")
	}

	item, err := budget.NewBudgetItem(req.ProjectID, req.Category, req.Name, valueobject.NewMoneyZAR(req.Budgeted))
	if err != nil {
		return nil, err
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, item)

	response := ToBudgetItemResponse(item)
	return &response, nil
}

// GetByID retrieves a budget item by ID
func (s *BudgetItemService) GetByID(ctx context.Context, id uuid.UUID) (*BudgetItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToBudgetItemResponse(item)
	return &response, nil
}

// List retrieves budget items with filtering and pagination
func (s *BudgetItemService) List(ctx context.Context, filter BudgetItemListFilter) ([]BudgetItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.Filter{
		Page:      filter.Page,
		PageSize:  filter.PageSize,
		OrderBy:   filter.OrderBy,
		OrderDir:  filter.OrderDir,
		Search:    filter.Search,
		ProjectID: filter.ProjectID,
		Filters:   make(map[string]interface{}),
	}
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}

	items, err := s.itemRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.itemRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToBudgetItemResponses(items), total, nil
}

// Update updates a budget item's name or budgeted amount
func (s *BudgetItemService) Update(ctx context.Context, id uuid.UUID, req UpdateBudgetItemRequest) (*BudgetItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := item.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Budgeted != nil {
		if err := item.UpdateBudgeted(valueobject.NewMoneyZAR(*req.Budgeted)); err != nil {
			return nil, err
		}
	}

	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	response := ToBudgetItemResponse(item)
	return &response, nil
}

// Delete removes a budget item. Blocked while any purchase order, invoice or
// payment still references the item's category.
func (s *BudgetItemService) Delete(ctx context.Context, id uuid.UUID) error {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	references, err := s.usageChecker.CountReferences(ctx, item.ProjectID, item.Category)
	if err != nil {
		return err
	}
	if references > 0 {
		return shared.NewDomainError("REFERENCE_CONFLICT",
			"Cannot delete budget item: category \""+item.Category+"\" is still referenced by existing documents")
	}

	return s.itemRepo.Delete(ctx, id)
}

// publishEvents publishes pending domain events, best effort
func (s *BudgetItemService) publishEvents(ctx context.Context, item *budget.BudgetItem) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, item.GetDomainEvents()...)
	item.ClearDomainEvents()
}
