package procurement

import (
	"context"
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/sequence"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// purchaseOrderSequenceKey is the per-entity counter used for document numbers
const purchaseOrderSequenceKey = "purchase_order"

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	orderRepo      procurement.PurchaseOrderRepository
	sequences      sequence.Repository
	ledger         *budget.Ledger
	tx             shared.Transactor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orderRepo procurement.PurchaseOrderRepository,
	sequences sequence.Repository,
	ledger *budget.Ledger,
	tx shared.Transactor,
	logger *zap.Logger,
) *PurchaseOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		sequences: sequences,
		ledger:    ledger,
		tx:        tx,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new purchase order in draft with a generated document number
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	treatment := valueobject.VATTreatment(req.VATTreatment)
	if !treatment.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TREATMENT", fmt.Sprintf("Unknown VAT treatment: %s", req.VATTreatment))
	}

	number, err := s.nextDocumentNumber(ctx)
	if err != nil {
		return nil, err
	}

	order, err := procurement.NewPurchaseOrder(req.ProjectID, number, req.VendorName, req.Category, treatment)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		order.SetCreatedBy(*req.CreatedBy)
	}

	for _, input := range req.Items {
		if _, err := order.AddItem(input.Description, input.Quantity, valueobject.NewMoneyZAR(input.UnitPrice), input.Category); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter DocumentListFilter) ([]PurchaseOrderResponse, int64, error) {
	domainFilter := buildDocumentFilter(filter)

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPurchaseOrderResponses(orders), total, nil
}

// Update replaces mutable fields of a draft purchase order
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft purchase orders can be updated")
	}

	if req.VendorName != nil {
		order.VendorName = *req.VendorName
		order.Touch()
	}
	if req.Category != nil {
		order.Category = *req.Category
		order.Touch()
	}
	if req.VATTreatment != nil {
		treatment := valueobject.VATTreatment(*req.VATTreatment)
		if err := order.SetVATTreatment(treatment); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		if err := replaceOrderItems(order, *req.Items); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Delete removes a draft purchase order
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !order.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft purchase orders can be deleted")
	}
	return s.orderRepo.Delete(ctx, id)
}

// Submit moves a draft purchase order to pending approval
func (s *PurchaseOrderService) Submit(ctx context.Context, id uuid.UUID, submittedBy uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Submit(submittedBy); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Approve approves a pending purchase order and reserves its category
// amounts against the project's budget. The status write and the budget
// reservation commit together or not at all.
func (s *PurchaseOrderService) Approve(ctx context.Context, id uuid.UUID, approvedBy uuid.UUID) (*PurchaseOrderResponse, error) {
	var order *procurement.PurchaseOrder
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := order.Approve(approvedBy); err != nil {
			return err
		}
		if err := s.orderRepo.Save(ctx, order); err != nil {
			return err
		}
		return s.ledger.Reserve(ctx, order.ProjectID, order.CategoryAmounts(), budget.DirectionReserve)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Reject rejects a pending purchase order with a mandatory reason.
// Rejection happens before approval, so no budget reservation exists to undo.
func (s *PurchaseOrderService) Reject(ctx context.Context, id uuid.UUID, rejectedBy uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := order.Reject(rejectedBy, reason); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Issue marks an approved purchase order as issued to the vendor
func (s *PurchaseOrderService) Issue(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, id, func(order *procurement.PurchaseOrder) error {
		return order.MarkIssued()
	})
}

// Receive marks an issued or approved purchase order as received
func (s *PurchaseOrderService) Receive(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, id, func(order *procurement.PurchaseOrder) error {
		return order.MarkReceived()
	})
}

// RequestModification flags an approved purchase order for rework
func (s *PurchaseOrderService) RequestModification(ctx context.Context, id uuid.UUID, requestedBy uuid.UUID, note string) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, id, func(order *procurement.PurchaseOrder) error {
		return order.RequestModification(requestedBy, note)
	})
}

// ResolveModification clears the modification flag on a purchase order
func (s *PurchaseOrderService) ResolveModification(ctx context.Context, id uuid.UUID, resolvedBy uuid.UUID) (*PurchaseOrderResponse, error) {
	return s.mutate(ctx, id, func(order *procurement.PurchaseOrder) error {
		return order.ResolveModification(resolvedBy)
	})
}

// mutate loads a purchase order, applies fn and persists the result
func (s *PurchaseOrderService) mutate(ctx context.Context, id uuid.UUID, fn func(order *procurement.PurchaseOrder) error) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, order)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

func (s *PurchaseOrderService) nextDocumentNumber(ctx context.Context) (string, error) {
	n, err := s.sequences.Next(ctx, purchaseOrderSequenceKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%d-%05d", time.Now().Year(), n), nil
}

// publishEvents best-effort publishes domain events after the state change
// has been persisted. A publish failure does not fail the operation.
func (s *PurchaseOrderService) publishEvents(ctx context.Context, order *procurement.PurchaseOrder) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish purchase order events",
			zap.String("document_number", order.DocumentNumber),
			zap.Error(err))
	}
	order.ClearDomainEvents()
}

// replaceOrderItems swaps a draft order's line items for the given inputs
func replaceOrderItems(order *procurement.PurchaseOrder, inputs []LineItemInput) error {
	existing := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		existing[i] = item.ID
	}
	for _, itemID := range existing {
		if err := order.RemoveItem(itemID); err != nil {
			return err
		}
	}
	for _, input := range inputs {
		if _, err := order.AddItem(input.Description, input.Quantity, valueobject.NewMoneyZAR(input.UnitPrice), input.Category); err != nil {
			return err
		}
	}
	return nil
}

// buildDocumentFilter converts the API-level filter into a repository filter
func buildDocumentFilter(filter DocumentListFilter) shared.Filter {
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
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.Category != nil {
		domainFilter.Filters["category"] = *filter.Category
	}
	return domainFilter
}
