package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/budget"
	"github.com/buildledger/backend/internal/domain/payment"
	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/sequence"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const paymentSequenceKey = "payment"

// documentContext is the payable view of a purchase order or vendor invoice
type documentContext struct {
	projectID uuid.UUID
	category  string
	treatment valueobject.VATTreatment
	lines     []payment.DocumentLine
}

// PaymentService handles payment business operations
type PaymentService struct {
	paymentRepo    payment.PaymentRepository
	orderRepo      procurement.PurchaseOrderRepository
	invoiceRepo    procurement.VendorInvoiceRepository
	sequences      sequence.Repository
	ledger         *budget.Ledger
	tx             shared.Transactor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo payment.PaymentRepository,
	orderRepo procurement.PurchaseOrderRepository,
	invoiceRepo procurement.VendorInvoiceRepository,
	sequences sequence.Repository,
	ledger *budget.Ledger,
	tx shared.Transactor,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		sequences:   sequences,
		ledger:      ledger,
		tx:          tx,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Preview computes the clamped per-line amounts and VAT breakdown a payment
// would carry, without persisting anything.
func (s *PaymentService) Preview(ctx context.Context, req AllocationPreviewRequest) (*AllocationPreviewResponse, error) {
	kind, err := parseDocumentKind(req.DocumentKind)
	if err != nil {
		return nil, err
	}
	doc, err := s.loadDocumentContext(ctx, kind, req.DocumentID)
	if err != nil {
		return nil, err
	}
	requests, err := toAllocationRequests(req.Allocations)
	if err != nil {
		return nil, err
	}

	result, err := payment.Allocate(doc.lines, requests, doc.treatment)
	if err != nil {
		return nil, err
	}

	previews := make([]AllocationLinePreview, len(result.Allocations))
	for i, alloc := range result.Allocations {
		previews[i] = AllocationLinePreview{
			LineItemID:     alloc.Line.LineItemID,
			Description:    alloc.Line.Description,
			LineTotal:      alloc.Line.LineTotal,
			PreviouslyPaid: alloc.Line.PreviouslyPaid,
			Remaining:      alloc.Line.Remaining(),
			Type:           alloc.Type.String(),
			Value:          alloc.Value,
			PaymentAmount:  alloc.PaymentAmount,
		}
	}
	return &AllocationPreviewResponse{
		Lines:    previews,
		Subtotal: result.Breakdown.Subtotal,
		VAT:      result.Breakdown.VAT,
		Total:    result.Breakdown.Total,
	}, nil
}

// Create creates a draft payment against a purchase order or vendor invoice
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*PaymentResponse, error) {
	paymentType := payment.PaymentType(req.Type)
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", fmt.Sprintf("Unknown payment type: %s", req.Type))
	}
	kind, err := parseDocumentKind(req.DocumentKind)
	if err != nil {
		return nil, err
	}
	doc, err := s.loadDocumentContext(ctx, kind, req.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.projectID != req.ProjectID {
		return nil, shared.NewDomainError("PROJECT_MISMATCH", "Payment project does not match the referenced document")
	}
	requests, err := toAllocationRequests(req.Allocations)
	if err != nil {
		return nil, err
	}

	result, err := payment.Allocate(doc.lines, requests, doc.treatment)
	if err != nil {
		return nil, err
	}

	number, err := s.nextDocumentNumber(ctx)
	if err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = doc.category
	}

	documentID := req.DocumentID
	pay, err := payment.NewPayment(req.ProjectID, number, paymentType, kind, &documentID, category, doc.treatment, result)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		pay.SetCreatedBy(*req.CreatedBy)
	}

	if err := s.paymentRepo.Save(ctx, pay); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, pay)

	response := ToPaymentResponse(pay)
	return &response, nil
}

// Update replaces a draft payment's allocation. The clamped amounts are
// recomputed against the referenced document's current paid state.
func (s *PaymentService) Update(ctx context.Context, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	pay, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !pay.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft payments can be updated")
	}
	if pay.DocumentID == nil {
		return nil, shared.NewDomainError("INVALID_STATE", "Payment has no linked document")
	}

	doc, err := s.loadDocumentContext(ctx, pay.DocumentKind, *pay.DocumentID)
	if err != nil {
		return nil, err
	}
	requests, err := toAllocationRequests(req.Allocations)
	if err != nil {
		return nil, err
	}

	result, err := payment.Allocate(doc.lines, requests, doc.treatment)
	if err != nil {
		return nil, err
	}

	category := pay.Category
	if req.Category != nil {
		category = *req.Category
	}
	if category == "" {
		category = doc.category
	}

	if err := pay.Reallocate(category, result); err != nil {
		return nil, err
	}

	if err := s.paymentRepo.Save(ctx, pay); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, pay)

	response := ToPaymentResponse(pay)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	pay, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(pay)
	return &response, nil
}

// List retrieves payments with filtering and pagination
func (s *PaymentService) List(ctx context.Context, filter PaymentListFilter) ([]PaymentResponse, int64, error) {
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
	if filter.Type != nil {
		domainFilter.Filters["type"] = *filter.Type
	}
	if filter.DocumentID != nil {
		domainFilter.Filters["document_id"] = *filter.DocumentID
	}

	payments, err := s.paymentRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.paymentRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToPaymentResponses(payments), total, nil
}

// Delete removes a draft payment
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	pay, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !pay.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft payments can be deleted")
	}
	return s.paymentRepo.Delete(ctx, id)
}

// Submit moves a draft payment to pending approval
func (s *PaymentService) Submit(ctx context.Context, id uuid.UUID, submittedBy uuid.UUID) (*PaymentResponse, error) {
	return s.mutate(ctx, id, func(pay *payment.Payment) error {
		return pay.Submit(submittedBy)
	})
}

// Approve approves a pending payment
func (s *PaymentService) Approve(ctx context.Context, id uuid.UUID, approvedBy uuid.UUID) (*PaymentResponse, error) {
	return s.mutate(ctx, id, func(pay *payment.Payment) error {
		return pay.Approve(approvedBy)
	})
}

// Reject rejects a pending payment with a mandatory reason
func (s *PaymentService) Reject(ctx context.Context, id uuid.UUID, rejectedBy uuid.UUID, reason string) (*PaymentResponse, error) {
	return s.mutate(ctx, id, func(pay *payment.Payment) error {
		return pay.Reject(rejectedBy, reason)
	})
}

// MarkPaid settles an approved payment. For outgoing payments the budget
// actuals and the linked document's paid total move in the same transaction
// as the status write.
func (s *PaymentService) MarkPaid(ctx context.Context, id uuid.UUID, paidBy uuid.UUID) (*PaymentResponse, error) {
	var pay *payment.Payment
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		var err error
		pay, err = s.paymentRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := pay.MarkPaid(paidBy); err != nil {
			return err
		}
		if err := s.paymentRepo.Save(ctx, pay); err != nil {
			return err
		}
		if pay.Type != payment.PaymentTypePayment {
			return nil
		}
		if err := s.ledger.RecordActual(ctx, pay.ProjectID, pay.CategoryAmounts()); err != nil {
			return err
		}
		return s.applyToDocument(ctx, pay)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, pay)

	response := ToPaymentResponse(pay)
	return &response, nil
}

// applyToDocument rolls a settled payment's amount into the linked document
func (s *PaymentService) applyToDocument(ctx context.Context, pay *payment.Payment) error {
	if pay.DocumentID == nil {
		return nil
	}
	switch pay.DocumentKind {
	case payment.DocumentKindPurchaseOrder:
		order, err := s.orderRepo.FindByID(ctx, *pay.DocumentID)
		if err != nil {
			return err
		}
		if err := order.ApplyPayment(pay.Amount); err != nil {
			return err
		}
		return s.orderRepo.Save(ctx, order)
	case payment.DocumentKindVendorInvoice:
		invoice, err := s.invoiceRepo.FindByID(ctx, *pay.DocumentID)
		if err != nil {
			return err
		}
		if err := invoice.ApplyPayment(pay.Amount); err != nil {
			return err
		}
		return s.invoiceRepo.Save(ctx, invoice)
	}
	return nil
}

// mutate loads a payment, applies fn and persists the result
func (s *PaymentService) mutate(ctx context.Context, id uuid.UUID, fn func(pay *payment.Payment) error) (*PaymentResponse, error) {
	pay, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(pay); err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Save(ctx, pay); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, pay)

	response := ToPaymentResponse(pay)
	return &response, nil
}

// loadDocumentContext builds the payable line view of the referenced
// document. Previously paid amounts come from replaying the settled
// outgoing payments already recorded against it.
func (s *PaymentService) loadDocumentContext(ctx context.Context, kind payment.DocumentKind, documentID uuid.UUID) (*documentContext, error) {
	var (
		doc   documentContext
		items []procurement.LineItem
	)

	switch kind {
	case payment.DocumentKindPurchaseOrder:
		order, err := s.orderRepo.FindByID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if !order.Status.CanAcceptPayment() {
			return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Purchase order in status %s cannot accept payments", order.Status))
		}
		doc = documentContext{projectID: order.ProjectID, category: order.Category, treatment: order.VATTreatment}
		items = order.Items
	case payment.DocumentKindVendorInvoice:
		invoice, err := s.invoiceRepo.FindByID(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if !invoice.Status.CanAcceptPayment() {
			return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Vendor invoice in status %s cannot accept payments", invoice.Status))
		}
		doc = documentContext{projectID: invoice.ProjectID, category: invoice.Category, treatment: invoice.VATTreatment}
		items = invoice.Items
	}

	previouslyPaid, err := s.previouslyPaidByLine(ctx, documentID)
	if err != nil {
		return nil, err
	}

	doc.lines = make([]payment.DocumentLine, len(items))
	for i, item := range items {
		doc.lines[i] = payment.DocumentLine{
			LineItemID:     item.ID,
			Description:    item.Description,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			LineTotal:      item.Total,
			Category:       item.Category,
			PreviouslyPaid: previouslyPaid[item.ID],
		}
	}
	return &doc, nil
}

// previouslyPaidByLine sums settled outgoing payment lines per line item
func (s *PaymentService) previouslyPaidByLine(ctx context.Context, documentID uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	payments, err := s.paymentRepo.FindByDocumentID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	paid := make(map[uuid.UUID]decimal.Decimal)
	for _, prior := range payments {
		if prior.Status != payment.PaymentStatusPaid || prior.Type != payment.PaymentTypePayment {
			continue
		}
		for _, line := range prior.Lines {
			paid[line.LineItemID] = paid[line.LineItemID].Add(line.PaymentAmount)
		}
	}
	return paid, nil
}

func (s *PaymentService) nextDocumentNumber(ctx context.Context) (string, error) {
	n, err := s.sequences.Next(ctx, paymentSequenceKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("PAY-%d-%05d", time.Now().Year(), n), nil
}

func (s *PaymentService) publishEvents(ctx context.Context, pay *payment.Payment) {
	if s.eventPublisher == nil {
		return
	}
	events := pay.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish payment events",
			zap.String("document_number", pay.DocumentNumber),
			zap.Error(err))
	}
	pay.ClearDomainEvents()
}

func toAllocationRequests(inputs []AllocationInput) ([]payment.AllocationRequest, error) {
	requests := make([]payment.AllocationRequest, len(inputs))
	for i, input := range inputs {
		allocType := payment.AllocationType(input.Type)
		if !allocType.IsValid() {
			return nil, shared.NewDomainError("INVALID_ALLOCATION_TYPE", fmt.Sprintf("Unknown allocation type: %s", input.Type))
		}
		requests[i] = payment.AllocationRequest{
			LineItemID: input.LineItemID,
			Type:       allocType,
			Value:      input.Value,
		}
	}
	return requests, nil
}

func parseDocumentKind(kind string) (payment.DocumentKind, error) {
	switch payment.DocumentKind(kind) {
	case payment.DocumentKindPurchaseOrder:
		return payment.DocumentKindPurchaseOrder, nil
	case payment.DocumentKindVendorInvoice:
		return payment.DocumentKindVendorInvoice, nil
	}
	return "", shared.NewDomainError("INVALID_DOCUMENT_KIND", fmt.Sprintf("Unknown document kind: %s", kind))
}
