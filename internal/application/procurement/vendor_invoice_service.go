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

const vendorInvoiceSequenceKey = "vendor_invoice"

// VendorInvoiceService handles vendor invoice business operations
type VendorInvoiceService struct {
	invoiceRepo    procurement.VendorInvoiceRepository
	orderRepo      procurement.PurchaseOrderRepository
	sequences      sequence.Repository
	ledger         *budget.Ledger
	tx             shared.Transactor
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewVendorInvoiceService creates a new VendorInvoiceService
func NewVendorInvoiceService(
	invoiceRepo procurement.VendorInvoiceRepository,
	orderRepo procurement.PurchaseOrderRepository,
	sequences sequence.Repository,
	ledger *budget.Ledger,
	tx shared.Transactor,
	logger *zap.Logger,
) *VendorInvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VendorInvoiceService{
		invoiceRepo: invoiceRepo,
		orderRepo:   orderRepo,
		sequences:   sequences,
		ledger:      ledger,
		tx:          tx,
		logger:      logger,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *VendorInvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new vendor invoice in draft with a generated document number
func (s *VendorInvoiceService) Create(ctx context.Context, req CreateVendorInvoiceRequest) (*VendorInvoiceResponse, error) {
	treatment := valueobject.VATTreatment(req.VATTreatment)
	if !treatment.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TREATMENT", fmt.Sprintf("Unknown VAT treatment: %s", req.VATTreatment))
	}

	if req.PurchaseOrderID != nil {
		if _, err := s.orderRepo.FindByID(ctx, *req.PurchaseOrderID); err != nil {
			return nil, err
		}
	}

	number, err := s.nextDocumentNumber(ctx)
	if err != nil {
		return nil, err
	}

	invoice, err := procurement.NewVendorInvoice(req.ProjectID, number, req.VendorName, req.Category, req.PurchaseOrderID, treatment)
	if err != nil {
		return nil, err
	}
	if req.CreatedBy != nil {
		invoice.SetCreatedBy(*req.CreatedBy)
	}

	for _, input := range req.Items {
		if _, err := invoice.AddItem(input.Description, input.Quantity, valueobject.NewMoneyZAR(input.UnitPrice), input.Category); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

// GetByID retrieves a vendor invoice by ID
func (s *VendorInvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*VendorInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

// ListByPurchaseOrder retrieves the invoices raised against a purchase order
func (s *VendorInvoiceService) ListByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]VendorInvoiceResponse, error) {
	invoices, err := s.invoiceRepo.FindByPurchaseOrderID(ctx, purchaseOrderID)
	if err != nil {
		return nil, err
	}
	return ToVendorInvoiceResponses(invoices), nil
}

// List retrieves vendor invoices with filtering and pagination
func (s *VendorInvoiceService) List(ctx context.Context, filter DocumentListFilter) ([]VendorInvoiceResponse, int64, error) {
	domainFilter := buildDocumentFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToVendorInvoiceResponses(invoices), total, nil
}

// Update replaces mutable fields of a draft vendor invoice
func (s *VendorInvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateVendorInvoiceRequest) (*VendorInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !invoice.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only draft vendor invoices can be updated")
	}

	if req.VendorName != nil {
		invoice.VendorName = *req.VendorName
		invoice.Touch()
	}
	if req.Category != nil {
		invoice.Category = *req.Category
		invoice.Touch()
	}
	if req.VATTreatment != nil {
		if err := invoice.SetVATTreatment(valueobject.VATTreatment(*req.VATTreatment)); err != nil {
			return nil, err
		}
	}
	if req.Items != nil {
		if err := replaceInvoiceItems(invoice, *req.Items); err != nil {
			return nil, err
		}
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}

	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

// Delete removes a draft vendor invoice
func (s *VendorInvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", "Only draft vendor invoices can be deleted")
	}
	return s.invoiceRepo.Delete(ctx, id)
}

// Submit moves a draft vendor invoice to pending approval
func (s *VendorInvoiceService) Submit(ctx context.Context, id uuid.UUID, submittedBy uuid.UUID) (*VendorInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Submit(submittedBy); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

// Approve approves a pending vendor invoice and reserves its category
// amounts against the project's budget, atomically with the status write.
func (s *VendorInvoiceService) Approve(ctx context.Context, id uuid.UUID, approvedBy uuid.UUID) (*VendorInvoiceResponse, error) {
	var invoice *procurement.VendorInvoice
	err := s.tx.Transact(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = s.invoiceRepo.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := invoice.Approve(approvedBy); err != nil {
			return err
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			return err
		}
		return s.ledger.Reserve(ctx, invoice.ProjectID, invoice.CategoryAmounts(), budget.DirectionReserve)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)

	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

// Reject rejects a pending vendor invoice with a mandatory reason
func (s *VendorInvoiceService) Reject(ctx context.Context, id uuid.UUID, rejectedBy uuid.UUID, reason string) (*VendorInvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := invoice.Reject(rejectedBy, reason); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, invoice)

	response := ToVendorInvoiceResponse(invoice)
	return &response, nil
}

func (s *VendorInvoiceService) nextDocumentNumber(ctx context.Context) (string, error) {
	n, err := s.sequences.Next(ctx, vendorInvoiceSequenceKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%05d", time.Now().Year(), n), nil
}

func (s *VendorInvoiceService) publishEvents(ctx context.Context, invoice *procurement.VendorInvoice) {
	if s.eventPublisher == nil {
		return
	}
	events := invoice.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish vendor invoice events",
			zap.String("document_number", invoice.DocumentNumber),
			zap.Error(err))
	}
	invoice.ClearDomainEvents()
}

func replaceInvoiceItems(invoice *procurement.VendorInvoice, inputs []LineItemInput) error {
	existing := make([]uuid.UUID, len(invoice.Items))
	for i, item := range invoice.Items {
		existing[i] = item.ID
	}
	for _, itemID := range existing {
		if err := invoice.RemoveItem(itemID); err != nil {
			return err
		}
	}
	for _, input := range inputs {
		if _, err := invoice.AddItem(input.Description, input.Quantity, valueobject.NewMoneyZAR(input.UnitPrice), input.Category); err != nil {
			return err
		}
	}
	return nil
}
