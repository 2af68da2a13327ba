package procurement

import (
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeVendorInvoice = "VendorInvoice"

// Event type constants
const (
	EventTypeVendorInvoiceCreated   = "VendorInvoiceCreated"
	EventTypeVendorInvoiceSubmitted = "VendorInvoiceSubmitted"
	EventTypeVendorInvoiceApproved  = "VendorInvoiceApproved"
	EventTypeVendorInvoiceRejected  = "VendorInvoiceRejected"
	EventTypeVendorInvoicePaid      = "VendorInvoicePaid"
)

// VendorInvoiceCreatedEvent is raised when a new vendor invoice is created
type VendorInvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	DocumentNumber string    `json:"document_number"`
	VendorName     string    `json:"vendor_name"`
}

// NewVendorInvoiceCreatedEvent creates a new VendorInvoiceCreatedEvent
func NewVendorInvoiceCreatedEvent(invoice *VendorInvoice) *VendorInvoiceCreatedEvent {
	return &VendorInvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceCreated, AggregateTypeVendorInvoice, invoice.ID, invoice.ProjectID),
		InvoiceID:       invoice.ID,
		DocumentNumber:  invoice.DocumentNumber,
		VendorName:      invoice.VendorName,
	}
}

// EventType returns the event type name
func (e *VendorInvoiceCreatedEvent) EventType() string {
	return EventTypeVendorInvoiceCreated
}

// VendorInvoiceSubmittedEvent is raised when an invoice is submitted for approval
type VendorInvoiceSubmittedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	SubmittedBy    uuid.UUID       `json:"submitted_by"`
}

// NewVendorInvoiceSubmittedEvent creates a new VendorInvoiceSubmittedEvent
func NewVendorInvoiceSubmittedEvent(invoice *VendorInvoice) *VendorInvoiceSubmittedEvent {
	event := &VendorInvoiceSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceSubmitted, AggregateTypeVendorInvoice, invoice.ID, invoice.ProjectID),
		InvoiceID:       invoice.ID,
		DocumentNumber:  invoice.DocumentNumber,
		Total:           invoice.Total,
	}
	if invoice.SubmittedBy != nil {
		event.SubmittedBy = *invoice.SubmittedBy
	}
	return event
}

// EventType returns the event type name
func (e *VendorInvoiceSubmittedEvent) EventType() string {
	return EventTypeVendorInvoiceSubmitted
}

// VendorInvoiceApprovedEvent is raised when an invoice is approved. The
// budget ledger reserves the invoice's category amounts in response.
type VendorInvoiceApprovedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
}

// NewVendorInvoiceApprovedEvent creates a new VendorInvoiceApprovedEvent
func NewVendorInvoiceApprovedEvent(invoice *VendorInvoice) *VendorInvoiceApprovedEvent {
	event := &VendorInvoiceApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceApproved, AggregateTypeVendorInvoice, invoice.ID, invoice.ProjectID),
		InvoiceID:       invoice.ID,
		DocumentNumber:  invoice.DocumentNumber,
		Total:           invoice.Total,
	}
	if invoice.ApprovedBy != nil {
		event.ApprovedBy = *invoice.ApprovedBy
	}
	return event
}

// EventType returns the event type name
func (e *VendorInvoiceApprovedEvent) EventType() string {
	return EventTypeVendorInvoiceApproved
}

// VendorInvoiceRejectedEvent is raised when an invoice is rejected
type VendorInvoiceRejectedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	DocumentNumber string    `json:"document_number"`
	RejectedBy     uuid.UUID `json:"rejected_by"`
	Reason         string    `json:"reason"`
}

// NewVendorInvoiceRejectedEvent creates a new VendorInvoiceRejectedEvent
func NewVendorInvoiceRejectedEvent(invoice *VendorInvoice) *VendorInvoiceRejectedEvent {
	event := &VendorInvoiceRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoiceRejected, AggregateTypeVendorInvoice, invoice.ID, invoice.ProjectID),
		InvoiceID:       invoice.ID,
		DocumentNumber:  invoice.DocumentNumber,
		Reason:          invoice.RejectReason,
	}
	if invoice.RejectedBy != nil {
		event.RejectedBy = *invoice.RejectedBy
	}
	return event
}

// EventType returns the event type name
func (e *VendorInvoiceRejectedEvent) EventType() string {
	return EventTypeVendorInvoiceRejected
}

// VendorInvoicePaidEvent is raised when an invoice becomes fully paid
type VendorInvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	PaidTotal      decimal.Decimal `json:"paid_total"`
}

// NewVendorInvoicePaidEvent creates a new VendorInvoicePaidEvent
func NewVendorInvoicePaidEvent(invoice *VendorInvoice) *VendorInvoicePaidEvent {
	return &VendorInvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVendorInvoicePaid, AggregateTypeVendorInvoice, invoice.ID, invoice.ProjectID),
		InvoiceID:       invoice.ID,
		DocumentNumber:  invoice.DocumentNumber,
		Total:           invoice.Total,
		PaidTotal:       invoice.PaidTotal,
	}
}

// EventType returns the event type name
func (e *VendorInvoicePaidEvent) EventType() string {
	return EventTypeVendorInvoicePaid
}
