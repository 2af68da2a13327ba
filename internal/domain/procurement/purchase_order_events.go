package procurement

import (
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePurchaseOrder = "PurchaseOrder"

// Event type constants
const (
	EventTypePurchaseOrderCreated   = "PurchaseOrderCreated"
	EventTypePurchaseOrderSubmitted = "PurchaseOrderSubmitted"
	EventTypePurchaseOrderApproved  = "PurchaseOrderApproved"
	EventTypePurchaseOrderRejected  = "PurchaseOrderRejected"
	EventTypePurchaseOrderPaid      = "PurchaseOrderPaid"
)

// PurchaseOrderCreatedEvent is raised when a new purchase order is created
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	DocumentNumber string    `json:"document_number"`
	VendorName     string    `json:"vendor_name"`
}

// NewPurchaseOrderCreatedEvent creates a new PurchaseOrderCreatedEvent
func NewPurchaseOrderCreatedEvent(order *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, AggregateTypePurchaseOrder, order.ID, order.ProjectID),
		OrderID:         order.ID,
		DocumentNumber:  order.DocumentNumber,
		VendorName:      order.VendorName,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderCreatedEvent) EventType() string {
	return EventTypePurchaseOrderCreated
}

// PurchaseOrderSubmittedEvent is raised when an order is submitted for approval
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	SubmittedBy    uuid.UUID       `json:"submitted_by"`
	SubmittedAt    time.Time       `json:"submitted_at"`
}

// NewPurchaseOrderSubmittedEvent creates a new PurchaseOrderSubmittedEvent
func NewPurchaseOrderSubmittedEvent(order *PurchaseOrder) *PurchaseOrderSubmittedEvent {
	event := &PurchaseOrderSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, AggregateTypePurchaseOrder, order.ID, order.ProjectID),
		OrderID:         order.ID,
		DocumentNumber:  order.DocumentNumber,
		Total:           order.Total,
	}
	if order.SubmittedBy != nil {
		event.SubmittedBy = *order.SubmittedBy
	}
	if order.SubmittedAt != nil {
		event.SubmittedAt = *order.SubmittedAt
	}
	return event
}

// EventType returns the event type name
func (e *PurchaseOrderSubmittedEvent) EventType() string {
	return EventTypePurchaseOrderSubmitted
}

// PurchaseOrderApprovedEvent is raised when an order is approved. The budget
// ledger reserves the order's category amounts in response.
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	ApprovedBy     uuid.UUID       `json:"approved_by"`
	ApprovedAt     time.Time       `json:"approved_at"`
}

// NewPurchaseOrderApprovedEvent creates a new PurchaseOrderApprovedEvent
func NewPurchaseOrderApprovedEvent(order *PurchaseOrder) *PurchaseOrderApprovedEvent {
	event := &PurchaseOrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderApproved, AggregateTypePurchaseOrder, order.ID, order.ProjectID),
		OrderID:         order.ID,
		DocumentNumber:  order.DocumentNumber,
		Total:           order.Total,
	}
	if order.ApprovedBy != nil {
		event.ApprovedBy = *order.ApprovedBy
	}
	if order.ApprovedAt != nil {
		event.ApprovedAt = *order.ApprovedAt
	}
	return event
}

// EventType returns the event type name
func (e *PurchaseOrderApprovedEvent) EventType() string {
	return EventTypePurchaseOrderApproved
}

// PurchaseOrderRejectedEvent is raised when an order is rejected
type PurchaseOrderRejectedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID `json:"order_id"`
	DocumentNumber string    `json:"document_number"`
	RejectedBy     uuid.UUID `json:"rejected_by"`
	Reason         string    `json:"reason"`
}

// NewPurchaseOrderRejectedEvent creates a new PurchaseOrderRejectedEvent
func NewPurchaseOrderRejectedEvent(order *PurchaseOrder) *PurchaseOrderRejectedEvent {
	event := &PurchaseOrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRejected, AggregateTypePurchaseOrder, order.ID, order.ProjectID),
		OrderID:         order.ID,
		DocumentNumber:  order.DocumentNumber,
		Reason:          order.RejectReason,
	}
	if order.RejectedBy != nil {
		event.RejectedBy = *order.RejectedBy
	}
	return event
}

// EventType returns the event type name
func (e *PurchaseOrderRejectedEvent) EventType() string {
	return EventTypePurchaseOrderRejected
}

// PurchaseOrderPaidEvent is raised when an order becomes fully paid
type PurchaseOrderPaidEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	DocumentNumber string          `json:"document_number"`
	Total          decimal.Decimal `json:"total"`
	PaidTotal      decimal.Decimal `json:"paid_total"`
}

// NewPurchaseOrderPaidEvent creates a new PurchaseOrderPaidEvent
func NewPurchaseOrderPaidEvent(order *PurchaseOrder) *PurchaseOrderPaidEvent {
	return &PurchaseOrderPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderPaid, AggregateTypePurchaseOrder, order.ID, order.ProjectID),
		OrderID:         order.ID,
		DocumentNumber:  order.DocumentNumber,
		Total:           order.Total,
		PaidTotal:       order.PaidTotal,
	}
}

// EventType returns the event type name
func (e *PurchaseOrderPaidEvent) EventType() string {
	return EventTypePurchaseOrderPaid
}
