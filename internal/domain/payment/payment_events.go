package payment

import (
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypePayment = "Payment"

// Event type constants
const (
	EventTypePaymentCreated = "PaymentCreated"
	EventTypePaymentPaid    = "PaymentPaid"
)

// PaymentCreatedEvent is raised when a new payment is allocated
type PaymentCreatedEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	DocumentNumber string          `json:"document_number"`
	Type           PaymentType     `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
}

// NewPaymentCreatedEvent creates a new PaymentCreatedEvent
func NewPaymentCreatedEvent(pay *Payment) *PaymentCreatedEvent {
	return &PaymentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCreated, AggregateTypePayment, pay.ID, pay.ProjectID),
		PaymentID:       pay.ID,
		DocumentNumber:  pay.DocumentNumber,
		Type:            pay.Type,
		Amount:          pay.Amount,
	}
}

// EventType returns the event type name
func (e *PaymentCreatedEvent) EventType() string {
	return EventTypePaymentCreated
}

// PaymentPaidEvent is raised when a payment is finalized. The budget ledger
// records the payment's category amounts as actuals in response.
type PaymentPaidEvent struct {
	shared.BaseDomainEvent
	PaymentID      uuid.UUID       `json:"payment_id"`
	DocumentNumber string          `json:"document_number"`
	Amount         decimal.Decimal `json:"amount"`
	DocumentID     *uuid.UUID      `json:"document_id,omitempty"`
	DocumentKind   DocumentKind    `json:"document_kind,omitempty"`
}

// NewPaymentPaidEvent creates a new PaymentPaidEvent
func NewPaymentPaidEvent(pay *Payment) *PaymentPaidEvent {
	return &PaymentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentPaid, AggregateTypePayment, pay.ID, pay.ProjectID),
		PaymentID:       pay.ID,
		DocumentNumber:  pay.DocumentNumber,
		Amount:          pay.Amount,
		DocumentID:      pay.DocumentID,
		DocumentKind:    pay.DocumentKind,
	}
}

// EventType returns the event type name
func (e *PaymentPaidEvent) EventType() string {
	return EventTypePaymentPaid
}
