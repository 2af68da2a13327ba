package payment

import (
	"time"

	"github.com/buildledger/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AllocationInput selects how much of one line a payment covers
type AllocationInput struct {
	LineItemID uuid.UUID       `json:"lineItemId" binding:"required"`
	Type       string          `json:"type" binding:"required"`
	Value      decimal.Decimal `json:"value"`
}

// AllocationPreviewRequest asks for the clamped amounts a payment would carry
type AllocationPreviewRequest struct {
	DocumentKind string            `json:"documentKind" binding:"required"`
	DocumentID   uuid.UUID         `json:"documentId" binding:"required"`
	Allocations  []AllocationInput `json:"allocations" binding:"required"`
}

// AllocationLinePreview is one line of a preview response
type AllocationLinePreview struct {
	LineItemID     uuid.UUID       `json:"lineItemId"`
	Description    string          `json:"description"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	PreviouslyPaid decimal.Decimal `json:"previouslyPaid"`
	Remaining      decimal.Decimal `json:"remaining"`
	Type           string          `json:"type"`
	Value          decimal.Decimal `json:"value"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
}

// AllocationPreviewResponse is the computed outcome of an allocation request
type AllocationPreviewResponse struct {
	Lines    []AllocationLinePreview `json:"lines"`
	Subtotal decimal.Decimal         `json:"subtotal"`
	VAT      decimal.Decimal         `json:"vat"`
	Total    decimal.Decimal         `json:"total"`
}

// CreatePaymentRequest represents a request to create a payment against a document
type CreatePaymentRequest struct {
	ProjectID    uuid.UUID         `json:"projectId" binding:"required"`
	Type         string            `json:"type" binding:"required"`
	DocumentKind string            `json:"documentKind" binding:"required"`
	DocumentID   uuid.UUID         `json:"documentId" binding:"required"`
	Category     string            `json:"category"`
	Allocations  []AllocationInput `json:"allocations" binding:"required"`
	CreatedBy    *uuid.UUID        `json:"-"`
}

// UpdatePaymentRequest replaces the allocation of a draft payment
type UpdatePaymentRequest struct {
	Category    *string           `json:"category"`
	Allocations []AllocationInput `json:"allocations" binding:"required"`
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// LineItemPaymentResponse represents a payment line in API responses
type LineItemPaymentResponse struct {
	ID             uuid.UUID       `json:"id"`
	LineItemID     uuid.UUID       `json:"lineItemId"`
	Description    string          `json:"description"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	LineTotal      decimal.Decimal `json:"lineTotal"`
	Category       string          `json:"category,omitempty"`
	AllocationType string          `json:"allocationType"`
	PaymentValue   decimal.Decimal `json:"paymentValue"`
	PreviouslyPaid decimal.Decimal `json:"previouslyPaid"`
	PaymentAmount  decimal.Decimal `json:"paymentAmount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID             uuid.UUID                 `json:"id"`
	ProjectID      uuid.UUID                 `json:"projectId"`
	DocumentNumber string                    `json:"documentNumber"`
	Type           string                    `json:"type"`
	DocumentKind   string                    `json:"documentKind,omitempty"`
	DocumentID     *uuid.UUID                `json:"documentId,omitempty"`
	Category       string                    `json:"category,omitempty"`
	VATTreatment   string                    `json:"vatTreatment"`
	Subtotal       decimal.Decimal           `json:"subtotal"`
	VAT            decimal.Decimal           `json:"vat"`
	Amount         decimal.Decimal           `json:"amount"`
	Lines          []LineItemPaymentResponse `json:"lines"`
	Status         string                    `json:"status"`

	SubmittedBy  *uuid.UUID `json:"submittedBy,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy   *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RejectedBy   *uuid.UUID `json:"rejectedBy,omitempty"`
	RejectedAt   *time.Time `json:"rejectedAt,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`
	PaidBy       *uuid.UUID `json:"paidBy,omitempty"`
	PaidAt       *time.Time `json:"paidAt,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PaymentListFilter carries list query options for payments
type PaymentListFilter struct {
	ProjectID  *uuid.UUID
	Status     *string
	Type       *string
	DocumentID *uuid.UUID
	Search     string
	Page       int
	PageSize   int
	OrderBy    string
	OrderDir   string
}

// ToPaymentResponse converts a domain payment to a response DTO
func ToPaymentResponse(pay *payment.Payment) PaymentResponse {
	lines := make([]LineItemPaymentResponse, len(pay.Lines))
	for i, line := range pay.Lines {
		lines[i] = LineItemPaymentResponse{
			ID:             line.ID,
			LineItemID:     line.LineItemID,
			Description:    line.Description,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			LineTotal:      line.LineTotal,
			Category:       line.Category,
			AllocationType: line.AllocationType.String(),
			PaymentValue:   line.PaymentValue,
			PreviouslyPaid: line.PreviouslyPaid,
			PaymentAmount:  line.PaymentAmount,
		}
	}
	return PaymentResponse{
		ID:             pay.ID,
		ProjectID:      pay.ProjectID,
		DocumentNumber: pay.DocumentNumber,
		Type:           pay.Type.String(),
		DocumentKind:   string(pay.DocumentKind),
		DocumentID:     pay.DocumentID,
		Category:       pay.Category,
		VATTreatment:   pay.VATTreatment.String(),
		Subtotal:       pay.Subtotal,
		VAT:            pay.VAT,
		Amount:         pay.Amount,
		Lines:          lines,
		Status:         pay.Status.String(),

		SubmittedBy:  pay.SubmittedBy,
		SubmittedAt:  pay.SubmittedAt,
		ApprovedBy:   pay.ApprovedBy,
		ApprovedAt:   pay.ApprovedAt,
		RejectedBy:   pay.RejectedBy,
		RejectedAt:   pay.RejectedAt,
		RejectReason: pay.RejectReason,
		PaidBy:       pay.PaidBy,
		PaidAt:       pay.PaidAt,

		Version:   pay.Version,
		CreatedAt: pay.CreatedAt,
		UpdatedAt: pay.UpdatedAt,
	}
}

// ToPaymentResponses converts a slice of domain payments
func ToPaymentResponses(payments []*payment.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i, pay := range payments {
		responses[i] = ToPaymentResponse(pay)
	}
	return responses
}
