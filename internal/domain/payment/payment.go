package payment

import (
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentStatusDraft           PaymentStatus = "draft"
	PaymentStatusPendingApproval PaymentStatus = "pending_approval"
	PaymentStatusApproved        PaymentStatus = "approved"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusRejected        PaymentStatus = "rejected"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusDraft, PaymentStatusPendingApproval, PaymentStatusApproved,
		PaymentStatusPaid, PaymentStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case PaymentStatusDraft:
		return target == PaymentStatusPendingApproval
	case PaymentStatusPendingApproval:
		return target == PaymentStatusApproved || target == PaymentStatusRejected
	case PaymentStatusApproved:
		return target == PaymentStatusPaid
	case PaymentStatusPaid, PaymentStatusRejected:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusRejected
}

// PaymentType distinguishes money going out from money coming in
type PaymentType string

const (
	PaymentTypePayment PaymentType = "payment"
	PaymentTypeReceipt PaymentType = "receipt"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypePayment || t == PaymentTypeReceipt
}

// String returns the string representation of PaymentType
func (t PaymentType) String() string {
	return string(t)
}

// DocumentKind identifies what a payment is linked to
type DocumentKind string

const (
	DocumentKindPurchaseOrder DocumentKind = "purchase_order"
	DocumentKindVendorInvoice DocumentKind = "vendor_invoice"
)

// LineItemPayment is one line's share of a payment, frozen at allocation time
type LineItemPayment struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineItemID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description    string          `gorm:"type:varchar(500);not null"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Category       string          `gorm:"type:varchar(100)"`
	AllocationType AllocationType  `gorm:"type:varchar(20);not null"`
	PaymentValue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PreviouslyPaid decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt      time.Time
}

// TableName returns the table name for GORM
func (LineItemPayment) TableName() string {
	return "line_item_payments"
}

// Remaining returns the line's unpaid balance at allocation time
func (p LineItemPayment) Remaining() decimal.Decimal {
	remaining := p.LineTotal.Sub(p.PreviouslyPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Payment represents a payment aggregate root. Its line-item breakdown may be
// reallocated while the payment is in draft; once submitted, only the approval
// workflow advances it.
type Payment struct {
	shared.ProjectAggregateRoot
	DocumentNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	Type           PaymentType              `gorm:"type:varchar(20);not null"`
	DocumentKind   DocumentKind             `gorm:"type:varchar(20)"`
	DocumentID     *uuid.UUID               `gorm:"type:uuid;index"`
	Category       string                   `gorm:"type:varchar(100)"`
	VATTreatment   valueobject.VATTreatment `gorm:"type:varchar(20);not null"`
	Subtotal       decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	VAT            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Amount         decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Lines          []LineItemPayment        `gorm:"foreignKey:PaymentID;references:ID"`
	Status         PaymentStatus            `gorm:"type:varchar(20);not null;default:'draft';index"`

	SubmittedBy  *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt  *time.Time
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectedBy   *uuid.UUID `gorm:"type:uuid"`
	RejectedAt   *time.Time
	RejectReason string     `gorm:"type:varchar(500)"`
	PaidBy       *uuid.UUID `gorm:"type:uuid"`
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment in draft status from a computed allocation.
// The allocation must already be clamped and non-zero.
func NewPayment(projectID uuid.UUID, documentNumber string, paymentType PaymentType, kind DocumentKind, documentID *uuid.UUID, category string, treatment valueobject.VATTreatment, result AllocationResult) (*Payment, error) {
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TYPE", "Payment type must be payment or receipt")
	}
	if !treatment.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TREATMENT", "VAT treatment is not valid")
	}
	if len(result.Allocations) == 0 || !result.AllocatedTotal().IsPositive() {
		return nil, shared.NewDomainError("NOTHING_TO_PAY", "Total allocated amount must be greater than zero")
	}

	pay := &Payment{
		ProjectAggregateRoot: shared.NewProjectAggregateRoot(projectID),
		DocumentNumber:       documentNumber,
		Type:                 paymentType,
		DocumentKind:         kind,
		DocumentID:           documentID,
		Category:             category,
		VATTreatment:         treatment,
		Subtotal:             result.Breakdown.Subtotal,
		VAT:                  result.Breakdown.VAT,
		Amount:               result.Breakdown.Total,
		Status:               PaymentStatusDraft,
	}

	pay.Lines = make([]LineItemPayment, 0, len(result.Allocations))
	now := time.Now()
	for _, alloc := range result.Allocations {
		if alloc.PaymentAmount.IsZero() {
			continue
		}
		pay.Lines = append(pay.Lines, LineItemPayment{
			ID:             uuid.New(),
			PaymentID:      pay.ID,
			LineItemID:     alloc.Line.LineItemID,
			Description:    alloc.Line.Description,
			Quantity:       alloc.Line.Quantity,
			UnitPrice:      alloc.Line.UnitPrice,
			LineTotal:      alloc.Line.LineTotal,
			Category:       alloc.Line.Category,
			AllocationType: alloc.Type,
			PaymentValue:   alloc.Value,
			PreviouslyPaid: alloc.Line.PreviouslyPaid,
			PaymentAmount:  alloc.PaymentAmount,
			CreatedAt:      now,
		})
	}

	pay.AddDomainEvent(NewPaymentCreatedEvent(pay))

	return pay, nil
}

// Reallocate replaces the line-item breakdown of a draft payment with a
// freshly computed allocation. The allocation must already be clamped and
// non-zero, the same as at creation.
func (p *Payment) Reallocate(category string, result AllocationResult) error {
	if !p.IsDraft() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reallocate payment in %s status", p.Status))
	}
	if len(result.Allocations) == 0 || !result.AllocatedTotal().IsPositive() {
		return shared.NewDomainError("NOTHING_TO_PAY", "Total allocated amount must be greater than zero")
	}

	p.Category = category
	p.Subtotal = result.Breakdown.Subtotal
	p.VAT = result.Breakdown.VAT
	p.Amount = result.Breakdown.Total

	p.Lines = make([]LineItemPayment, 0, len(result.Allocations))
	now := time.Now()
	for _, alloc := range result.Allocations {
		if alloc.PaymentAmount.IsZero() {
			continue
		}
		p.Lines = append(p.Lines, LineItemPayment{
			ID:             uuid.New(),
			PaymentID:      p.ID,
			LineItemID:     alloc.Line.LineItemID,
			Description:    alloc.Line.Description,
			Quantity:       alloc.Line.Quantity,
			UnitPrice:      alloc.Line.UnitPrice,
			LineTotal:      alloc.Line.LineTotal,
			Category:       alloc.Line.Category,
			AllocationType: alloc.Type,
			PaymentValue:   alloc.Value,
			PreviouslyPaid: alloc.Line.PreviouslyPaid,
			PaymentAmount:  alloc.PaymentAmount,
			CreatedAt:      now,
		})
	}
	p.Touch()

	return nil
}

// Submit moves the payment from draft to pending approval
func (p *Payment) Submit(submittedBy uuid.UUID) error {
	if !p.Status.CanTransitionTo(PaymentStatusPendingApproval) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit payment in %s status", p.Status))
	}
	if submittedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}

	now := time.Now()
	p.Status = PaymentStatusPendingApproval
	p.SubmittedBy = &submittedBy
	p.SubmittedAt = &now
	p.Touch()

	return nil
}

// Approve moves the payment from pending approval to approved.
// The originating actor may not approve their own payment.
func (p *Payment) Approve(approvedBy uuid.UUID) error {
	if !p.Status.CanTransitionTo(PaymentStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve payment in %s status", p.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}
	if p.CreatedBy != nil && *p.CreatedBy == approvedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot approve your own payment")
	}

	now := time.Now()
	p.Status = PaymentStatusApproved
	p.ApprovedBy = &approvedBy
	p.ApprovedAt = &now
	p.Touch()

	return nil
}

// Reject moves the payment from pending approval to the terminal rejected state
func (p *Payment) Reject(rejectedBy uuid.UUID, reason string) error {
	if !p.Status.CanTransitionTo(PaymentStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject payment in %s status", p.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if p.CreatedBy != nil && *p.CreatedBy == rejectedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot reject your own payment")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	p.Status = PaymentStatusRejected
	p.RejectedBy = &rejectedBy
	p.RejectedAt = &now
	p.RejectReason = reason
	p.Touch()

	return nil
}

// MarkPaid finalizes the payment. The caller records the ledger actuals and
// advances any linked document in the same transaction.
func (p *Payment) MarkPaid(paidBy uuid.UUID) error {
	if !p.Status.CanTransitionTo(PaymentStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark payment paid in %s status", p.Status))
	}
	if paidBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Paying user ID is required")
	}

	now := time.Now()
	p.Status = PaymentStatusPaid
	p.PaidBy = &paidBy
	p.PaidAt = &now
	p.Touch()

	p.AddDomainEvent(NewPaymentPaidEvent(p))

	return nil
}

// CategoryAmounts distributes the payment amounts across every distinct
// category present among its lines, falling back to the payment-level
// category for lines without one.
func (p *Payment) CategoryAmounts() map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal)
	for _, line := range p.Lines {
		category := line.Category
		if category == "" {
			category = p.Category
		}
		if category == "" {
			continue
		}
		amounts[category] = amounts[category].Add(line.PaymentAmount)
	}
	return amounts
}

// AllocatedTotal returns the sum of the per-line payment amounts
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range p.Lines {
		total = total.Add(line.PaymentAmount)
	}
	return total
}

// IsPaid returns true if the payment has been finalized
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

// IsDraft returns true if the payment is still editable
func (p *Payment) IsDraft() bool {
	return p.Status == PaymentStatusDraft
}
