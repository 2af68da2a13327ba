package procurement

import (
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VendorInvoiceStatus represents the status of a vendor invoice
type VendorInvoiceStatus string

const (
	VendorInvoiceStatusDraft           VendorInvoiceStatus = "draft"
	VendorInvoiceStatusPendingApproval VendorInvoiceStatus = "pending_approval"
	VendorInvoiceStatusApproved        VendorInvoiceStatus = "approved"
	VendorInvoiceStatusPartiallyPaid   VendorInvoiceStatus = "partially_paid"
	VendorInvoiceStatusPaid            VendorInvoiceStatus = "paid"
	VendorInvoiceStatusRejected        VendorInvoiceStatus = "rejected"
)

// IsValid checks if the status is a valid VendorInvoiceStatus
func (s VendorInvoiceStatus) IsValid() bool {
	switch s {
	case VendorInvoiceStatusDraft, VendorInvoiceStatusPendingApproval, VendorInvoiceStatusApproved,
		VendorInvoiceStatusPartiallyPaid, VendorInvoiceStatusPaid, VendorInvoiceStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of VendorInvoiceStatus
func (s VendorInvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s VendorInvoiceStatus) CanTransitionTo(target VendorInvoiceStatus) bool {
	switch s {
	case VendorInvoiceStatusDraft:
		return target == VendorInvoiceStatusPendingApproval
	case VendorInvoiceStatusPendingApproval:
		return target == VendorInvoiceStatusApproved || target == VendorInvoiceStatusRejected
	case VendorInvoiceStatusApproved:
		return target == VendorInvoiceStatusPartiallyPaid || target == VendorInvoiceStatusPaid
	case VendorInvoiceStatusPartiallyPaid:
		return target == VendorInvoiceStatusPartiallyPaid || target == VendorInvoiceStatusPaid
	case VendorInvoiceStatusPaid, VendorInvoiceStatusRejected:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s VendorInvoiceStatus) IsTerminal() bool {
	return s == VendorInvoiceStatusPaid || s == VendorInvoiceStatusRejected
}

// CanAcceptPayment returns true if payments may be applied in this status
func (s VendorInvoiceStatus) CanAcceptPayment() bool {
	return s == VendorInvoiceStatusApproved || s == VendorInvoiceStatusPartiallyPaid
}

// VendorInvoice represents a vendor invoice aggregate root. It mirrors the
// purchase order shape and may reference the purchase order it bills.
type VendorInvoice struct {
	shared.ProjectAggregateRoot
	DocumentNumber  string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorName      string                   `gorm:"type:varchar(200);not null"`
	Category        string                   `gorm:"type:varchar(100)"`
	PurchaseOrderID *uuid.UUID               `gorm:"type:uuid;index"`
	Items           []LineItem               `gorm:"foreignKey:DocumentID;references:ID"`
	VATTreatment    valueobject.VATTreatment `gorm:"type:varchar(20);not null"`
	Subtotal        decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	VAT             decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Total           decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	PaidTotal       decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Status          VendorInvoiceStatus      `gorm:"type:varchar(20);not null;default:'draft';index"`

	SubmittedBy  *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt  *time.Time
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectedBy   *uuid.UUID `gorm:"type:uuid"`
	RejectedAt   *time.Time
	RejectReason string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (VendorInvoice) TableName() string {
	return "vendor_invoices"
}

// NewVendorInvoice creates a new vendor invoice in draft status
func NewVendorInvoice(projectID uuid.UUID, documentNumber, vendorName, category string, purchaseOrderID *uuid.UUID, treatment valueobject.VATTreatment) (*VendorInvoice, error) {
	if documentNumber == "" {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(documentNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 50 characters")
	}
	if vendorName == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR", "Vendor name cannot be empty")
	}
	if !treatment.IsValid() {
		return nil, shared.NewDomainError("INVALID_VAT_TREATMENT", "VAT treatment is not valid")
	}

	invoice := &VendorInvoice{
		ProjectAggregateRoot: shared.NewProjectAggregateRoot(projectID),
		DocumentNumber:       documentNumber,
		VendorName:           vendorName,
		Category:             category,
		PurchaseOrderID:      purchaseOrderID,
		Items:                make([]LineItem, 0),
		VATTreatment:         treatment,
		Subtotal:             decimal.Zero,
		VAT:                  decimal.Zero,
		Total:                decimal.Zero,
		PaidTotal:            decimal.Zero,
		Status:               VendorInvoiceStatusDraft,
	}

	invoice.AddDomainEvent(NewVendorInvoiceCreatedEvent(invoice))

	return invoice, nil
}

// AddItem adds a new line item
// Only allowed in draft status
func (v *VendorInvoice) AddItem(description string, quantity decimal.Decimal, unitPrice valueobject.Money, category string) (*LineItem, error) {
	if v.Status != VendorInvoiceStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft invoice")
	}

	item, err := NewLineItem(v.ID, description, quantity, unitPrice, category)
	if err != nil {
		return nil, err
	}

	v.Items = append(v.Items, *item)
	v.recalculateTotals()
	v.Touch()

	return item, nil
}

// UpdateItem updates an existing line item
// Only allowed in draft status
func (v *VendorInvoice) UpdateItem(itemID uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money) error {
	if v.Status != VendorInvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft invoice")
	}

	for idx := range v.Items {
		if v.Items[idx].ID == itemID {
			if err := v.Items[idx].Update(quantity, unitPrice); err != nil {
				return err
			}
			v.recalculateTotals()
			v.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
}

// RemoveItem removes a line item
// Only allowed in draft status
func (v *VendorInvoice) RemoveItem(itemID uuid.UUID) error {
	if v.Status != VendorInvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft invoice")
	}

	for idx, item := range v.Items {
		if item.ID == itemID {
			v.Items = append(v.Items[:idx], v.Items[idx+1:]...)
			v.recalculateTotals()
			v.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
}

// SetVATTreatment changes the VAT treatment and recalculates totals
// Only allowed in draft status
func (v *VendorInvoice) SetVATTreatment(treatment valueobject.VATTreatment) error {
	if v.Status != VendorInvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change VAT treatment of a non-draft invoice")
	}
	if !treatment.IsValid() {
		return shared.NewDomainError("INVALID_VAT_TREATMENT", "VAT treatment is not valid")
	}
	v.VATTreatment = treatment
	v.recalculateTotals()
	v.Touch()
	return nil
}

// Submit moves the invoice from draft to pending approval
func (v *VendorInvoice) Submit(submittedBy uuid.UUID) error {
	if !v.Status.CanTransitionTo(VendorInvoiceStatusPendingApproval) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit invoice in %s status", v.Status))
	}
	if len(v.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit invoice without items")
	}
	if submittedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}

	now := time.Now()
	v.Status = VendorInvoiceStatusPendingApproval
	v.SubmittedBy = &submittedBy
	v.SubmittedAt = &now
	v.Touch()

	v.AddDomainEvent(NewVendorInvoiceSubmittedEvent(v))

	return nil
}

// Approve moves the invoice from pending approval to approved.
// The originating actor may not approve their own invoice.
func (v *VendorInvoice) Approve(approvedBy uuid.UUID) error {
	if !v.Status.CanTransitionTo(VendorInvoiceStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve invoice in %s status", v.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}
	if v.CreatedBy != nil && *v.CreatedBy == approvedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot approve your own invoice")
	}

	now := time.Now()
	v.Status = VendorInvoiceStatusApproved
	v.ApprovedBy = &approvedBy
	v.ApprovedAt = &now
	v.Touch()

	v.AddDomainEvent(NewVendorInvoiceApprovedEvent(v))

	return nil
}

// Reject moves the invoice from pending approval to the terminal rejected state
func (v *VendorInvoice) Reject(rejectedBy uuid.UUID, reason string) error {
	if !v.Status.CanTransitionTo(VendorInvoiceStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject invoice in %s status", v.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if v.CreatedBy != nil && *v.CreatedBy == rejectedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot reject your own invoice")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	v.Status = VendorInvoiceStatusRejected
	v.RejectedBy = &rejectedBy
	v.RejectedAt = &now
	v.RejectReason = reason
	v.Touch()

	v.AddDomainEvent(NewVendorInvoiceRejectedEvent(v))

	return nil
}

// ApplyPayment adds a completed payment amount to the paid total and
// advances the status to partially_paid or paid
func (v *VendorInvoice) ApplyPayment(amount decimal.Decimal) error {
	if !v.Status.CanAcceptPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to invoice in %s status", v.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	v.PaidTotal = v.PaidTotal.Add(amount)
	if v.PaidTotal.GreaterThanOrEqual(v.Total) {
		v.Status = VendorInvoiceStatusPaid
		v.AddDomainEvent(NewVendorInvoicePaidEvent(v))
	} else {
		v.Status = VendorInvoiceStatusPartiallyPaid
	}
	v.Touch()

	return nil
}

// recalculateTotals recomputes subtotal/VAT/total from the line items
func (v *VendorInvoice) recalculateTotals() {
	raw := decimal.Zero
	for _, item := range v.Items {
		raw = raw.Add(item.Total)
	}
	breakdown := valueobject.ComputeVAT(raw, v.VATTreatment)
	v.Subtotal = breakdown.Subtotal
	v.VAT = breakdown.VAT
	v.Total = breakdown.Total
}

// CategoryAmounts distributes the invoice's line totals across every
// distinct category present among its items, falling back to the
// document-level category for lines without one.
func (v *VendorInvoice) CategoryAmounts() map[string]decimal.Decimal {
	return distributeByCategory(v.Items, v.Category)
}

// RemainingTotal returns the unpaid portion of the invoice
func (v *VendorInvoice) RemainingTotal() decimal.Decimal {
	remaining := v.Total.Sub(v.PaidTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ItemCount returns the number of line items
func (v *VendorInvoice) ItemCount() int {
	return len(v.Items)
}

// IsDraft returns true if the invoice is in draft status
func (v *VendorInvoice) IsDraft() bool {
	return v.Status == VendorInvoiceStatusDraft
}

// IsPaid returns true if the invoice is fully paid
func (v *VendorInvoice) IsPaid() bool {
	return v.Status == VendorInvoiceStatusPaid
}
