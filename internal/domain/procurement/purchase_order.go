package procurement

import (
	"fmt"
	"time"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusDraft           PurchaseOrderStatus = "draft"
	PurchaseOrderStatusPendingApproval PurchaseOrderStatus = "pending_approval"
	PurchaseOrderStatusApproved        PurchaseOrderStatus = "approved"
	PurchaseOrderStatusIssued          PurchaseOrderStatus = "issued"
	PurchaseOrderStatusReceived        PurchaseOrderStatus = "received"
	PurchaseOrderStatusPartiallyPaid   PurchaseOrderStatus = "partially_paid"
	PurchaseOrderStatusPaid            PurchaseOrderStatus = "paid"
	PurchaseOrderStatusRejected        PurchaseOrderStatus = "rejected"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusDraft, PurchaseOrderStatusPendingApproval, PurchaseOrderStatusApproved,
		PurchaseOrderStatusIssued, PurchaseOrderStatusReceived, PurchaseOrderStatusPartiallyPaid,
		PurchaseOrderStatusPaid, PurchaseOrderStatusRejected:
		return true
	}
	return false
}

// String returns the string representation of PurchaseOrderStatus
func (s PurchaseOrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusDraft:
		return target == PurchaseOrderStatusPendingApproval
	case PurchaseOrderStatusPendingApproval:
		return target == PurchaseOrderStatusApproved || target == PurchaseOrderStatusRejected
	case PurchaseOrderStatusApproved:
		return target == PurchaseOrderStatusIssued || target == PurchaseOrderStatusReceived ||
			target == PurchaseOrderStatusPartiallyPaid || target == PurchaseOrderStatusPaid
	case PurchaseOrderStatusIssued:
		return target == PurchaseOrderStatusReceived || target == PurchaseOrderStatusPartiallyPaid ||
			target == PurchaseOrderStatusPaid
	case PurchaseOrderStatusReceived:
		return target == PurchaseOrderStatusPartiallyPaid || target == PurchaseOrderStatusPaid
	case PurchaseOrderStatusPartiallyPaid:
		return target == PurchaseOrderStatusPartiallyPaid || target == PurchaseOrderStatusPaid
	case PurchaseOrderStatusPaid, PurchaseOrderStatusRejected:
		return false // Terminal states
	}
	return false
}

// IsTerminal returns true for states with no outgoing transitions
func (s PurchaseOrderStatus) IsTerminal() bool {
	return s == PurchaseOrderStatusPaid || s == PurchaseOrderStatusRejected
}

// CanAcceptPayment returns true if payments may be applied in this status
func (s PurchaseOrderStatus) CanAcceptPayment() bool {
	switch s {
	case PurchaseOrderStatusApproved, PurchaseOrderStatusIssued, PurchaseOrderStatusReceived, PurchaseOrderStatusPartiallyPaid:
		return true
	}
	return false
}

// PurchaseOrder represents a purchase order aggregate root. It carries the
// full approval audit trail; monetary fields are frozen once the order is
// paid or rejected except through the modification-request annotation.
type PurchaseOrder struct {
	shared.ProjectAggregateRoot
	DocumentNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorName     string                   `gorm:"type:varchar(200);not null"`
	Category       string                   `gorm:"type:varchar(100)"` // document-level fallback
	Items          []LineItem               `gorm:"foreignKey:DocumentID;references:ID"`
	VATTreatment   valueobject.VATTreatment `gorm:"type:varchar(20);not null"`
	Subtotal       decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	VAT            decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	PaidTotal      decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Status         PurchaseOrderStatus      `gorm:"type:varchar(20);not null;default:'draft';index"`

	SubmittedBy  *uuid.UUID `gorm:"type:uuid"`
	SubmittedAt  *time.Time
	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectedBy   *uuid.UUID `gorm:"type:uuid"`
	RejectedAt   *time.Time
	RejectReason string     `gorm:"type:varchar(500)"`

	ModificationRequested   bool       `gorm:"not null;default:false"`
	ModificationRequestedBy *uuid.UUID `gorm:"type:uuid"`
	ModificationRequestedAt *time.Time
	ModificationNote        string     `gorm:"type:varchar(500)"`
	ModificationResolvedBy  *uuid.UUID `gorm:"type:uuid"`
	ModificationResolvedAt  *time.Time
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new purchase order in draft status
func NewPurchaseOrder(projectID uuid.UUID, documentNumber, vendorName, category string, treatment valueobject.VATTreatment) (*PurchaseOrder, error) {
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

	order := &PurchaseOrder{
		ProjectAggregateRoot: shared.NewProjectAggregateRoot(projectID),
		DocumentNumber:       documentNumber,
		VendorName:           vendorName,
		Category:             category,
		Items:                make([]LineItem, 0),
		VATTreatment:         treatment,
		Subtotal:             decimal.Zero,
		VAT:                  decimal.Zero,
		Total:                decimal.Zero,
		PaidTotal:            decimal.Zero,
		Status:               PurchaseOrderStatusDraft,
	}

	order.AddDomainEvent(NewPurchaseOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a new line item
// Only allowed in draft status
func (o *PurchaseOrder) AddItem(description string, quantity decimal.Decimal, unitPrice valueobject.Money, category string) (*LineItem, error) {
	if o.Status != PurchaseOrderStatusDraft {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft order")
	}

	item, err := NewLineItem(o.ID, description, quantity, unitPrice, category)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotals()
	o.Touch()

	return item, nil
}

// UpdateItem updates an existing line item
// Only allowed in draft status
func (o *PurchaseOrder) UpdateItem(itemID uuid.UUID, quantity decimal.Decimal, unitPrice valueobject.Money) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot update items in a non-draft order")
	}

	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			if err := o.Items[idx].Update(quantity, unitPrice); err != nil {
				return err
			}
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
}

// RemoveItem removes a line item
// Only allowed in draft status
func (o *PurchaseOrder) RemoveItem(itemID uuid.UUID) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove items from a non-draft order")
	}

	for idx, item := range o.Items {
		if item.ID == itemID {
			o.Items = append(o.Items[:idx], o.Items[idx+1:]...)
			o.recalculateTotals()
			o.Touch()
			return nil
		}
	}

	return shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found")
}

// SetVATTreatment changes the VAT treatment and recalculates totals
// Only allowed in draft status
func (o *PurchaseOrder) SetVATTreatment(treatment valueobject.VATTreatment) error {
	if o.Status != PurchaseOrderStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot change VAT treatment of a non-draft order")
	}
	if !treatment.IsValid() {
		return shared.NewDomainError("INVALID_VAT_TREATMENT", "VAT treatment is not valid")
	}
	o.VATTreatment = treatment
	o.recalculateTotals()
	o.Touch()
	return nil
}

// Submit moves the order from draft to pending approval
// Requires at least one line item
func (o *PurchaseOrder) Submit(submittedBy uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusPendingApproval) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot submit order without items")
	}
	if submittedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Submitting user ID is required")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusPendingApproval
	o.SubmittedBy = &submittedBy
	o.SubmittedAt = &now
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderSubmittedEvent(o))

	return nil
}

// Approve moves the order from pending approval to approved.
// The originating actor may not approve their own order.
func (o *PurchaseOrder) Approve(approvedBy uuid.UUID) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusApproved) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve order in %s status", o.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Approving user ID is required")
	}
	if o.CreatedBy != nil && *o.CreatedBy == approvedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot approve your own purchase order")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusApproved
	o.ApprovedBy = &approvedBy
	o.ApprovedAt = &now
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderApprovedEvent(o))

	return nil
}

// Reject moves the order from pending approval to the terminal rejected state
func (o *PurchaseOrder) Reject(rejectedBy uuid.UUID, reason string) error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusRejected) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject order in %s status", o.Status))
	}
	if rejectedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Rejecting user ID is required")
	}
	if o.CreatedBy != nil && *o.CreatedBy == rejectedBy {
		return shared.NewDomainError("FORBIDDEN", "Cannot reject your own purchase order")
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Reject reason is required")
	}

	now := time.Now()
	o.Status = PurchaseOrderStatusRejected
	o.RejectedBy = &rejectedBy
	o.RejectedAt = &now
	o.RejectReason = reason
	o.Touch()

	o.AddDomainEvent(NewPurchaseOrderRejectedEvent(o))

	return nil
}

// MarkIssued records that the order was sent to the vendor
func (o *PurchaseOrder) MarkIssued() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusIssued) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot issue order in %s status", o.Status))
	}
	o.Status = PurchaseOrderStatusIssued
	o.Touch()
	return nil
}

// MarkReceived records that the goods or services arrived
func (o *PurchaseOrder) MarkReceived() error {
	if !o.Status.CanTransitionTo(PurchaseOrderStatusReceived) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot receive order in %s status", o.Status))
	}
	o.Status = PurchaseOrderStatusReceived
	o.Touch()
	return nil
}

// ApplyPayment adds a completed payment amount to the paid total and
// advances the status to partially_paid or paid. Driven by payment
// completion, never called directly by API consumers.
func (o *PurchaseOrder) ApplyPayment(amount decimal.Decimal) error {
	if !o.Status.CanAcceptPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to order in %s status", o.Status))
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	o.PaidTotal = o.PaidTotal.Add(amount)
	if o.PaidTotal.GreaterThanOrEqual(o.Total) {
		o.Status = PurchaseOrderStatusPaid
		o.AddDomainEvent(NewPurchaseOrderPaidEvent(o))
	} else {
		o.Status = PurchaseOrderStatusPartiallyPaid
	}
	o.Touch()

	return nil
}

// RequestModification attaches the modification annotation to an approved
// order. This is not a status transition; the order stays approved until an
// admin resolves the request.
func (o *PurchaseOrder) RequestModification(requestedBy uuid.UUID, note string) error {
	if o.Status != PurchaseOrderStatusApproved {
		return shared.NewDomainError("INVALID_STATE", "Modification can only be requested on an approved order")
	}
	if requestedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Requesting user ID is required")
	}
	if o.ModificationRequested {
		return shared.NewDomainError("ALREADY_REQUESTED", "A modification request is already pending")
	}

	now := time.Now()
	o.ModificationRequested = true
	o.ModificationRequestedBy = &requestedBy
	o.ModificationRequestedAt = &now
	o.ModificationNote = note
	o.ModificationResolvedBy = nil
	o.ModificationResolvedAt = nil
	o.Touch()

	return nil
}

// ResolveModification clears a pending modification request
func (o *PurchaseOrder) ResolveModification(resolvedBy uuid.UUID) error {
	if !o.ModificationRequested {
		return shared.NewDomainError("INVALID_STATE", "No pending modification request")
	}
	if resolvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_USER", "Resolving user ID is required")
	}

	now := time.Now()
	o.ModificationRequested = false
	o.ModificationResolvedBy = &resolvedBy
	o.ModificationResolvedAt = &now
	o.Touch()

	return nil
}

// recalculateTotals recomputes subtotal/VAT/total from the line items
func (o *PurchaseOrder) recalculateTotals() {
	raw := decimal.Zero
	for _, item := range o.Items {
		raw = raw.Add(item.Total)
	}
	breakdown := valueobject.ComputeVAT(raw, o.VATTreatment)
	o.Subtotal = breakdown.Subtotal
	o.VAT = breakdown.VAT
	o.Total = breakdown.Total
}

// CategoryAmounts distributes the order's line totals across every distinct
// category present among its items, falling back to the document-level
// category when no line specifies one.
func (o *PurchaseOrder) CategoryAmounts() map[string]decimal.Decimal {
	return distributeByCategory(o.Items, o.Category)
}

// RemainingTotal returns the unpaid portion of the order
func (o *PurchaseOrder) RemainingTotal() decimal.Decimal {
	remaining := o.Total.Sub(o.PaidTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ItemCount returns the number of line items
func (o *PurchaseOrder) ItemCount() int {
	return len(o.Items)
}

// IsDraft returns true if the order is in draft status
func (o *PurchaseOrder) IsDraft() bool {
	return o.Status == PurchaseOrderStatusDraft
}

// IsApproved returns true if the order is approved
func (o *PurchaseOrder) IsApproved() bool {
	return o.Status == PurchaseOrderStatusApproved
}

// IsPaid returns true if the order is fully paid
func (o *PurchaseOrder) IsPaid() bool {
	return o.Status == PurchaseOrderStatusPaid
}

// CanModify returns true if monetary fields may change
func (o *PurchaseOrder) CanModify() bool {
	return o.IsDraft()
}

// GetItem returns a line item by its ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range o.Items {
		if o.Items[idx].ID == itemID {
			return &o.Items[idx]
		}
	}
	return nil
}

// distributeByCategory sums line totals per category, falling back to the
// document-level category for lines without one. Lines with no category at
// either level are skipped.
func distributeByCategory(items []LineItem, fallback string) map[string]decimal.Decimal {
	amounts := make(map[string]decimal.Decimal)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = fallback
		}
		if category == "" {
			continue
		}
		amounts[category] = amounts[category].Add(item.Total)
	}
	return amounts
}
