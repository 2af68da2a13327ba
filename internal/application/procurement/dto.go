package procurement

import (
	"time"

	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Line item DTOs ====================

// LineItemInput represents one priced row in a create or update request
type LineItemInput struct {
	Description string          `json:"description" binding:"required,min=1,max=500"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice   decimal.Decimal `json:"unitPrice" binding:"required"`
	Category    string          `json:"category"`
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Total       decimal.Decimal `json:"total"`
	Category    string          `json:"category,omitempty"`
}

// ToLineItemResponses converts domain line items to response DTOs
func ToLineItemResponses(items []procurement.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, len(items))
	for i, item := range items {
		responses[i] = LineItemResponse{
			ID:          item.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			Category:    item.Category,
		}
	}
	return responses
}

// ==================== Purchase order DTOs ====================

// CreatePurchaseOrderRequest represents a request to create a purchase order
type CreatePurchaseOrderRequest struct {
	ProjectID    uuid.UUID       `json:"projectId" binding:"required"`
	VendorName   string          `json:"vendorName" binding:"required,min=1,max=200"`
	Category     string          `json:"category"`
	VATTreatment string          `json:"vatTreatment" binding:"required,vat_treatment"`
	Items        []LineItemInput `json:"items"`
	CreatedBy    *uuid.UUID      `json:"-"`
}

// UpdatePurchaseOrderRequest represents a request to update a draft order.
// Items, when present, replace the existing line items.
type UpdatePurchaseOrderRequest struct {
	VendorName   *string          `json:"vendorName"`
	Category     *string          `json:"category"`
	VATTreatment *string          `json:"vatTreatment" binding:"omitempty,vat_treatment"`
	Items        *[]LineItemInput `json:"items"`
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RequestModificationRequest carries an optional note for the annotation
type RequestModificationRequest struct {
	Note string `json:"note" binding:"max=500"`
}

// PurchaseOrderResponse represents a purchase order in API responses
type PurchaseOrderResponse struct {
	ID             uuid.UUID          `json:"id"`
	ProjectID      uuid.UUID          `json:"projectId"`
	DocumentNumber string             `json:"documentNumber"`
	VendorName     string             `json:"vendorName"`
	Category       string             `json:"category,omitempty"`
	Items          []LineItemResponse `json:"items"`
	VATTreatment   string             `json:"vatTreatment"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	VAT            decimal.Decimal    `json:"vat"`
	Total          decimal.Decimal    `json:"total"`
	PaidTotal      decimal.Decimal    `json:"paidTotal"`
	Status         string             `json:"status"`

	SubmittedBy  *uuid.UUID `json:"submittedBy,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy   *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RejectedBy   *uuid.UUID `json:"rejectedBy,omitempty"`
	RejectedAt   *time.Time `json:"rejectedAt,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`

	ModificationRequested   bool       `json:"modificationRequested"`
	ModificationRequestedBy *uuid.UUID `json:"modificationRequestedBy,omitempty"`
	ModificationRequestedAt *time.Time `json:"modificationRequestedAt,omitempty"`
	ModificationNote        string     `json:"modificationNote,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToPurchaseOrderResponse converts a domain purchase order to a response DTO
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:             order.ID,
		ProjectID:      order.ProjectID,
		DocumentNumber: order.DocumentNumber,
		VendorName:     order.VendorName,
		Category:       order.Category,
		Items:          ToLineItemResponses(order.Items),
		VATTreatment:   order.VATTreatment.String(),
		Subtotal:       order.Subtotal,
		VAT:            order.VAT,
		Total:          order.Total,
		PaidTotal:      order.PaidTotal,
		Status:         order.Status.String(),

		SubmittedBy:  order.SubmittedBy,
		SubmittedAt:  order.SubmittedAt,
		ApprovedBy:   order.ApprovedBy,
		ApprovedAt:   order.ApprovedAt,
		RejectedBy:   order.RejectedBy,
		RejectedAt:   order.RejectedAt,
		RejectReason: order.RejectReason,

		ModificationRequested:   order.ModificationRequested,
		ModificationRequestedBy: order.ModificationRequestedBy,
		ModificationRequestedAt: order.ModificationRequestedAt,
		ModificationNote:        order.ModificationNote,

		Version:   order.Version,
		CreatedAt: order.CreatedAt,
		UpdatedAt: order.UpdatedAt,
	}
}

// ToPurchaseOrderResponses converts a slice of domain purchase orders
func ToPurchaseOrderResponses(orders []*procurement.PurchaseOrder) []PurchaseOrderResponse {
	responses := make([]PurchaseOrderResponse, len(orders))
	for i, order := range orders {
		responses[i] = ToPurchaseOrderResponse(order)
	}
	return responses
}

// ==================== Vendor invoice DTOs ====================

// CreateVendorInvoiceRequest represents a request to create a vendor invoice
type CreateVendorInvoiceRequest struct {
	ProjectID       uuid.UUID       `json:"projectId" binding:"required"`
	VendorName      string          `json:"vendorName" binding:"required,min=1,max=200"`
	Category        string          `json:"category"`
	PurchaseOrderID *uuid.UUID      `json:"poId"`
	VATTreatment    string          `json:"vatTreatment" binding:"required,vat_treatment"`
	Items           []LineItemInput `json:"items"`
	CreatedBy       *uuid.UUID      `json:"-"`
}

// UpdateVendorInvoiceRequest represents a request to update a draft invoice
type UpdateVendorInvoiceRequest struct {
	VendorName   *string          `json:"vendorName"`
	Category     *string          `json:"category"`
	VATTreatment *string          `json:"vatTreatment" binding:"omitempty,vat_treatment"`
	Items        *[]LineItemInput `json:"items"`
}

// VendorInvoiceResponse represents a vendor invoice in API responses
type VendorInvoiceResponse struct {
	ID              uuid.UUID          `json:"id"`
	ProjectID       uuid.UUID          `json:"projectId"`
	DocumentNumber  string             `json:"documentNumber"`
	VendorName      string             `json:"vendorName"`
	Category        string             `json:"category,omitempty"`
	PurchaseOrderID *uuid.UUID         `json:"poId,omitempty"`
	Items           []LineItemResponse `json:"items"`
	VATTreatment    string             `json:"vatTreatment"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	VAT             decimal.Decimal    `json:"vat"`
	Total           decimal.Decimal    `json:"total"`
	PaidTotal       decimal.Decimal    `json:"paidTotal"`
	Status          string             `json:"status"`

	SubmittedBy  *uuid.UUID `json:"submittedBy,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	ApprovedBy   *uuid.UUID `json:"approvedBy,omitempty"`
	ApprovedAt   *time.Time `json:"approvedAt,omitempty"`
	RejectedBy   *uuid.UUID `json:"rejectedBy,omitempty"`
	RejectedAt   *time.Time `json:"rejectedAt,omitempty"`
	RejectReason string     `json:"rejectReason,omitempty"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ToVendorInvoiceResponse converts a domain vendor invoice to a response DTO
func ToVendorInvoiceResponse(invoice *procurement.VendorInvoice) VendorInvoiceResponse {
	return VendorInvoiceResponse{
		ID:              invoice.ID,
		ProjectID:       invoice.ProjectID,
		DocumentNumber:  invoice.DocumentNumber,
		VendorName:      invoice.VendorName,
		Category:        invoice.Category,
		PurchaseOrderID: invoice.PurchaseOrderID,
		Items:           ToLineItemResponses(invoice.Items),
		VATTreatment:    invoice.VATTreatment.String(),
		Subtotal:        invoice.Subtotal,
		VAT:             invoice.VAT,
		Total:           invoice.Total,
		PaidTotal:       invoice.PaidTotal,
		Status:          invoice.Status.String(),

		SubmittedBy:  invoice.SubmittedBy,
		SubmittedAt:  invoice.SubmittedAt,
		ApprovedBy:   invoice.ApprovedBy,
		ApprovedAt:   invoice.ApprovedAt,
		RejectedBy:   invoice.RejectedBy,
		RejectedAt:   invoice.RejectedAt,
		RejectReason: invoice.RejectReason,

		Version:   invoice.Version,
		CreatedAt: invoice.CreatedAt,
		UpdatedAt: invoice.UpdatedAt,
	}
}

// ToVendorInvoiceResponses converts a slice of domain vendor invoices
func ToVendorInvoiceResponses(invoices []*procurement.VendorInvoice) []VendorInvoiceResponse {
	responses := make([]VendorInvoiceResponse, len(invoices))
	for i, invoice := range invoices {
		responses[i] = ToVendorInvoiceResponse(invoice)
	}
	return responses
}

// DocumentListFilter carries list query options shared by orders and invoices
type DocumentListFilter struct {
	ProjectID *uuid.UUID
	Status    *string
	Category  *string
	Search    string
	Page      int
	PageSize  int
	OrderBy   string
	OrderDir  string
}
