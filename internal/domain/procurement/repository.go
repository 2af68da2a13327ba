package procurement

import (
	"context"

	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines the persistence contract for purchase orders
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*PurchaseOrder, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// VendorInvoiceRepository defines the persistence contract for vendor invoices
type VendorInvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*VendorInvoice, error)
	FindByDocumentNumber(ctx context.Context, documentNumber string) (*VendorInvoice, error)
	FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) ([]*VendorInvoice, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*VendorInvoice, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error)
	Save(ctx context.Context, invoice *VendorInvoice) error
	Delete(ctx context.Context, id uuid.UUID) error
}
