package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/buildledger/backend/internal/domain/budget"
	domainpay "github.com/buildledger/backend/internal/domain/payment"
	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/sequence"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/buildledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== fakes ====================

type fakePaymentRepo struct {
	payments map[uuid.UUID]*domainpay.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*domainpay.Payment)}
}

func (r *fakePaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*domainpay.Payment, error) {
	pay, ok := r.payments[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return pay, nil
}

func (r *fakePaymentRepo) FindByDocumentNumber(ctx context.Context, documentNumber string) (*domainpay.Payment, error) {
	for _, pay := range r.payments {
		if pay.DocumentNumber == documentNumber {
			return pay, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePaymentRepo) FindByDocumentID(ctx context.Context, documentID uuid.UUID) ([]*domainpay.Payment, error) {
	var out []*domainpay.Payment
	for _, pay := range r.payments {
		if pay.DocumentID != nil && *pay.DocumentID == documentID {
			out = append(out, pay)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) FindAll(ctx context.Context, filter shared.Filter) ([]*domainpay.Payment, error) {
	out := make([]*domainpay.Payment, 0, len(r.payments))
	for _, pay := range r.payments {
		out = append(out, pay)
	}
	return out, nil
}

func (r *fakePaymentRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return int64(len(r.payments)), nil
}

func (r *fakePaymentRepo) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	return 0, nil
}

func (r *fakePaymentRepo) Save(ctx context.Context, pay *domainpay.Payment) error {
	r.payments[pay.ID] = pay
	return nil
}

func (r *fakePaymentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := r.payments[id]; !ok {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

type fakeOrderRepo struct {
	orders map[uuid.UUID]*procurement.PurchaseOrder
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*procurement.PurchaseOrder)}
}

func (r *fakeOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByDocumentNumber(ctx context.Context, documentNumber string) (*procurement.PurchaseOrder, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.PurchaseOrder, error) {
	return nil, nil
}

func (r *fakeOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeOrderRepo) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	return 0, nil
}

func (r *fakeOrderRepo) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.orders, id)
	return nil
}

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*procurement.VendorInvoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]*procurement.VendorInvoice)}
}

func (r *fakeInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*procurement.VendorInvoice, error) {
	invoice, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return invoice, nil
}

func (r *fakeInvoiceRepo) FindByDocumentNumber(ctx context.Context, documentNumber string) (*procurement.VendorInvoice, error) {
	return nil, shared.ErrNotFound
}

func (r *fakeInvoiceRepo) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) ([]*procurement.VendorInvoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.VendorInvoice, error) {
	return nil, nil
}

func (r *fakeInvoiceRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeInvoiceRepo) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	return 0, nil
}

func (r *fakeInvoiceRepo) Save(ctx context.Context, invoice *procurement.VendorInvoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *fakeInvoiceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.invoices, id)
	return nil
}

type fakeSequences struct {
	counters map[string]int64
}

func newFakeSequences() *fakeSequences {
	return &fakeSequences{counters: make(map[string]int64)}
}

func (s *fakeSequences) Next(ctx context.Context, entityKey string) (int64, error) {
	s.counters[entityKey]++
	return s.counters[entityKey], nil
}

func (s *fakeSequences) Peek(ctx context.Context, entityKey string) (int64, error) {
	return s.counters[entityKey] + 1, nil
}

func (s *fakeSequences) Set(ctx context.Context, entityKey string, counter int64) error {
	s.counters[entityKey] = counter - 1
	return nil
}

func (s *fakeSequences) List(ctx context.Context) ([]*sequence.NumberSequence, error) {
	return nil, nil
}

type fakeTx struct{}

func (fakeTx) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeBudgetItems struct {
	items map[string]*budget.BudgetItem
}

func newFakeBudgetItems() *fakeBudgetItems {
	return &fakeBudgetItems{items: make(map[string]*budget.BudgetItem)}
}

func (r *fakeBudgetItems) add(t *testing.T, projectID uuid.UUID, category string, budgeted int64) *budget.BudgetItem {
	t.Helper()
	item, err := budget.NewBudgetItem(projectID, category, category, valueobject.NewMoneyZAR(decimal.NewFromInt(budgeted)))
	require.NoError(t, err)
	r.items[projectID.String()+"/"+category] = item
	return item
}

func (r *fakeBudgetItems) FindByID(ctx context.Context, id uuid.UUID) (*budget.BudgetItem, error) {
	for _, item := range r.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBudgetItems) FindByProjectAndCategory(ctx context.Context, projectID uuid.UUID, category string) (*budget.BudgetItem, error) {
	item, ok := r.items[projectID.String()+"/"+category]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return item, nil
}

func (r *fakeBudgetItems) FindAll(ctx context.Context, filter shared.Filter) ([]*budget.BudgetItem, error) {
	return nil, nil
}

func (r *fakeBudgetItems) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *fakeBudgetItems) Save(ctx context.Context, item *budget.BudgetItem) error {
	return nil
}

func (r *fakeBudgetItems) SaveWithLock(ctx context.Context, item *budget.BudgetItem) error {
	return nil
}

func (r *fakeBudgetItems) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

// ==================== helpers ====================

type paymentServiceFixture struct {
	service  *PaymentService
	payments *fakePaymentRepo
	orders   *fakeOrderRepo
	invoices *fakeInvoiceRepo
	budgets  *fakeBudgetItems
}

func newPaymentServiceFixture() *paymentServiceFixture {
	payments := newFakePaymentRepo()
	orders := newFakeOrderRepo()
	invoices := newFakeInvoiceRepo()
	budgets := newFakeBudgetItems()
	service := NewPaymentService(payments, orders, invoices, newFakeSequences(), budget.NewLedger(budgets), fakeTx{}, nil)
	return &paymentServiceFixture{service: service, payments: payments, orders: orders, invoices: invoices, budgets: budgets}
}

// payableOrder builds an approved order with one 1000 line in "materials"
func payableOrder(t *testing.T, fixture *paymentServiceFixture, projectID uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(projectID, "PO-2025-00001", "Acme Supplies", "materials", valueobject.VATNotApplicable)
	require.NoError(t, err)
	_, err = order.AddItem("Cement", decimal.NewFromInt(10), valueobject.NewMoneyZAR(decimal.NewFromInt(100)), "")
	require.NoError(t, err)
	require.NoError(t, order.Submit(uuid.New()))
	require.NoError(t, order.Approve(uuid.New()))
	require.NoError(t, fixture.orders.Save(context.Background(), order))
	return order
}

func fullAllocation(order *procurement.PurchaseOrder) []AllocationInput {
	inputs := make([]AllocationInput, len(order.Items))
	for i, item := range order.Items {
		inputs[i] = AllocationInput{LineItemID: item.ID, Type: "full"}
	}
	return inputs
}

// ==================== tests ====================

func TestPaymentService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates draft against an order", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		resp, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)

		assert.Equal(t, "draft", resp.Status)
		assert.True(t, strings.HasPrefix(resp.DocumentNumber, "PAY-"))
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(1000)))
		require.Len(t, resp.Lines, 1)
		// Payment inherits the document-level category
		assert.Equal(t, "materials", resp.Category)
	})

	t.Run("project mismatch is rejected", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		order := payableOrder(t, fixture, uuid.New())

		_, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    uuid.New(),
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PROJECT_MISMATCH", domainErr.Code)
	})

	t.Run("draft documents cannot accept payments", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order, err := procurement.NewPurchaseOrder(projectID, "PO-1", "Acme", "", valueobject.VATNotApplicable)
		require.NoError(t, err)
		_, err = order.AddItem("Cement", decimal.NewFromInt(1), valueobject.NewMoneyZAR(decimal.NewFromInt(100)), "")
		require.NoError(t, err)
		require.NoError(t, fixture.orders.Save(ctx, order))

		_, err = fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("unknown document kind", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		_, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    uuid.New(),
			Type:         "payment",
			DocumentKind: "bogus",
			DocumentID:   uuid.New(),
			Allocations:  []AllocationInput{{LineItemID: uuid.New(), Type: "full"}},
		})
		assert.Error(t, err)
	})
}

func TestPaymentService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces a draft allocation", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)
		require.True(t, created.Amount.Equal(decimal.NewFromInt(1000)))

		resp, err := fixture.service.Update(ctx, created.ID, UpdatePaymentRequest{
			Allocations: []AllocationInput{
				{LineItemID: order.Items[0].ID, Type: "fixed", Value: decimal.NewFromInt(250)},
			},
		})
		require.NoError(t, err)

		assert.Equal(t, "draft", resp.Status)
		assert.True(t, resp.Amount.Equal(decimal.NewFromInt(250)))
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "fixed", resp.Lines[0].AllocationType)
		assert.True(t, resp.Lines[0].PaymentAmount.Equal(decimal.NewFromInt(250)))
		// Category still inherited from the document
		assert.Equal(t, "materials", resp.Category)
	})

	t.Run("category override is kept", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)

		category := "plant_hire"
		resp, err := fixture.service.Update(ctx, created.ID, UpdatePaymentRequest{
			Category:    &category,
			Allocations: fullAllocation(order),
		})
		require.NoError(t, err)
		assert.Equal(t, "plant_hire", resp.Category)
	})

	t.Run("submitted payments cannot be updated", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)
		_, err = fixture.service.Submit(ctx, created.ID, uuid.New())
		require.NoError(t, err)

		_, err = fixture.service.Update(ctx, created.ID, UpdatePaymentRequest{
			Allocations: fullAllocation(order),
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("empty allocation is rejected", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)

		_, err = fixture.service.Update(ctx, created.ID, UpdatePaymentRequest{
			Allocations: []AllocationInput{
				{LineItemID: order.Items[0].ID, Type: "fixed", Value: decimal.Zero},
			},
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOTHING_TO_PAY", domainErr.Code)
	})
}

func TestPaymentService_Preview(t *testing.T) {
	ctx := context.Background()
	fixture := newPaymentServiceFixture()
	projectID := uuid.New()
	order := payableOrder(t, fixture, projectID)

	t.Run("computes clamped amounts without persisting", func(t *testing.T) {
		resp, err := fixture.service.Preview(ctx, AllocationPreviewRequest{
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations: []AllocationInput{
				{LineItemID: order.Items[0].ID, Type: "fixed", Value: decimal.NewFromInt(5000)},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		// Clamped to the 1000 line total
		assert.True(t, resp.Lines[0].PaymentAmount.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.Total.Equal(decimal.NewFromInt(1000)))
		assert.Empty(t, fixture.payments.payments)
	})

	t.Run("previously paid amounts reduce the preview", func(t *testing.T) {
		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations: []AllocationInput{
				{LineItemID: order.Items[0].ID, Type: "fixed", Value: decimal.NewFromInt(400)},
			},
		})
		require.NoError(t, err)
		fixture.budgets.add(t, projectID, "materials", 100000)
		_, err = fixture.service.Submit(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		_, err = fixture.service.Approve(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		_, err = fixture.service.MarkPaid(ctx, created.ID, uuid.New())
		require.NoError(t, err)

		resp, err := fixture.service.Preview(ctx, AllocationPreviewRequest{
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations: []AllocationInput{
				{LineItemID: order.Items[0].ID, Type: "full"},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.True(t, resp.Lines[0].PreviouslyPaid.Equal(decimal.NewFromInt(400)))
		assert.True(t, resp.Lines[0].PaymentAmount.Equal(decimal.NewFromInt(600)))
	})
}

func TestPaymentService_MarkPaid(t *testing.T) {
	ctx := context.Background()

	t.Run("outgoing payment records actuals and advances the document", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		item := fixture.budgets.add(t, projectID, "materials", 10000)
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)
		_, err = fixture.service.Submit(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		_, err = fixture.service.Approve(ctx, created.ID, uuid.New())
		require.NoError(t, err)

		resp, err := fixture.service.MarkPaid(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)

		assert.True(t, item.Actual.Equal(decimal.NewFromInt(1000)))
		assert.Equal(t, procurement.PurchaseOrderStatusPaid, order.Status)
		assert.True(t, order.PaidTotal.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("receipt leaves the ledger and document untouched", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		item := fixture.budgets.add(t, projectID, "materials", 10000)
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "receipt",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)
		_, err = fixture.service.Submit(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		_, err = fixture.service.Approve(ctx, created.ID, uuid.New())
		require.NoError(t, err)

		resp, err := fixture.service.MarkPaid(ctx, created.ID, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "paid", resp.Status)

		assert.True(t, item.Actual.IsZero())
		assert.Equal(t, procurement.PurchaseOrderStatusApproved, order.Status)
		assert.True(t, order.PaidTotal.IsZero())
	})

	t.Run("cannot settle an unapproved payment", func(t *testing.T) {
		fixture := newPaymentServiceFixture()
		projectID := uuid.New()
		order := payableOrder(t, fixture, projectID)

		created, err := fixture.service.Create(ctx, CreatePaymentRequest{
			ProjectID:    projectID,
			Type:         "payment",
			DocumentKind: "purchase_order",
			DocumentID:   order.ID,
			Allocations:  fullAllocation(order),
		})
		require.NoError(t, err)

		_, err = fixture.service.MarkPaid(ctx, created.ID, uuid.New())
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestPaymentService_WorkflowGuards(t *testing.T) {
	ctx := context.Background()
	fixture := newPaymentServiceFixture()
	projectID := uuid.New()
	order := payableOrder(t, fixture, projectID)

	creator := uuid.New()
	created, err := fixture.service.Create(ctx, CreatePaymentRequest{
		ProjectID:    projectID,
		Type:         "payment",
		DocumentKind: "purchase_order",
		DocumentID:   order.ID,
		Allocations:  fullAllocation(order),
		CreatedBy:    &creator,
	})
	require.NoError(t, err)

	t.Run("only drafts can be deleted", func(t *testing.T) {
		_, err := fixture.service.Submit(ctx, created.ID, creator)
		require.NoError(t, err)

		err = fixture.service.Delete(ctx, created.ID)
		require.Error(t, err)
	})

	t.Run("creator cannot approve own payment", func(t *testing.T) {
		_, err := fixture.service.Approve(ctx, created.ID, creator)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "FORBIDDEN", domainErr.Code)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		_, err := fixture.service.Reject(ctx, created.ID, uuid.New(), "")
		require.Error(t, err)

		resp, err := fixture.service.Reject(ctx, created.ID, uuid.New(), "duplicate payment")
		require.NoError(t, err)
		assert.Equal(t, "rejected", resp.Status)
	})
}
