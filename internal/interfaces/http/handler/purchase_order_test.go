package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	procurementapp "github.com/buildledger/backend/internal/application/procurement"
	"github.com/buildledger/backend/internal/domain/procurement"
	"github.com/buildledger/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingOrderRepo captures the filter the list endpoint hands down
type recordingOrderRepo struct {
	lastFilter shared.Filter
}

func (r *recordingOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	return nil, shared.ErrNotFound
}

func (r *recordingOrderRepo) FindByDocumentNumber(ctx context.Context, documentNumber string) (*procurement.PurchaseOrder, error) {
	return nil, shared.ErrNotFound
}

func (r *recordingOrderRepo) FindAll(ctx context.Context, filter shared.Filter) ([]*procurement.PurchaseOrder, error) {
	r.lastFilter = filter
	return nil, nil
}

func (r *recordingOrderRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	return 0, nil
}

func (r *recordingOrderRepo) CountByCategory(ctx context.Context, projectID uuid.UUID, category string) (int64, error) {
	return 0, nil
}

func (r *recordingOrderRepo) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return nil
}

func (r *recordingOrderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func newOrderListRouter(repo *recordingOrderRepo) *gin.Engine {
	service := procurementapp.NewPurchaseOrderService(repo, nil, nil, nil, nil)
	router := gin.New()
	NewPurchaseOrderHandler(service).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func TestPurchaseOrderListProjectFilter(t *testing.T) {
	t.Run("projectId query parameter scopes the list", func(t *testing.T) {
		repo := &recordingOrderRepo{}
		router := newOrderListRouter(repo)
		projectID := uuid.New()

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/purchaseOrders?projectId="+projectID.String(), nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, repo.lastFilter.ProjectID)
		assert.Equal(t, projectID, *repo.lastFilter.ProjectID)
	})

	t.Run("header scopes the list when no query parameter", func(t *testing.T) {
		repo := &recordingOrderRepo{}
		router := newOrderListRouter(repo)
		projectID := uuid.New()

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/purchaseOrders", nil)
		req.Header.Set("X-Project-ID", projectID.String())
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, repo.lastFilter.ProjectID)
		assert.Equal(t, projectID, *repo.lastFilter.ProjectID)
	})

	t.Run("no scope lists every project", func(t *testing.T) {
		repo := &recordingOrderRepo{}
		router := newOrderListRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/purchaseOrders", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, repo.lastFilter.ProjectID)
	})

	t.Run("malformed projectId is a 400", func(t *testing.T) {
		repo := &recordingOrderRepo{}
		router := newOrderListRouter(repo)

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/v1/purchaseOrders?projectId=not-a-uuid", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
