package handler

import (
	procurementapp "github.com/buildledger/backend/internal/application/procurement"
	"github.com/buildledger/backend/internal/interfaces/http/dto"
	"github.com/buildledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PurchaseOrderHandler handles purchase order API endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	orderService *procurementapp.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(orderService *procurementapp.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{orderService: orderService}
}

// RegisterRoutes registers purchase order routes on the API group
func (h *PurchaseOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchaseOrders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.GetByID)
		orders.PUT("/:id", h.Update)
		orders.DELETE("/:id", h.Delete)

		orders.POST("/:id/submit", h.Submit)
		orders.POST("/:id/approve", middleware.RequireApprover(), h.Approve)
		orders.POST("/:id/reject", middleware.RequireApprover(), h.Reject)
		orders.POST("/:id/issue", h.Issue)
		orders.POST("/:id/receive", h.Receive)
		orders.POST("/:id/requestModification", h.RequestModification)
		orders.POST("/:id/resolveModification", middleware.RequireAdmin(), h.ResolveModification)
	}
}

// Create godoc
// @Summary  Create a purchase order
// @Tags     purchase-orders
// @Router   /purchaseOrders [post]
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req procurementapp.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	order, err := h.orderService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List godoc
// @Summary  List purchase orders
// @Tags     purchase-orders
// @Router   /purchaseOrders [get]
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := procurementapp.DocumentListFilter{
		Search:   listReq.Search,
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
		OrderBy:  listReq.OrderBy,
		OrderDir: listReq.OrderDir,
	}
	projectID, ok := h.projectScope(c)
	if !ok {
		return
	}
	filter.ProjectID = projectID
	if status := c.Query("status"); status != "" {
		filter.Status = &status
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	orders, total, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary  Get a purchase order
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update godoc
// @Summary  Update a draft purchase order
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id} [put]
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	var req procurementapp.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete godoc
// @Summary  Delete a draft purchase order
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	if err := h.orderService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit godoc
// @Summary  Submit a purchase order for approval
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/submit [post]
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.orderService.Submit(c.Request.Context(), id, userID)
	})
}

// Approve godoc
// @Summary  Approve a purchase order and reserve its budget
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/approve [post]
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.orderService.Approve(c.Request.Context(), id, userID)
	})
}

// Reject godoc
// @Summary  Reject a purchase order with a reason
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/reject [post]
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req procurementapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.Reject(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Issue godoc
// @Summary  Mark a purchase order as issued to the vendor
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/issue [post]
func (h *PurchaseOrderHandler) Issue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Receive godoc
// @Summary  Mark a purchase order as received
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/receive [post]
func (h *PurchaseOrderHandler) Receive(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.orderService.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RequestModification godoc
// @Summary  Flag an approved purchase order for rework
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/requestModification [post]
func (h *PurchaseOrderHandler) RequestModification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req procurementapp.RequestModificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.orderService.RequestModification(c.Request.Context(), id, userID, req.Note)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ResolveModification godoc
// @Summary  Clear the modification flag on a purchase order
// @Tags     purchase-orders
// @Router   /purchaseOrders/{id}/resolveModification [post]
func (h *PurchaseOrderHandler) ResolveModification(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error) {
		return h.orderService.ResolveModification(c.Request.Context(), id, userID)
	})
}

// transition runs an actor-attributed status change shared by several endpoints
func (h *PurchaseOrderHandler) transition(c *gin.Context, fn func(id, userID uuid.UUID) (*procurementapp.PurchaseOrderResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	order, err := fn(id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
