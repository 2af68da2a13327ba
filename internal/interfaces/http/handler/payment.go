package handler

import (
	paymentapp "github.com/buildledger/backend/internal/application/payment"
	"github.com/buildledger/backend/internal/interfaces/http/dto"
	"github.com/buildledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *paymentapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *paymentapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RegisterRoutes registers payment routes on the API group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/allocationPreview", h.Preview)
		payments.POST("", h.Create)
		payments.GET("", h.List)
		payments.GET("/:id", h.GetByID)
		payments.PUT("/:id", h.Update)
		payments.DELETE("/:id", h.Delete)

		payments.POST("/:id/submit", h.Submit)
		payments.POST("/:id/approve", middleware.RequireApprover(), h.Approve)
		payments.POST("/:id/reject", middleware.RequireApprover(), h.Reject)
		payments.POST("/:id/markPaid", h.MarkPaid)
	}
}

// Preview godoc
// @Summary  Preview the clamped allocation a payment would carry
// @Tags     payments
// @Router   /payments/allocationPreview [post]
func (h *PaymentHandler) Preview(c *gin.Context) {
	var req paymentapp.AllocationPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	preview, err := h.paymentService.Preview(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, preview)
}

// Create godoc
// @Summary  Create a payment against a purchase order or vendor invoice
// @Tags     payments
// @Router   /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req paymentapp.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	pay, err := h.paymentService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, pay)
}

// List godoc
// @Summary  List payments
// @Tags     payments
// @Router   /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := paymentapp.PaymentListFilter{
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
	if paymentType := c.Query("type"); paymentType != "" {
		filter.Type = &paymentType
	}
	if docIDStr := c.Query("documentId"); docIDStr != "" {
		docID, err := uuid.Parse(docIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid document ID")
			return
		}
		filter.DocumentID = &docID
	}

	payments, total, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, payments, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary  Get a payment
// @Tags     payments
// @Router   /payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	pay, err := h.paymentService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pay)
}

// Update godoc
// @Summary  Replace the allocation of a draft payment
// @Tags     payments
// @Router   /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	var req paymentapp.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pay, err := h.paymentService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pay)
}

// Delete godoc
// @Summary  Delete a draft payment
// @Tags     payments
// @Router   /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit godoc
// @Summary  Submit a payment for approval
// @Tags     payments
// @Router   /payments/{id}/submit [post]
func (h *PaymentHandler) Submit(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*paymentapp.PaymentResponse, error) {
		return h.paymentService.Submit(c.Request.Context(), id, userID)
	})
}

// Approve godoc
// @Summary  Approve a pending payment
// @Tags     payments
// @Router   /payments/{id}/approve [post]
func (h *PaymentHandler) Approve(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*paymentapp.PaymentResponse, error) {
		return h.paymentService.Approve(c.Request.Context(), id, userID)
	})
}

// Reject godoc
// @Summary  Reject a pending payment with a reason
// @Tags     payments
// @Router   /payments/{id}/reject [post]
func (h *PaymentHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	var req paymentapp.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pay, err := h.paymentService.Reject(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pay)
}

// MarkPaid godoc
// @Summary  Settle an approved payment
// @Tags     payments
// @Router   /payments/{id}/markPaid [post]
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	h.transition(c, func(id, userID uuid.UUID) (*paymentapp.PaymentResponse, error) {
		return h.paymentService.MarkPaid(c.Request.Context(), id, userID)
	})
}

// transition runs an actor-attributed status change shared by several endpoints
func (h *PaymentHandler) transition(c *gin.Context, fn func(id, userID uuid.UUID) (*paymentapp.PaymentResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	pay, err := fn(id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pay)
}
