package handler

import (
	procurementapp "github.com/buildledger/backend/internal/application/procurement"
	"github.com/buildledger/backend/internal/interfaces/http/dto"
	"github.com/buildledger/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// VendorInvoiceHandler handles vendor invoice API endpoints
type VendorInvoiceHandler struct {
	BaseHandler
	invoiceService *procurementapp.VendorInvoiceService
}

// NewVendorInvoiceHandler creates a new VendorInvoiceHandler
func NewVendorInvoiceHandler(invoiceService *procurementapp.VendorInvoiceService) *VendorInvoiceHandler {
	return &VendorInvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers vendor invoice routes on the API group
func (h *VendorInvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/vendorInvoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("", h.List)
		invoices.GET("/:id", h.GetByID)
		invoices.PUT("/:id", h.Update)
		invoices.DELETE("/:id", h.Delete)

		invoices.POST("/:id/submit", h.Submit)
		invoices.POST("/:id/approve", middleware.RequireApprover(), h.Approve)
		invoices.POST("/:id/reject", middleware.RequireApprover(), h.Reject)
	}
}

// Create godoc
// @Summary  Create a vendor invoice
// @Tags     vendor-invoices
// @Router   /vendorInvoices [post]
func (h *VendorInvoiceHandler) Create(c *gin.Context) {
	var req procurementapp.CreateVendorInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if userID, err := getUserID(c); err == nil {
		req.CreatedBy = &userID
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List godoc
// @Summary  List vendor invoices, optionally scoped to one purchase order
// @Tags     vendor-invoices
// @Router   /vendorInvoices [get]
func (h *VendorInvoiceHandler) List(c *gin.Context) {
	if poIDStr := c.Query("poId"); poIDStr != "" {
		poID, err := uuid.Parse(poIDStr)
		if err != nil {
			h.BadRequest(c, "Invalid purchase order ID")
			return
		}
		invoices, err := h.invoiceService.ListByPurchaseOrder(c.Request.Context(), poID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, invoices)
		return
	}

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

	invoices, total, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary  Get a vendor invoice
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id} [get]
func (h *VendorInvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Update godoc
// @Summary  Update a draft vendor invoice
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id} [put]
func (h *VendorInvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
		return
	}

	var req procurementapp.UpdateVendorInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete godoc
// @Summary  Delete a draft vendor invoice
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id} [delete]
func (h *VendorInvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit godoc
// @Summary  Submit a vendor invoice for approval
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id}/submit [post]
func (h *VendorInvoiceHandler) Submit(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	invoice, err := h.invoiceService.Submit(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Approve godoc
// @Summary  Approve a vendor invoice and reserve its budget
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id}/approve [post]
func (h *VendorInvoiceHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "User identity required")
		return
	}

	invoice, err := h.invoiceService.Approve(c.Request.Context(), id, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Reject godoc
// @Summary  Reject a vendor invoice with a reason
// @Tags     vendor-invoices
// @Router   /vendorInvoices/{id}/reject [post]
func (h *VendorInvoiceHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid vendor invoice ID")
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

	invoice, err := h.invoiceService.Reject(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
