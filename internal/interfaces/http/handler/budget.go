package handler

import (
	budgetapp "github.com/buildledger/backend/internal/application/budget"
	"github.com/buildledger/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BudgetHandler handles budget item and category API endpoints
type BudgetHandler struct {
	BaseHandler
	itemService     *budgetapp.BudgetItemService
	categoryService *budgetapp.CategoryService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(itemService *budgetapp.BudgetItemService, categoryService *budgetapp.CategoryService) *BudgetHandler {
	return &BudgetHandler{
		itemService:     itemService,
		categoryService: categoryService,
	}
}

// RegisterRoutes registers budget routes on the API group
func (h *BudgetHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/budgetItems")
	{
		items.POST("", h.Create)
		items.GET("", h.List)
		items.GET("/:id", h.GetByID)
		items.PUT("/:id", h.Update)
		items.DELETE("/:id", h.Delete)
	}
	categories := rg.Group("/budgetCategories")
	{
		categories.GET("", h.ListCategories)
		categories.PUT("", h.ReplaceCategories)
	}
}

// Create godoc
// @Summary  Create a budget item
// @Tags     budget
// @Router   /budgetItems [post]
func (h *BudgetHandler) Create(c *gin.Context) {
	var req budgetapp.CreateBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// List godoc
// @Summary  List budget items
// @Tags     budget
// @Router   /budgetItems [get]
func (h *BudgetHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := budgetapp.BudgetItemListFilter{
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
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}

	items, total, err := h.itemService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// GetByID godoc
// @Summary  Get a budget item
// @Tags     budget
// @Router   /budgetItems/{id} [get]
func (h *BudgetHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget item ID")
		return
	}

	item, err := h.itemService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Update godoc
// @Summary  Update a budget item's name or budgeted amount
// @Tags     budget
// @Router   /budgetItems/{id} [put]
func (h *BudgetHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget item ID")
		return
	}

	var req budgetapp.UpdateBudgetItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete godoc
// @Summary  Delete a budget item
// @Tags     budget
// @Router   /budgetItems/{id} [delete]
func (h *BudgetHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid budget item ID")
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListCategories godoc
// @Summary  List budget category names
// @Tags     budget
// @Router   /budgetCategories [get]
func (h *BudgetHandler) ListCategories(c *gin.Context) {
	names, err := h.categoryService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, names)
}

// ReplaceCategories godoc
// @Summary  Replace the budget category list
// @Tags     budget
// @Router   /budgetCategories [put]
func (h *BudgetHandler) ReplaceCategories(c *gin.Context) {
	var req budgetapp.ReplaceCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	names, err := h.categoryService.Replace(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, names)
}
