package handler

import (
	sequenceapp "github.com/buildledger/backend/internal/application/sequence"
	"github.com/gin-gonic/gin"
)

// SequenceHandler handles document number sequence API endpoints
type SequenceHandler struct {
	BaseHandler
	sequenceService *sequenceapp.SequenceService
}

// NewSequenceHandler creates a new SequenceHandler
func NewSequenceHandler(sequenceService *sequenceapp.SequenceService) *SequenceHandler {
	return &SequenceHandler{sequenceService: sequenceService}
}

// RegisterRoutes registers sequence routes on the API group
func (h *SequenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sequences := rg.Group("/sequences")
	{
		sequences.GET("", h.List)
		sequences.GET("/:entity", h.Peek)
		sequences.PUT("/:entity", h.Set)
		sequences.POST("/:entity/next", h.Next)
	}
}

// List godoc
// @Summary  List all document number counters
// @Tags     sequences
// @Router   /sequences [get]
func (h *SequenceHandler) List(c *gin.Context) {
	sequences, err := h.sequenceService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sequences)
}

// Peek godoc
// @Summary  Show the next number a counter would allocate
// @Tags     sequences
// @Router   /sequences/{entity} [get]
func (h *SequenceHandler) Peek(c *gin.Context) {
	seq, err := h.sequenceService.Peek(c.Request.Context(), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// Set godoc
// @Summary  Override the next number a counter will allocate
// @Tags     sequences
// @Router   /sequences/{entity} [put]
func (h *SequenceHandler) Set(c *gin.Context) {
	var req sequenceapp.SetSequenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	seq, err := h.sequenceService.Set(c.Request.Context(), c.Param("entity"), req.Counter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, seq)
}

// Next godoc
// @Summary  Allocate the next number for a counter
// @Tags     sequences
// @Router   /sequences/{entity}/next [post]
func (h *SequenceHandler) Next(c *gin.Context) {
	n, err := h.sequenceService.Next(c.Request.Context(), c.Param("entity"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"entityKey": c.Param("entity"), "number": n})
}
