package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appcalc "github.com/emgea/siscalculo/internal/application/calc"
	"github.com/emgea/siscalculo/internal/interfaces/http/middleware"
)

// PrejudiceHandler handles prejudice-clause API endpoints
type PrejudiceHandler struct {
	BaseHandler
	prejudice *appcalc.PrejudiceService
}

// NewPrejudiceHandler creates a new PrejudiceHandler
func NewPrejudiceHandler(prejudice *appcalc.PrejudiceService) *PrejudiceHandler {
	return &PrejudiceHandler{prejudice: prejudice}
}

// RegisterRoutes registers all prejudice routes
func (h *PrejudiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	p := rg.Group("/siscalculo/prejudice")
	{
		p.GET("/contracts", h.Contracts)
		p.GET("/contracts/:contract/dates", h.Dates)
		p.POST("/compute", h.Compute)
		p.POST("/save", h.Save)
	}
}

// Contracts lists contracts holding persisted runs.
func (h *PrejudiceHandler) Contracts(c *gin.Context) {
	contracts, err := h.prejudice.Contracts(c.Request.Context())
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, contracts)
}

// Dates lists the persisted runs of one contract.
func (h *PrejudiceHandler) Dates(c *gin.Context) {
	dates, err := h.prejudice.DatesFor(c.Request.Context(), c.Param("contract"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, dates)
}

// ComputeRequest is the body of POST /prejudice/compute.
type ComputeRequest struct {
	Contract    string `json:"contract" binding:"required"`
	LaterDate   string `json:"later_date" binding:"required"`
	EarlierDate string `json:"earlier_date" binding:"required"`
	IndexID     int    `json:"index_id"`
}

// Compute measures the loss between two persisted runs.
func (h *PrejudiceHandler) Compute(c *gin.Context) {
	var req ComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}
	later, err := parseDateParam(req.LaterDate)
	if err != nil {
		h.BadRequest(c, "later_date must be YYYY-MM-DD or DD/MM/YYYY")
		return
	}
	earlier, err := parseDateParam(req.EarlierDate)
	if err != nil {
		h.BadRequest(c, "earlier_date must be YYYY-MM-DD or DD/MM/YYYY")
		return
	}

	result, err := h.prejudice.Compute(c.Request.Context(), req.Contract, later, earlier, req.IndexID)
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, result)
}

// SaveRequest is the body of POST /prejudice/save.
type SaveRequest struct {
	Contract string          `json:"contract" binding:"required"`
	Value    decimal.Decimal `json:"value"`
}

// Save books a prejudice loss onto the receivables ledger.
func (h *PrejudiceHandler) Save(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	id, err := h.prejudice.Save(c.Request.Context(), req.Contract, req.Value, middleware.GetActingUser(c))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Created(c, gin.H{"ledger_id": id})
}
