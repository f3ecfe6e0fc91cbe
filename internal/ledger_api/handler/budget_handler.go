package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
	"github.com/omnitrip-budget-ledger/internal/planning"
)

// BudgetHandler handles segment budget, accounting and auto-budget requests
type BudgetHandler struct {
	budgetService     service.BudgetService
	autoBudgetService service.AutoBudgetService
	logger            *slog.Logger
}

// NewBudgetHandler creates a new budget handler
func NewBudgetHandler(logger *slog.Logger, budgetService service.BudgetService, autoBudgetService service.AutoBudgetService) *BudgetHandler {
	return &BudgetHandler{
		budgetService:     budgetService,
		autoBudgetService: autoBudgetService,
		logger:            logger,
	}
}

// SetTotal overwrites the segment ceiling and returns the new accounting
func (h *BudgetHandler) SetTotal(c *gin.Context) {
	var req SetBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	accounting, err := h.budgetService.SetTotalBudget(c.Request.Context(), c.Param("segmentId"), *req.TotalBudget)
	if err != nil {
		respondError(c, h.logger, "Failed to set total budget", err)
		return
	}

	RespondOK(c, accounting)
}

// GetAccounting returns the accounting without schedule items
func (h *BudgetHandler) GetAccounting(c *gin.Context) {
	RespondOK(c, h.budgetService.Accounting(c.Request.Context(), c.Param("segmentId"), nil))
}

// ComputeAccounting returns the accounting including the posted schedule items
func (h *BudgetHandler) ComputeAccounting(c *gin.Context) {
	var req AccountingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	RespondOK(c, h.budgetService.Accounting(c.Request.Context(), c.Param("segmentId"), req.ScheduleItems))
}

// AutoBudget adds the cheapest flight and hotel for a generated plan
func (h *BudgetHandler) AutoBudget(c *gin.Context) {
	var plan planning.Plan
	if err := c.ShouldBindJSON(&plan); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.autoBudgetService.Apply(c.Request.Context(), c.Param("segmentId"), plan)
	if err != nil {
		respondError(c, h.logger, "Auto-budget failed", err)
		return
	}

	RespondOK(c, result)
}
