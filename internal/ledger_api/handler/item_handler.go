package handler

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

// ItemHandler handles HTTP requests for a segment's cart items
type ItemHandler struct {
	budgetService service.BudgetService
	logger        *slog.Logger
}

// NewItemHandler creates a new item handler
func NewItemHandler(logger *slog.Logger, budgetService service.BudgetService) *ItemHandler {
	return &ItemHandler{
		budgetService: budgetService,
		logger:        logger,
	}
}

// List returns the segment's items in insertion order
func (h *ItemHandler) List(c *gin.Context) {
	segmentID := c.Param("segmentId")
	items := h.budgetService.ListItems(c.Request.Context(), segmentID)
	RespondOK(c, ItemListResponse{SegmentID: segmentID, Items: items})
}

// Create adds a manual item, rejecting duplicates with 409
func (h *ItemHandler) Create(c *gin.Context) {
	var req CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.budgetService.AddItem(c.Request.Context(), service.NewItemInput{
		ID:           req.ID,
		SegmentID:    c.Param("segmentId"),
		Source:       req.Source,
		Type:         req.Type,
		Title:        req.Title,
		ProviderName: req.ProviderName,
		Amount:       req.Amount,
		Currency:     strings.ToUpper(req.Currency),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Travelers:    req.Travelers,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to add budget item", err)
		return
	}

	RespondCreated(c, item)
}

// CreateFromDeal adds an item mapped from a deal search result
func (h *ItemHandler) CreateFromDeal(c *gin.Context) {
	var req AddFromDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Deal.Title) == "" {
		RespondBadRequest(c, "deal.title is required")
		return
	}

	item, err := h.budgetService.AddItemFromDeal(c.Request.Context(), c.Param("segmentId"), req.Deal, req.ScheduleItem)
	if err != nil {
		respondError(c, h.logger, "Failed to add deal to budget", err)
		return
	}

	RespondCreated(c, item)
}

// Update applies a user edit to a planned item
func (h *ItemHandler) Update(c *gin.Context) {
	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	item, err := h.budgetService.UpdateItem(c.Request.Context(), c.Param("segmentId"), c.Param("itemId"), req.Patch())
	if err != nil {
		respondError(c, h.logger, "Failed to update budget item", err)
		return
	}

	RespondOK(c, item)
}

// Delete removes an item. Unknown ids answer 204 as well.
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.budgetService.DeleteItem(c.Request.Context(), c.Param("segmentId"), c.Param("itemId")); err != nil {
		respondError(c, h.logger, "Failed to delete budget item", err)
		return
	}

	RespondNoContent(c)
}
