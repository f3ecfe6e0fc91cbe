package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

// ReceiptHandler serves archived order receipts
type ReceiptHandler struct {
	receiptService service.ReceiptService
	logger         *slog.Logger
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(logger *slog.Logger, receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
		logger:         logger,
	}
}

// ListBySegment returns the newest receipts for a segment
func (h *ReceiptHandler) ListBySegment(c *gin.Context) {
	var params ReceiptListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	receipts, err := h.receiptService.ListReceipts(c.Request.Context(), c.Param("segmentId"), params.Limit)
	if err != nil {
		respondError(c, h.logger, "Failed to list receipts", err)
		return
	}

	RespondWithList(c, receipts, len(receipts), params.Limit)
}

// GetByID returns one archived receipt
func (h *ReceiptHandler) GetByID(c *gin.Context) {
	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		respondError(c, h.logger, "Failed to get receipt", err)
		return
	}

	RespondOK(c, receipt)
}

// Export returns the receipt as a downloadable receipt_<orderId>.json file
func (h *ReceiptHandler) Export(c *gin.Context) {
	orderID := c.Param("orderId")
	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, h.logger, "Failed to export receipt", err)
		return
	}

	body, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		h.logger.Error("Failed to encode receipt", "order_id", orderID, "error", err)
		RespondInternalError(c)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="receipt_%s.json"`, receipt.OrderID))
	c.Data(http.StatusOK, "application/json", body)
}
