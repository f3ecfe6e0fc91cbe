package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/middleware"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

// CheckoutHandler handles checkout runs
type CheckoutHandler struct {
	checkoutService service.CheckoutService
	logger          *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(logger *slog.Logger, checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		logger:          logger,
	}
}

// Checkout pays for the segment's eligible items and returns the receipt.
// The request blocks until every supplier call has settled.
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	segmentID := c.Param("segmentId")
	correlationID := middleware.GetCorrelationID(c)
	logger := h.logger.With("correlation_id", correlationID, "segment_id", segmentID)

	receipt, err := h.checkoutService.Checkout(c.Request.Context(), checkout.Request{
		SegmentID:     segmentID,
		CorrelationID: correlationID,
	})
	if err != nil {
		logger.Warn("Checkout did not complete", "error", err)
		respondError(c, logger, "Checkout failed", err)
		return
	}

	logger.Info("Checkout completed",
		"order_id", receipt.OrderID,
		"confirmed", receipt.ConfirmedCount(),
		"failed", receipt.FailedCount(),
	)
	RespondCreated(c, receipt)
}

// Status reports the segment's checkout step
func (h *CheckoutHandler) Status(c *gin.Context) {
	segmentID := c.Param("segmentId")
	RespondOK(c, CheckoutStatusResponse{
		SegmentID: segmentID,
		Step:      h.checkoutService.Status(segmentID),
	})
}
