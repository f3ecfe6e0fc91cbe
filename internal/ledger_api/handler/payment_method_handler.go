package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

// PaymentMethodHandler handles the payment method registry
type PaymentMethodHandler struct {
	paymentMethodService service.PaymentMethodService
	logger               *slog.Logger
}

// NewPaymentMethodHandler creates a new payment method handler
func NewPaymentMethodHandler(logger *slog.Logger, paymentMethodService service.PaymentMethodService) *PaymentMethodHandler {
	return &PaymentMethodHandler{
		paymentMethodService: paymentMethodService,
		logger:               logger,
	}
}

func (h *PaymentMethodHandler) List(c *gin.Context) {
	RespondOK(c, h.paymentMethodService.ListPaymentMethods(c.Request.Context()))
}

// Create registers a method and makes it the selected one
func (h *PaymentMethodHandler) Create(c *gin.Context) {
	var req AddPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	method, err := h.paymentMethodService.AddPaymentMethod(c.Request.Context(), budget.PaymentMethod{
		ID:    req.ID,
		Type:  req.Type,
		Label: req.Label,
		Last4: req.Last4,
		Brand: req.Brand,
	})
	if err != nil {
		respondError(c, h.logger, "Failed to add payment method", err)
		return
	}

	RespondCreated(c, method)
}

// Select changes the selected method, 404 for unknown ids
func (h *PaymentMethodHandler) Select(c *gin.Context) {
	var req SelectPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if err := h.paymentMethodService.SelectPaymentMethod(c.Request.Context(), req.ID); err != nil {
		respondError(c, h.logger, "Failed to select payment method", err)
		return
	}

	RespondOK(c, h.paymentMethodService.ListPaymentMethods(c.Request.Context()))
}
