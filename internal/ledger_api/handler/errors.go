package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
	"github.com/omnitrip-budget-ledger/internal/platform/dealsearch"
)

// respondError maps domain errors to status codes. Anything unknown is logged
// and reported as a 500.
func respondError(c *gin.Context, logger *slog.Logger, msg string, err error) {
	var authErr budget.AuthorizationError
	var receiptNotFound receipt.ErrReceiptNotFound

	switch {
	case errors.Is(err, budget.ErrDuplicateItem):
		RespondConflict(c, "DUPLICATE_ITEM", err.Error())
	case errors.Is(err, budget.ErrDuplicateItemID):
		RespondConflict(c, "DUPLICATE_ITEM_ID", err.Error())
	case errors.Is(err, budget.ErrItemLocked):
		RespondConflict(c, "ITEM_LOCKED", err.Error())
	case errors.Is(err, budget.ErrItemNotFound):
		RespondNotFound(c, "Budget item not found")
	case errors.Is(err, budget.ErrPaymentMethodNotFound):
		RespondNotFound(c, "Payment method not found")
	case errors.Is(err, budget.ErrInvalidAmount),
		errors.Is(err, budget.ErrInvalidItemType),
		errors.Is(err, budget.ErrInvalidItemSource),
		errors.Is(err, budget.ErrInvalidPaymentMethod):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		RespondConflict(c, "CHECKOUT_IN_PROGRESS", err.Error())
	case errors.Is(err, checkout.ErrNoPaymentMethod):
		RespondWithError(c, http.StatusBadRequest, "NO_PAYMENT_METHOD", err.Error())
	case errors.Is(err, checkout.ErrNothingToCheckout):
		RespondWithError(c, http.StatusBadRequest, "NOTHING_TO_CHECKOUT", err.Error())
	case errors.As(err, &authErr):
		RespondWithError(c, http.StatusPaymentRequired, "AUTHORIZATION_FAILED", authErr.Reason)
	case errors.Is(err, dealsearch.ErrDealSearchUnavailable):
		RespondWithError(c, http.StatusServiceUnavailable, "DEAL_SEARCH_UNAVAILABLE", err.Error())
	case errors.As(err, &receiptNotFound):
		RespondNotFound(c, "Receipt not found")
	default:
		logger.Error(msg, "error", err, "path", c.Request.URL.Path)
		RespondInternalError(c)
	}
}
