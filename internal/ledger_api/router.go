package ledger_api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/handler"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/middleware"
)

type handlers struct {
	items          *handler.ItemHandler
	budgets        *handler.BudgetHandler
	checkout       *handler.CheckoutHandler
	paymentMethods *handler.PaymentMethodHandler
	receipts       *handler.ReceiptHandler
	events         *handler.EventHandler
}

// setupRouter configures API routes and middleware for the application
func setupRouter(logger *slog.Logger, r *gin.Engine, auth config.AuthConfig, h handlers) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	v1 := r.Group("/api/v1")
	if auth.Enabled() {
		v1.Use(middleware.BearerAuth(logger, auth))
	}
	{
		segments := v1.Group("/segments/:segmentId")
		{
			segments.GET("/items", h.items.List)
			segments.POST("/items", h.items.Create)
			segments.POST("/items/from-deal", h.items.CreateFromDeal)
			segments.PATCH("/items/:itemId", h.items.Update)
			segments.DELETE("/items/:itemId", h.items.Delete)

			segments.PUT("/budget", h.budgets.SetTotal)
			segments.GET("/accounting", h.budgets.GetAccounting)
			segments.POST("/accounting", h.budgets.ComputeAccounting)
			segments.POST("/auto-budget", h.budgets.AutoBudget)

			segments.POST("/checkout", h.checkout.Checkout)
			segments.GET("/checkout", h.checkout.Status)

			segments.GET("/events", h.events.Stream)
			segments.GET("/receipts", h.receipts.ListBySegment)
		}

		receipts := v1.Group("/receipts")
		{
			receipts.GET("/:orderId", h.receipts.GetByID)
			receipts.GET("/:orderId/export", h.receipts.Export)
		}

		methods := v1.Group("/payment-methods")
		{
			methods.GET("", h.paymentMethods.List)
			methods.POST("", h.paymentMethods.Create)
			methods.PUT("/selected", h.paymentMethods.Select)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
