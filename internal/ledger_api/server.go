package ledger_api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/handler"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
)

// Services are the application services behind the HTTP handlers
type Services struct {
	Budget         service.BudgetService
	PaymentMethods service.PaymentMethodService
	Checkout       service.CheckoutService
	AutoBudget     service.AutoBudgetService
	Receipts       service.ReceiptService
	Events         service.EventSource
}

// Server handles HTTP requests and manages the application's lifecycle
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	httpRouter *gin.Engine
}

// NewServer creates and configures a new HTTP server with the given services
func NewServer(log *slog.Logger, cfg *config.Config, svc Services) *Server {
	if cfg.Application.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	httpRouter := gin.New()

	setupRouter(log, httpRouter, cfg.Auth, handlers{
		items:          handler.NewItemHandler(log, svc.Budget),
		budgets:        handler.NewBudgetHandler(log, svc.Budget, svc.AutoBudget),
		checkout:       handler.NewCheckoutHandler(log, svc.Checkout),
		paymentMethods: handler.NewPaymentMethodHandler(log, svc.PaymentMethods),
		receipts:       handler.NewReceiptHandler(log, svc.Receipts),
		events:         handler.NewEventHandler(log, svc.Events, cfg.Ledger.SubscriberBuffer),
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      httpRouter,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Shutdown waits for active requests and event streams never finish on
	// their own, so request contexts are cancelled when shutdown begins.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	httpServer.BaseContext = func(net.Listener) context.Context { return baseCtx }
	httpServer.RegisterOnShutdown(cancelRequests)

	return &Server{
		logger:     log,
		httpServer: httpServer,
		httpRouter: httpRouter,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.httpRouter
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server within the shutdown timeout
func (s *Server) Stop(ctx context.Context, timeout time.Duration) error {
	s.logger.Info("stopping HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop HTTP server: %w", err)
	}
	return nil
}
