package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/data/mongo"
	"github.com/omnitrip-budget-ledger/internal/data/postgres"
	"github.com/omnitrip-budget-ledger/internal/ledger"
	"github.com/omnitrip-budget-ledger/internal/ledger_api"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/components"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/outbox_poller"
	"github.com/omnitrip-budget-ledger/internal/ledger_api/service"
	"github.com/omnitrip-budget-ledger/internal/logger"
	"github.com/omnitrip-budget-ledger/internal/planning"
	"github.com/omnitrip-budget-ledger/internal/platform/dealsearch"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/producers"
	"github.com/omnitrip-budget-ledger/internal/platform/persistence"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("ledger_api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Ledger API",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
		"storage_backend", cfg.Storage.Backend,
	)

	// Postgres holds the receipt outbox regardless of the snapshot backend
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	snapshotRepo, closeSnapshots, err := components.OpenSnapshotRepository(appCtx, log, cfg, postgresDB)
	if err != nil {
		log.Error("Failed to initialize snapshot store", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	kafkaProducer, err := producers.NewReceiptProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize receipt Kafka producer", "error", err)
		os.Exit(1)
	}

	// Ledger store, mirrored to the snapshot backend
	mirror := ledger.NewMirror(log, snapshotRepo, cfg.Ledger.MirrorWriteTimeout)
	store := ledger.NewStore(log, ledger.Options{
		BaseCurrency:       cfg.Ledger.BaseCurrency,
		DefaultTotalBudget: cfg.Ledger.DefaultTotalBudget,
		Persister:          mirror,
	})
	if err := store.Load(appCtx, snapshotRepo); err != nil {
		log.Error("Failed to load ledger state", "error", err)
		os.Exit(1)
	}
	mirror.Start(appCtx)

	if cfg.Ledger.RecoverOnStart {
		if recovered := store.RecoverInterrupted(); len(recovered) > 0 {
			log.Warn("Marked interrupted items as failed", "count", len(recovered))
		}
	}

	// Repositories
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	receiptRepo := mongo.NewReceiptRepository(log, mongoDB.Database(), cfg.MongoDB.ReceiptCollection)

	// Checkout
	recorder := components.NewOutboxReceiptRecorder(log, postgresDB, outboxRepo)
	workflow, releasePool, err := components.CreateCheckoutWorkflow(log, cfg, store, recorder)
	if err != nil {
		log.Error("Failed to initialize checkout workflow", "error", err)
		os.Exit(1)
	}

	// Deal search is optional; auto-budgeting reports it unavailable without it
	var finder planning.DealFinder
	gigaChat, err := dealsearch.NewGigaChatFinder(appCtx, log, cfg.DealSearch)
	switch {
	case errors.Is(err, dealsearch.ErrDealSearchUnavailable):
		log.Info("Deal search is not configured, auto-budgeting is disabled")
	case err != nil:
		log.Error("Failed to initialize deal search", "error", err)
		os.Exit(1)
	default:
		finder = gigaChat
		defer gigaChat.Close()
	}

	server := ledger_api.NewServer(log, cfg, ledger_api.Services{
		Budget:         service.NewBudgetService(log, store),
		PaymentMethods: service.NewPaymentMethodService(log, store),
		Checkout:       workflow,
		AutoBudget:     planning.NewAutoBudgeter(log, store, finder),
		Receipts:       service.NewReceiptService(receiptRepo),
		Events:         store,
	})

	publisher := outbox_poller.NewReceiptPublisher(outboxRepo, kafkaProducer, log)
	poller := outbox_poller.NewPoller(&cfg.Outbox, outboxRepo, publisher, log)

	errChan := make(chan error, 1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		poller.Start(appCtx)
	}()

	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port, "auth_enabled", cfg.Auth.Enabled())
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	log.Info("Starting graceful shutdown...")

	// Stop accepting requests first so that running checkouts can finish
	if err = server.Stop(shutdownCtx, cfg.Server.ShutdownTimeout); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	cancelAppCtx()
	wg.Wait()
	releasePool()

	if err = mirror.Close(shutdownCtx); err != nil {
		log.Error("Error flushing ledger snapshots", "error", err)
	}
	closeSnapshots()

	if err = kafkaProducer.Close(); err != nil {
		log.Error("Error closing Kafka producer", "error", err)
	}

	postgresDB.Close()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	if serverErr != nil {
		log.Error("Ledger API shutdown with errors", "error", serverErr)
		os.Exit(1)
	}
	log.Info("Ledger API shutdown completed")
}
