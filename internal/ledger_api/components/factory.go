package components

import (
	"fmt"
	"log/slog"

	"github.com/omnitrip-budget-ledger/internal/checkout"
	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/platform/gateway"
)

// CreateCheckoutWorkflow wires the checkout workflow with the simulated payment
// and supplier collaborators and a fulfillment pool of WORKER_POOL_SIZE workers.
// The returned release func frees the pool and must be called on shutdown.
func CreateCheckoutWorkflow(
	logger *slog.Logger,
	cfg *config.Config,
	ledger checkout.Ledger,
	recorder checkout.ReceiptRecorder,
	opts ...gateway.Option,
) (*checkout.Workflow, func(), error) {
	pool, err := checkout.NewFulfillmentPool(logger, cfg.WorkerPool.Size)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create fulfillment pool: %w", err)
	}

	authorizer := gateway.NewSimulatedAuthorizer(logger, cfg.Payment, opts...)
	supplier := gateway.NewSimulatedSupplier(logger, cfg.Fulfillment, opts...)

	workflow := checkout.NewWorkflow(logger, ledger, authorizer, supplier, pool, recorder)

	logger.Info("Created checkout workflow",
		"pool_size", pool.Capacity(),
		"payment_failure_rate", cfg.Payment.FailureRate,
		"fulfillment_success_rate", cfg.Fulfillment.SuccessRate,
	)
	return workflow, pool.Release, nil
}
