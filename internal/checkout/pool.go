package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/panjf2000/ants/v2"
)

// Reasons recorded when a confirmation never produced a supplier answer.
const (
	ReasonSupplierError       = "Supplier error"
	ReasonFulfillmentRejected = "Fulfillment queue unavailable"
)

// FulfillmentPool runs supplier confirmations on a bounded goroutine pool.
type FulfillmentPool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewFulfillmentPool creates a pool with at most size concurrent confirmations.
// A size of zero or less leaves the pool unbounded.
func NewFulfillmentPool(logger *slog.Logger, size int) (*FulfillmentPool, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create fulfillment pool: %w", err)
	}
	return &FulfillmentPool{
		pool:   pool,
		logger: logger.With("component", "fulfillment_pool"),
	}, nil
}

// ConfirmAll issues one confirmation per item and waits until every one has settled.
// The result is index-aligned with items. Errors and panics become failed outcomes
// for the affected item only.
func (p *FulfillmentPool) ConfirmAll(ctx context.Context, items []budget.Item, confirmer Confirmer) []budget.ItemConfirmation {
	results := make([]budget.ItemConfirmation, len(items))
	var wg sync.WaitGroup

	for i := range items {
		item := items[i]
		idx := i
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			results[idx] = p.confirmOne(ctx, item, confirmer)
		})
		if err != nil {
			wg.Done()
			p.logger.Error("Failed to submit confirmation to pool", "item_id", item.ID, "error", err)
			results[idx] = budget.ItemConfirmation{ItemID: item.ID, Status: budget.ConfirmationFailed, Reason: ReasonFulfillmentRejected}
		}
	}

	wg.Wait()
	return results
}

func (p *FulfillmentPool) confirmOne(ctx context.Context, item budget.Item, confirmer Confirmer) (result budget.ItemConfirmation) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Supplier confirmation panicked", "item_id", item.ID, "panic", r)
			result = budget.ItemConfirmation{ItemID: item.ID, Status: budget.ConfirmationFailed, Reason: ReasonSupplierError}
		}
	}()

	confirmation, err := confirmer.Confirm(ctx, item)
	if err != nil {
		p.logger.Warn("Supplier confirmation failed", "item_id", item.ID, "error", err)
		return budget.ItemConfirmation{ItemID: item.ID, Status: budget.ConfirmationFailed, Reason: ReasonSupplierError}
	}

	confirmation.ItemID = item.ID
	if confirmation.Status != budget.ConfirmationConfirmed {
		confirmation.Status = budget.ConfirmationFailed
	}
	return confirmation
}

// Release shuts the pool down.
func (p *FulfillmentPool) Release() {
	p.logger.Info("Shutting down fulfillment pool", "running_workers", p.pool.Running())
	p.pool.Release()
}

// Running returns the number of confirmations currently executing.
func (p *FulfillmentPool) Running() int {
	return p.pool.Running()
}

// Capacity returns the pool size.
func (p *FulfillmentPool) Capacity() int {
	return p.pool.Cap()
}
