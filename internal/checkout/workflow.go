// Package checkout pays for a segment's cart: one payment authorization, then an
// independent supplier confirmation per eligible item, then a receipt.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
)

var (
	ErrCheckoutInProgress = budget.ErrCheckoutInProgress
	ErrNoPaymentMethod    = errors.New("no payment method selected")
	ErrNothingToCheckout  = errors.New("no items awaiting payment")
)

// Step is the progress of the checkout for one segment.
type Step string

const (
	StepIdle        Step = "idle"
	StepAuthorizing Step = "authorizing"
	StepConfirming  Step = "confirming"
	StepComplete    Step = "complete"
)

func (s Step) running() bool {
	return s == StepAuthorizing || s == StepConfirming
}

// Request starts a checkout run.
type Request struct {
	SegmentID     string
	CorrelationID string
}

// Workflow orchestrates checkout runs. At most one run per segment is active.
type Workflow struct {
	ledger     Ledger
	authorizer Authorizer
	confirmer  Confirmer
	pool       *FulfillmentPool
	recorder   ReceiptRecorder
	logger     *slog.Logger

	mu    sync.Mutex
	steps map[string]Step
}

// NewWorkflow creates a workflow. recorder may be nil.
func NewWorkflow(
	logger *slog.Logger,
	ledger Ledger,
	authorizer Authorizer,
	confirmer Confirmer,
	pool *FulfillmentPool,
	recorder ReceiptRecorder,
) *Workflow {
	return &Workflow{
		ledger:     ledger,
		authorizer: authorizer,
		confirmer:  confirmer,
		pool:       pool,
		recorder:   recorder,
		logger:     logger.With("component", "checkout"),
		steps:      make(map[string]Step),
	}
}

// Status returns the current step for the segment.
func (w *Workflow) Status(segmentID string) Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if step, ok := w.steps[segmentID]; ok {
		return step
	}
	return StepIdle
}

// begin locks the segment's cart on the ledger before anything is read, so the
// amount authorized is the amount of the items that get confirmed.
func (w *Workflow) begin(segmentID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.steps[segmentID].running() || !w.ledger.LockSegment(segmentID) {
		return ErrCheckoutInProgress
	}
	w.steps[segmentID] = StepAuthorizing
	return nil
}

func (w *Workflow) finish(segmentID string, step Step) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ledger.UnlockSegment(segmentID)
	w.steps[segmentID] = step
}

func (w *Workflow) setStep(segmentID string, step Step) {
	w.mu.Lock()
	w.steps[segmentID] = step
	w.mu.Unlock()
}

// Checkout runs authorization, marks every eligible item paid, confirms them
// concurrently and records each outcome on the ledger.
//
// An authorization failure aborts the run before any item changes. Once the
// payment is authorized the run is completed even if ctx is cancelled.
func (w *Workflow) Checkout(ctx context.Context, req Request) (*budget.OrderReceipt, error) {
	logger := w.logger.With("segment_id", req.SegmentID)
	if req.CorrelationID != "" {
		logger = logger.With("correlation_id", req.CorrelationID)
	}

	if err := w.begin(req.SegmentID); err != nil {
		logger.Warn("Rejected concurrent checkout")
		return nil, err
	}
	finalStep := StepIdle
	defer func() { w.finish(req.SegmentID, finalStep) }()

	method, ok := w.ledger.SelectedPaymentMethod()
	if !ok {
		return nil, ErrNoPaymentMethod
	}

	items := w.ledger.GetItems(req.SegmentID)
	var eligible []budget.Item
	for _, item := range items {
		if item.IsCheckoutEligible() {
			eligible = append(eligible, item)
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNothingToCheckout
	}

	amount := budget.BudgetItemsSpent(items)
	currency := w.ledger.BaseCurrency()

	logger.Info("Authorizing payment", "amount", amount, "currency", currency, "method_id", method.ID, "eligible_items", len(eligible))
	auth, err := w.authorizer.Authorize(ctx, amount, currency, method)
	if err != nil {
		logger.Warn("Payment authorization failed", "error", err)
		return nil, fmt.Errorf("checkout aborted: %w", err)
	}

	w.setStep(req.SegmentID, StepConfirming)
	paid := make([]budget.Item, 0, len(eligible))
	markPaid := budget.StatusPatch(budget.ItemStatusPaid)
	for _, item := range eligible {
		if !w.ledger.UpdateItem(req.SegmentID, item.ID, markPaid) {
			logger.Warn("Item disappeared before fulfillment", "item_id", item.ID)
			continue
		}
		paid = append(paid, w.current(req.SegmentID, item, markPaid))
	}

	confirmCtx := context.WithoutCancel(ctx)
	outcomes := w.pool.ConfirmAll(confirmCtx, paid, w.confirmer)

	receipt := &budget.OrderReceipt{
		OrderID:       auth.TransactionID,
		SegmentID:     req.SegmentID,
		PaidAt:        auth.AuthorizedAt,
		Method:        method,
		Currency:      currency,
		Subtotal:      auth.Amount,
		Total:         auth.Amount,
		Items:         make([]budget.ReceiptLine, 0, len(paid)),
		CorrelationID: req.CorrelationID,
	}
	if receipt.PaidAt.IsZero() {
		receipt.PaidAt = time.Now()
	}

	for i, item := range paid {
		outcome := outcomes[i]
		patch := outcome.Patch()
		w.ledger.UpdateItem(req.SegmentID, item.ID, patch)
		receipt.Items = append(receipt.Items, budget.ReceiptLine{
			Item:         w.current(req.SegmentID, item, patch),
			Confirmation: outcome,
		})
	}

	if w.recorder != nil {
		if err := w.recorder.RecordReceipt(confirmCtx, receipt); err != nil {
			logger.Error("Failed to record receipt", "order_id", receipt.OrderID, "error", err)
		}
	}

	finalStep = StepComplete
	logger.Info("Checkout completed",
		"order_id", receipt.OrderID,
		"confirmed", receipt.ConfirmedCount(),
		"failed", receipt.FailedCount(),
	)
	return receipt, nil
}

// current returns the item as the ledger holds it after patch was applied.
func (w *Workflow) current(segmentID string, item budget.Item, patch budget.ItemPatch) budget.Item {
	if stored, ok := w.ledger.GetItem(segmentID, item.ID); ok {
		return stored
	}
	item.Apply(patch)
	return item
}
