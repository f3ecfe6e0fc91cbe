package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/outbox"
)

// TxExecutor runs a function inside a database transaction
type TxExecutor interface {
	ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// OutboxReceiptRecorder queues finished checkout receipts in the receipt outbox
type OutboxReceiptRecorder struct {
	db         TxExecutor
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

func NewOutboxReceiptRecorder(logger *slog.Logger, db TxExecutor, outboxRepo outbox.Repository) *OutboxReceiptRecorder {
	return &OutboxReceiptRecorder{
		db:         db,
		outboxRepo: outboxRepo,
		logger:     logger.With("component", "receipt_recorder"),
	}
}

// RecordReceipt writes a pending outbox row for the receipt. A receipt already
// queued for the same order is not an error.
func (r *OutboxReceiptRecorder) RecordReceipt(ctx context.Context, receipt *budget.OrderReceipt) error {
	logger := r.logger.With("order_id", receipt.OrderID, "segment_id", receipt.SegmentID)
	if receipt.CorrelationID != "" {
		logger = logger.With("correlation_id", receipt.CorrelationID)
	}

	message, err := outbox.NewMessage(receipt)
	if err != nil {
		logger.Error("Failed to create outbox message payload", "error", err)
		return fmt.Errorf("failed to create outbox message payload for order %s: %w", receipt.OrderID, err)
	}

	err = r.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		return r.outboxRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		var duplicate outbox.ErrDuplicateMessage
		if errors.As(err, &duplicate) {
			logger.Warn("Receipt already queued in outbox")
			return nil
		}
		logger.Error("Failed to create outbox message", "error", err)
		return fmt.Errorf("failed to create outbox message for order %s: %w", receipt.OrderID, err)
	}

	logger.Info("Receipt queued in outbox", "outbox_id", message.ID, "items", len(receipt.Items))
	return nil
}
