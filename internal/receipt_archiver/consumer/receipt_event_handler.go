package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/omnitrip-budget-ledger/internal/domain/budget"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/producers"
)

// ItemConfirmedNotifier announces supplier confirmations to downstream services
type ItemConfirmedNotifier interface {
	NotifyItemConfirmed(ctx context.Context, evt receipt.ItemConfirmedEvent) error
}

// ReceiptEventHandler archives receipt events consumed from Kafka
type ReceiptEventHandler struct {
	repo     receipt.Repository
	notifier ItemConfirmedNotifier
	producer producers.DeadLetterPublisher
	logger   *slog.Logger
}

// NewReceiptEventHandler creates a new handler. notifier and producer may be nil.
func NewReceiptEventHandler(
	logger *slog.Logger,
	repo receipt.Repository,
	notifier ItemConfirmedNotifier,
	producer producers.DeadLetterPublisher,
) *ReceiptEventHandler {
	return &ReceiptEventHandler{
		repo:     repo,
		notifier: notifier,
		producer: producer,
		logger:   logger.With("component", "receipt_event_handler"),
	}
}

// HandleMessage archives one receipt. A nil return commits the offset.
func (h *ReceiptEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var r budget.OrderReceipt
	err := json.Unmarshal(value, &r)
	if err == nil && r.OrderID == "" {
		err = errors.New("receipt has no order id")
	}
	if err != nil {
		return h.deadLetter(ctx, key, value, err)
	}

	logger := h.logger.With("order_id", r.OrderID, "segment_id", r.SegmentID)
	if r.CorrelationID != "" {
		logger = logger.With("correlation_id", r.CorrelationID)
	}

	logger.Info("Received receipt event for archiving", "items", len(r.Items), "total", r.Total)

	if err := h.repo.Store(ctx, &r); err != nil {
		var archived receipt.ErrAlreadyArchived
		if errors.As(err, &archived) {
			logger.Info("Receipt already archived, skipping notifications")
			return nil
		}
		logger.Error("Failed to archive receipt", "error", err)
		return fmt.Errorf("archiving receipt %s failed: %w", r.OrderID, err)
	}

	h.notifyConfirmed(ctx, logger, &r)

	logger.Info("Successfully archived receipt", "confirmed", r.ConfirmedCount(), "failed", r.FailedCount())
	return nil
}

// notifyConfirmed is best-effort; the receipt is already archived.
func (h *ReceiptEventHandler) notifyConfirmed(ctx context.Context, logger *slog.Logger, r *budget.OrderReceipt) {
	if h.notifier == nil {
		return
	}
	for _, evt := range receipt.ConfirmedEvents(r) {
		if err := h.notifier.NotifyItemConfirmed(ctx, evt); err != nil {
			logger.Warn("Failed to notify item confirmation", "item_id", evt.ItemID, "error", err)
		}
	}
}

func (h *ReceiptEventHandler) deadLetter(ctx context.Context, key, value []byte, cause error) error {
	const msg = "Failed to decode receipt event from Kafka message"
	h.logger.Error(msg, "error", cause, "message_key", string(key))

	if h.producer != nil {
		reason := fmt.Sprintf("%s: %s", msg, cause.Error())
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ after decode error",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key))
			return nil
		}
	}
	return fmt.Errorf("failed to decode receipt event: %w", cause)
}
