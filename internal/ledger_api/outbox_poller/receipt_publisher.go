package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omnitrip-budget-ledger/internal/domain/outbox"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/producers"
)

// ReceiptPublisher publishes outbox messages to the receipt topic
type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, message *outbox.Message) error
}

// ReceiptPublisherImpl implements ReceiptPublisher
type ReceiptPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewReceiptPublisher creates a new publisher
func NewReceiptPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) ReceiptPublisher {
	return &ReceiptPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishReceipt sends the receipt keyed by order id and marks the message processed.
// A payload that is not a receipt is marked FAILED_TO_PUBLISH straight away.
func (p *ReceiptPublisherImpl) PublishReceipt(ctx context.Context, message *outbox.Message) error {
	r, err := message.GetReceipt()
	if err != nil {
		p.logger.Error("Failed to decode receipt from outbox payload",
			"outbox_id", message.ID, "order_id", message.OrderID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger.With("outbox_id", message.ID, "order_id", message.OrderID)
	if r.CorrelationID != "" {
		logger = logger.With("correlation_id", r.CorrelationID)
	}

	headers := map[string]string{"segment_id": message.SegmentID}
	if r.CorrelationID != "" {
		headers["correlation_id"] = r.CorrelationID
	}

	if err := p.producer.Publish(ctx, message.OrderID, message.Payload, headers); err != nil {
		logger.Error("Failed to publish receipt", "error", err)
		return fmt.Errorf("failed to publish receipt %s: %w", message.OrderID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, outbox.StatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED", "error", err)
		return fmt.Errorf("receipt %s published, but failed to mark outbox %d as PROCESSED: %w", message.OrderID, message.ID, err)
	}

	logger.Info("Receipt published and outbox message marked as PROCESSED")
	return nil
}
