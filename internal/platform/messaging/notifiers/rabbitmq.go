// Package notifiers publishes ledger notifications to RabbitMQ work queues.
package notifiers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/domain/receipt"
)

// ErrNotifierClosed is returned after Close.
var ErrNotifierClosed = errors.New("notifier is closed")

// amqpChannel is the subset of *amqp.Channel the notifier uses
type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQNotifier publishes one persistent message per confirmed item to a
// durable queue on the default exchange.
type RabbitMQNotifier struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel amqpChannel
	queue   string
	now     func() time.Time
	logger  *slog.Logger
}

// NewRabbitMQNotifier dials the broker and declares the confirmation queue.
func NewRabbitMQNotifier(logger *slog.Logger, cfg *config.RabbitMQConfig) (*RabbitMQNotifier, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open rabbitmq channel: %w", err)
	}

	n, err := newRabbitMQNotifier(logger, ch, cfg.ConfirmedQueue)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	n.conn = conn
	return n, nil
}

func newRabbitMQNotifier(logger *slog.Logger, ch amqpChannel, queue string) (*RabbitMQNotifier, error) {
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return &RabbitMQNotifier{
		channel: ch,
		queue:   queue,
		now:     time.Now,
		logger:  logger.With("component", "rabbitmq_notifier", "queue", queue),
	}, nil
}

// NotifyItemConfirmed publishes evt as JSON.
func (n *RabbitMQNotifier) NotifyItemConfirmed(ctx context.Context, evt receipt.ItemConfirmedEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal item confirmed event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    evt.OrderID + ":" + evt.ItemID,
		Timestamp:    n.now().UTC(),
		Body:         body,
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.channel == nil {
		return ErrNotifierClosed
	}
	if err := n.channel.PublishWithContext(ctx, "", n.queue, false, false, pub); err != nil {
		n.logger.Error("Failed to publish item confirmed event", "order_id", evt.OrderID, "item_id", evt.ItemID, "error", err)
		return fmt.Errorf("failed to publish item confirmed event: %w", err)
	}

	n.logger.Debug("Published item confirmed event", "order_id", evt.OrderID, "item_id", evt.ItemID)
	return nil
}

// Close closes the channel and the connection.
func (n *RabbitMQNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.channel == nil {
		return nil
	}

	var errs []error
	if err := n.channel.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close rabbitmq channel: %w", err))
	}
	n.channel = nil
	if n.conn != nil {
		if err := n.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close rabbitmq connection: %w", err))
		}
		n.conn = nil
	}
	return errors.Join(errs...)
}
