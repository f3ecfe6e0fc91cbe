package producers

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/segmentio/kafka-go"
)

// ReceiptProducer writes order receipt events to the receipt topic. Writes are
// synchronous so that the outbox row is only marked processed once Kafka has it.
type ReceiptProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// NewReceiptProducer creates the producer and ensures the receipt topic exists
func NewReceiptProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ReceiptProducer, error) {
	if cfg.ReceiptTopic == "" {
		return nil, fmt.Errorf("kafka receipt topic is not configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for receipt producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.ReceiptTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure receipt topic %s exists: %w", cfg.ReceiptTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.ReceiptTopic,
		Balancer:     &kafka.Hash{}, // Same order id, same partition
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return newReceiptProducer(logger, writer, cfg.ReceiptTopic), nil
}

func newReceiptProducer(logger *slog.Logger, writer KafkaWriter, topic string) *ReceiptProducer {
	return &ReceiptProducer{
		logger: logger.With("component", "receipt_producer"),
		writer: writer,
		topic:  topic,
	}
}

// Publish writes one message keyed by key. Headers are attached in key order.
func (p *ReceiptProducer) Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error {
	msg := kafka.Message{
		Key:     []byte(key),
		Value:   payload,
		Headers: toKafkaHeaders(headers),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish receipt event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published receipt event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ReceiptProducer) Close() error {
	p.logger.Info("Closing receipt Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close receipt kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}

func toKafkaHeaders(headers map[string]string) []kafka.Header {
	if len(headers) == 0 {
		return nil
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		out = append(out, kafka.Header{Key: k, Value: []byte(headers[k])})
	}
	return out
}
