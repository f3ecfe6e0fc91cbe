package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omnitrip-budget-ledger/internal/config"
	"github.com/omnitrip-budget-ledger/internal/data/mongo"
	"github.com/omnitrip-budget-ledger/internal/logger"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/consumers"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/notifiers"
	"github.com/omnitrip-budget-ledger/internal/platform/messaging/producers"
	"github.com/omnitrip-budget-ledger/internal/platform/persistence"
	"github.com/omnitrip-budget-ledger/internal/receipt_archiver/consumer"
)

func main() {
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	cfg, err := config.LoadConfig("receipt_archiver")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg)

	log.Info("Starting Receipt Archiver",
		"app_name", cfg.Application.Name,
		"env", cfg.Application.Env,
	)

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	receiptRepo := mongo.NewReceiptRepository(log, mongoDB.Database(), cfg.MongoDB.ReceiptCollection)
	if err := receiptRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to create receipt indexes", "error", err)
		os.Exit(1)
	}

	// dlqProducer is nil when KAFKA_DLQ_TOPIC is empty; PublishToDLQ then reports ErrDLQDisabled
	dlqProducer, err := producers.NewDLQProducer(appCtx, log, &cfg.Kafka)
	if err != nil {
		log.Error("Failed to initialize DLQ Kafka producer", "error", err)
		os.Exit(1)
	}

	var notifier consumer.ItemConfirmedNotifier
	var rabbit *notifiers.RabbitMQNotifier
	if cfg.RabbitMQ.URL != "" {
		rabbit, err = notifiers.NewRabbitMQNotifier(log, &cfg.RabbitMQ)
		if err != nil {
			log.Error("Failed to initialize RabbitMQ notifier", "error", err)
			os.Exit(1)
		}
		notifier = rabbit
	} else {
		log.Info("RABBITMQ_URL is not set, item confirmation notifications are disabled")
	}

	handler := consumer.NewReceiptEventHandler(log, receiptRepo, notifier, dlqProducer)

	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)
	log.Info("Starting Kafka consumer",
		"topic", cfg.Kafka.ReceiptTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := kafkaConsumer.Subscribe(appCtx, handler.HandleMessage); err != nil {
		log.Error("Failed to subscribe to receipt topic", "error", err)
		os.Exit(1)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	<-quit
	log.Info("Shutdown signal received")

	cancelAppCtx()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	log.Info("Waiting for consumer to stop...")
	stopped := make(chan struct{})
	go func() {
		kafkaConsumer.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		log.Info("Consumer stopped")
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err = kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}

	if dlqProducer != nil {
		if err = dlqProducer.Close(); err != nil {
			log.Error("Error closing DLQ Kafka producer", "error", err)
		}
	}

	if rabbit != nil {
		if err = rabbit.Close(); err != nil {
			log.Error("Error closing RabbitMQ notifier", "error", err)
		}
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	log.Info("Receipt Archiver shutdown completed")
}
