// Worker consumes gate events from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL. ADMIN_EMAILS is required by config but unused.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ninadrathod/my-website/internal/config"
	"github.com/ninadrathod/my-website/internal/logger"
	"github.com/ninadrathod/my-website/internal/telemetry/loki"
	"github.com/ninadrathod/my-website/internal/telemetry/relay"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.WithComponent(logger.New(cfg.LogLevel, cfg.Env), "worker")
	defer func() { _ = log.Sync() }()

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}
	sink, err := loki.NewClient(cfg.LokiURL, nil)
	if err != nil {
		log.Fatal("LOKI_URL is required", zap.Error(err))
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.EventsTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("consuming gate events",
		zap.String("topic", cfg.EventsTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("loki", cfg.LokiURL))

	if err := relay.New(reader, sink, log).Run(ctx); err != nil {
		log.Error("relay stopped", zap.Error(err))
		return
	}
	log.Info("stopped")
}
