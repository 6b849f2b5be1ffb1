// Command notifier consumes queued deliveries and sends them by email and push.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"eventlottery/config"
	"eventlottery/internal/adapters/auth"
	"eventlottery/internal/adapters/queue"
	"eventlottery/internal/app"
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("notifier exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !app.KafkaEnabled(cfg) {
		return errors.New("KAFKA_BROKERS is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fb, err := app.FirebaseApp(ctx, cfg)
	if err != nil {
		return err
	}
	tokens := auth.NewResponseTokens(cfg.ResponseTokenSecret, cfg.ResponseTokenTTL)
	deliverer, err := app.Channels(ctx, cfg, fb, tokens, logger)
	if err != nil {
		return err
	}

	consumer := queue.NewConsumer(queue.NewReader(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID), logger)
	defer func() {
		if err := consumer.Close(); err != nil {
			logger.Warn("close consumer", "err", err)
		}
	}()

	logger.Info("notifier consuming", "topic", cfg.KafkaTopic, "group", cfg.KafkaGroupID, "push", cfg.PushEnabled)
	if err := consumer.Run(ctx, deliverer); err != nil {
		return err
	}
	logger.Info("notifier stopped")
	return nil
}
