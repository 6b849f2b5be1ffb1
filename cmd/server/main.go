// Command server runs the event lottery HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"eventlottery/config"
	_ "eventlottery/docs"
	"eventlottery/internal/adapters/auth"
	"eventlottery/internal/app"
	httpdelivery "eventlottery/internal/delivery/http"
	"eventlottery/internal/delivery/http/controllers"
	"eventlottery/internal/domain"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fb, err := app.FirebaseApp(ctx, cfg)
	if err != nil {
		return err
	}
	store, closeStore, err := app.OpenStore(ctx, cfg, fb)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close store", "err", err)
		}
	}()
	logger.Info("store ready", "backend", cfg.StoreBackend, "namespace", cfg.Namespace())

	tokens := auth.NewResponseTokens(cfg.ResponseTokenSecret, cfg.ResponseTokenTTL)

	var deliverer domain.Deliverer
	if app.KafkaEnabled(cfg) {
		producer := app.QueueProducer(cfg)
		defer producer.Close()
		deliverer = producer
		logger.Info("publishing deliveries to kafka", "topic", cfg.KafkaTopic)
	} else {
		if deliverer, err = app.Channels(ctx, cfg, fb, tokens, logger); err != nil {
			return err
		}
	}

	svc := app.NewServices(cfg, store, deliverer, tokens, logger)
	handler, err := httpdelivery.NewHandler(logger, httpdelivery.Controllers{
		Entrants:      controllers.NewEntrantController(logger, svc.Entrants, svc.Events, svc.Notifications),
		Events:        controllers.NewEventController(logger, svc.Events, svc.Exporter),
		Notifications: controllers.NewNotificationController(logger, svc.Notifications, svc.Invitations),
		Logs:          controllers.NewLogController(logger, svc.Audit),
	}, httpdelivery.RouterConfig{
		RateLimit:      cfg.RateLimit,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return fmt.Errorf("build handler: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
