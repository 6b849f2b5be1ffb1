// Package app assembles stores, delivery channels and services from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"

	"eventlottery/config"
	"eventlottery/internal/adapters/auth"
	"eventlottery/internal/adapters/email"
	"eventlottery/internal/adapters/firebaseapp"
	"eventlottery/internal/adapters/push"
	"eventlottery/internal/adapters/queue"
	"eventlottery/internal/domain"
	"eventlottery/internal/lottery"
	"eventlottery/internal/repository"
	"eventlottery/internal/repository/firestore"
	"eventlottery/internal/repository/memory"
	"eventlottery/internal/repository/mongo"
	"eventlottery/internal/repository/postgres"
	"eventlottery/internal/repository/redis"
	"eventlottery/internal/services"
)

// Closer releases a resource opened during wiring.
type Closer func() error

// NeedsFirebase reports whether cfg uses any Firebase-backed component.
func NeedsFirebase(cfg *config.Config) bool {
	return cfg.StoreBackend == config.StoreFirestore || cfg.PushEnabled
}

// FirebaseApp initializes the shared Firebase app, or returns nil when nothing needs it.
func FirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	if !NeedsFirebase(cfg) {
		return nil, nil
	}
	return firebaseapp.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsFile)
}

// OpenStore connects the configured backend. fb is only used by the firestore backend.
func OpenStore(ctx context.Context, cfg *config.Config, fb *firebase.App) (domain.Store, Closer, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return memory.NewStore(), func() error { return nil }, nil
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		store := postgres.NewStore(db)
		if err := store.Migrate(ctx); err != nil {
			return nil, nil, errors.Join(fmt.Errorf("migrate: %w", err), db.Close())
		}
		return store, db.Close, nil
	case config.StoreRedis:
		client, err := redis.NewClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redis.NewStore(client), client.Close, nil
	case config.StoreMongo:
		client, err := mongo.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closer := func() error { return client.Disconnect(context.Background()) }
		return mongo.NewStore(client.Database(cfg.MongoDatabase)), closer, nil
	case config.StoreFirestore:
		if fb == nil {
			return nil, nil, errors.New("firestore backend needs a firebase app")
		}
		client, err := fb.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		return firestore.NewStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Channels builds the direct delivery fan-out: email always, push when enabled.
func Channels(ctx context.Context, cfg *config.Config, fb *firebase.App, tokens domain.ResponseTokenIssuer, logger *slog.Logger) (domain.Deliverer, error) {
	mailer := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFromAddress,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.SESRegion,
			AccessKeyID:        cfg.SESAccessKeyID,
			SecretAccessKey:    cfg.SESSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	}, logger)
	channels := []domain.Deliverer{
		services.NewEmailDeliverer(mailer, email.NewTemplateRenderer(), tokens, cfg.PublicBaseURL, logger),
	}
	if cfg.PushEnabled {
		if fb == nil {
			return nil, errors.New("push needs a firebase app")
		}
		client, err := fb.Messaging(ctx)
		if err != nil {
			return nil, fmt.Errorf("messaging client: %w", err)
		}
		channels = append(channels, push.NewFCM(client, logger))
	}
	return services.NewFanOutDeliverer(logger, channels...), nil
}

// Services is the assembled application core.
type Services struct {
	Entrants      domain.EntrantService
	Events        domain.EventService
	Notifications domain.NotificationService
	Invitations   domain.InvitationService
	Audit         domain.AuditService
	Exporter      domain.RosterExporter
}

// NewServices wires repositories over store and the services over them.
func NewServices(cfg *config.Config, store domain.Store, deliverer domain.Deliverer, tokens *auth.ResponseTokens, logger *slog.Logger) *Services {
	cols := repository.NewCollections(cfg.Namespace())
	entrants := repository.NewEntrantRepository(store, cols)
	events := repository.NewEventRepository(store, cols)

	engine := lottery.NewRandomEngine()
	if cfg.LotterySeed != 0 {
		engine = lottery.NewEngine(cfg.LotterySeed)
	}

	audit := services.NewAuditService(repository.NewLogRepository(store, cols), logger)
	notifications := services.NewNotificationService(repository.NewNotificationRepository(store, cols), entrants, audit, deliverer, logger)
	eventSvc := services.NewEventService(events, entrants, notifications, audit, engine, logger)
	return &Services{
		Entrants:      services.NewEntrantService(entrants, events, audit, logger),
		Events:        eventSvc,
		Notifications: notifications,
		Invitations:   services.NewInvitationService(notifications, events, audit, tokens, logger),
		Audit:         audit,
		Exporter:      services.NewRosterExporter(eventSvc),
	}
}

// KafkaEnabled reports whether deliveries go through the queue.
func KafkaEnabled(cfg *config.Config) bool {
	return len(cfg.KafkaBrokers) > 0
}

// QueueProducer returns a Deliverer that publishes to the configured topic.
func QueueProducer(cfg *config.Config) *queue.Producer {
	return queue.NewProducer(queue.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
}
