package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"eventlottery/internal/domain"
)

// bulkSendLimit caps concurrent sends in SendBulk.
const bulkSendLimit = 16

type notificationService struct {
	notifications domain.NotificationRepository
	entrants      domain.EntrantRepository
	audit         domain.AuditService
	deliverer     domain.Deliverer
	logger        *slog.Logger
	now           func() time.Time
}

// NewNotificationService returns a NotificationService. Every sent notification is stored,
// recorded in the audit log and then handed to deliverer, which may be nil.
func NewNotificationService(
	notifications domain.NotificationRepository,
	entrants domain.EntrantRepository,
	audit domain.AuditService,
	deliverer domain.Deliverer,
	logger *slog.Logger,
) domain.NotificationService {
	return &notificationService{
		notifications: notifications,
		entrants:      entrants,
		audit:         audit,
		deliverer:     deliverer,
		logger:        logger,
		now:           time.Now,
	}
}

func (s *notificationService) Send(ctx context.Context, typ domain.NotificationType, title, body string, recipientID, senderID, eventID int) error {
	if !typ.Valid() {
		return fmt.Errorf("notification type %q: %w", typ, domain.ErrInvalidInput)
	}
	n := domain.NewNotification(uuid.NewString(), typ, title, body, recipientID, senderID, eventID, s.now())
	if err := s.notifications.Put(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	s.audit.RecordNotification(ctx, n)
	s.deliver(ctx, n)
	return nil
}

// deliver is best-effort: the notification is already stored.
func (s *notificationService) deliver(ctx context.Context, n *domain.Notification) {
	if s.deliverer == nil {
		return
	}
	recipient, err := s.entrants.Get(ctx, n.RecipientID)
	if err != nil {
		s.logger.WarnContext(ctx, "resolve notification recipient", "notification_id", n.ID, "recipient_id", n.RecipientID, "err", err)
		recipient = nil
	}
	if err := s.deliverer.Deliver(ctx, n, recipient); err != nil {
		s.logger.WarnContext(ctx, "deliver notification", "notification_id", n.ID, "recipient_id", n.RecipientID, "err", err)
	}
}

// SendBulk sends one notification per recipient concurrently. A failed send does not
// stop the others; every failure is returned joined.
func (s *notificationService) SendBulk(ctx context.Context, typ domain.NotificationType, title, body string, recipientIDs []int, senderID, eventID int) error {
	if !typ.Valid() {
		return fmt.Errorf("notification type %q: %w", typ, domain.ErrInvalidInput)
	}
	var (
		mu   sync.Mutex
		errs []error
	)
	var g errgroup.Group
	g.SetLimit(bulkSendLimit)
	for _, id := range recipientIDs {
		g.Go(func() error {
			if err := s.Send(ctx, typ, title, body, id, senderID, eventID); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("recipient %d: %w", id, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// failedSends counts the recipient errors joined by SendBulk.
func failedSends(err error) int {
	if err == nil {
		return 0
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}

func (s *notificationService) GetNotification(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := s.notifications.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

// ListForRecipient returns the recipient's inbox, newest first.
func (s *notificationService) ListForRecipient(ctx context.Context, recipientID int) ([]*domain.Notification, error) {
	return s.filter(ctx, func(n *domain.Notification) bool { return n.RecipientID == recipientID })
}

func (s *notificationService) ListForEvent(ctx context.Context, eventID int) ([]*domain.Notification, error) {
	return s.filter(ctx, func(n *domain.Notification) bool { return n.EventID == eventID })
}

func (s *notificationService) filter(ctx context.Context, keep func(*domain.Notification) bool) ([]*domain.Notification, error) {
	all, err := s.notifications.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]*domain.Notification, 0, len(all))
	for _, n := range all {
		if keep(n) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id string) (*domain.Notification, error) {
	n, err := s.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	n.MarkRead()
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	return n, nil
}

// UpdateNotification overwrites an existing notification.
func (s *notificationService) UpdateNotification(ctx context.Context, n *domain.Notification) error {
	if _, err := s.notifications.Get(ctx, n.ID); err != nil {
		return fmt.Errorf("get notification: %w", err)
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return fmt.Errorf("update notification: %w", err)
	}
	return nil
}

func (s *notificationService) DeleteNotification(ctx context.Context, id string) error {
	if err := s.notifications.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

func (s *notificationService) ClearNotifications(ctx context.Context) error {
	if err := s.notifications.Clear(ctx); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}

// sendBestEffort logs instead of returning; membership changes already persisted take precedence.
// The sends outlive ctx cancellation so a finished write is always followed by its notices.
func sendBestEffort(ctx context.Context, logger *slog.Logger, n domain.NotificationService, typ domain.NotificationType, title, body string, recipientIDs []int, senderID, eventID int) {
	if len(recipientIDs) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := n.SendBulk(ctx, typ, title, body, recipientIDs, senderID, eventID); err != nil {
		logger.WarnContext(ctx, "send notifications", "type", typ, "event_id", eventID,
			"recipients", len(recipientIDs), "failed", failedSends(err), "err", err)
	}
}
