package services

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"eventlottery/internal/domain"
)

type fanOutDeliverer struct {
	channels []domain.Deliverer
	logger   *slog.Logger
}

// NewFanOutDeliverer delivers each notification through every channel concurrently.
// Recipients that have not opted into notifications are skipped.
func NewFanOutDeliverer(logger *slog.Logger, channels ...domain.Deliverer) domain.Deliverer {
	return &fanOutDeliverer{channels: channels, logger: logger}
}

// Deliver tries every channel; one failing channel does not stop the others.
func (d *fanOutDeliverer) Deliver(ctx context.Context, n *domain.Notification, recipient *domain.Entrant) error {
	if recipient == nil || !recipient.Profile.SendNotifications {
		d.logger.DebugContext(ctx, "delivery skipped", "notification_id", n.ID, "recipient_id", n.RecipientID)
		return nil
	}
	errs := make([]error, len(d.channels))
	var g errgroup.Group
	for i, ch := range d.channels {
		g.Go(func() error {
			errs[i] = ch.Deliver(ctx, n, recipient)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
