package repository

import (
	"context"
	"slices"

	"eventlottery/internal/domain"
)

type notificationRepository struct {
	c collection[domain.Notification]
}

func NewNotificationRepository(store domain.Store, cols Collections) domain.NotificationRepository {
	return &notificationRepository{
		c: collection[domain.Notification]{store: store, name: cols.Notifications, notFound: domain.ErrNotificationNotFound},
	}
}

func (r *notificationRepository) Get(ctx context.Context, id string) (*domain.Notification, error) {
	return r.c.get(ctx, id)
}

func (r *notificationRepository) Put(ctx context.Context, n *domain.Notification) error {
	return r.c.put(ctx, n.ID, n)
}

func (r *notificationRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// List returns notifications newest first.
func (r *notificationRepository) List(ctx context.Context) ([]*domain.Notification, error) {
	out, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *domain.Notification) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *notificationRepository) Clear(ctx context.Context) error {
	return r.c.clear(ctx)
}
