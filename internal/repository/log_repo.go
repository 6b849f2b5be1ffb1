package repository

import (
	"context"
	"slices"

	"eventlottery/internal/domain"
)

type logRepository struct {
	c collection[domain.LogEntry]
}

func NewLogRepository(store domain.Store, cols Collections) domain.LogRepository {
	return &logRepository{
		c: collection[domain.LogEntry]{store: store, name: cols.Logs, notFound: domain.ErrLogNotFound},
	}
}

func (r *logRepository) Get(ctx context.Context, id string) (*domain.LogEntry, error) {
	return r.c.get(ctx, id)
}

func (r *logRepository) Put(ctx context.Context, l *domain.LogEntry) error {
	return r.c.put(ctx, l.ID, l)
}

func (r *logRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

// List returns entries newest first.
func (r *logRepository) List(ctx context.Context) ([]*domain.LogEntry, error) {
	out, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(out, func(a, b *domain.LogEntry) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (r *logRepository) Clear(ctx context.Context) error {
	return r.c.clear(ctx)
}
