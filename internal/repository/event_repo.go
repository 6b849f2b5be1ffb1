package repository

import (
	"context"
	"slices"
	"strconv"

	"eventlottery/internal/domain"
)

type eventRepository struct {
	c collection[domain.Event]
}

func NewEventRepository(store domain.Store, cols Collections) domain.EventRepository {
	return &eventRepository{
		c: collection[domain.Event]{store: store, name: cols.Events, notFound: domain.ErrEventNotFound},
	}
}

func (r *eventRepository) Get(ctx context.Context, id int) (*domain.Event, error) {
	return r.c.get(ctx, strconv.Itoa(id))
}

// Put writes the whole event, roster and waitlist included, in one store call.
func (r *eventRepository) Put(ctx context.Context, e *domain.Event) error {
	return r.c.put(ctx, strconv.Itoa(e.ID()), e)
}

func (r *eventRepository) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, strconv.Itoa(id))
}

// List returns events ordered by id.
func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	out, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.Event) int { return a.ID() - b.ID() })
	return out, nil
}

func (r *eventRepository) NextID(ctx context.Context) (int, error) {
	return r.c.nextID(ctx)
}

func (r *eventRepository) Clear(ctx context.Context) error {
	return r.c.clear(ctx)
}
