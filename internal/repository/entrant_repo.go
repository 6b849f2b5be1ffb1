package repository

import (
	"context"
	"slices"
	"strconv"

	"eventlottery/internal/domain"
)

type entrantRepository struct {
	c collection[domain.Entrant]
}

func NewEntrantRepository(store domain.Store, cols Collections) domain.EntrantRepository {
	return &entrantRepository{
		c: collection[domain.Entrant]{store: store, name: cols.Entrants, notFound: domain.ErrEntrantNotFound},
	}
}

func (r *entrantRepository) Get(ctx context.Context, id int) (*domain.Entrant, error) {
	return r.c.get(ctx, strconv.Itoa(id))
}

func (r *entrantRepository) Put(ctx context.Context, e *domain.Entrant) error {
	return r.c.put(ctx, strconv.Itoa(e.ID), e)
}

func (r *entrantRepository) Delete(ctx context.Context, id int) error {
	return r.c.delete(ctx, strconv.Itoa(id))
}

// List returns entrants ordered by id.
func (r *entrantRepository) List(ctx context.Context) ([]*domain.Entrant, error) {
	out, err := r.c.list(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.Entrant) int { return a.ID - b.ID })
	return out, nil
}

func (r *entrantRepository) NextID(ctx context.Context) (int, error) {
	return r.c.nextID(ctx)
}

func (r *entrantRepository) Clear(ctx context.Context) error {
	return r.c.clear(ctx)
}
