// Package repository maps domain records onto a domain.Store as JSON documents.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"eventlottery/internal/domain"
)

// Collections holds the collection names for one environment.
type Collections struct {
	Entrants      string
	Events        string
	Notifications string
	Logs          string
}

// NewCollections prefixes every collection name with namespace, e.g. "test_".
func NewCollections(namespace string) Collections {
	return Collections{
		Entrants:      namespace + "entrants",
		Events:        namespace + "events",
		Notifications: namespace + "notifications",
		Logs:          namespace + "logs",
	}
}

// collection is a typed view over one store collection.
type collection[T any] struct {
	store    domain.Store
	name     string
	notFound error
}

func (c collection[T]) get(ctx context.Context, id string) (*T, error) {
	raw, err := c.store.Get(ctx, c.name, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, c.notFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", c.name, id, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", c.name, id, err)
	}
	return &v, nil
}

func (c collection[T]) put(ctx context.Context, id string, v *T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", c.name, id, err)
	}
	if err := c.store.Put(ctx, c.name, id, raw); err != nil {
		return fmt.Errorf("put %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c collection[T]) delete(ctx context.Context, id string) error {
	if err := c.store.Delete(ctx, c.name, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.notFound
		}
		return fmt.Errorf("delete %s/%s: %w", c.name, id, err)
	}
	return nil
}

func (c collection[T]) list(ctx context.Context) ([]*T, error) {
	docs, err := c.store.List(ctx, c.name)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.name, err)
	}
	out := make([]*T, 0, len(docs))
	for _, raw := range docs {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.name, err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func (c collection[T]) nextID(ctx context.Context) (int, error) {
	id, err := c.store.NextID(ctx, c.name)
	if err != nil {
		return 0, fmt.Errorf("next id %s: %w", c.name, err)
	}
	return id, nil
}

func (c collection[T]) clear(ctx context.Context) error {
	if err := c.store.Clear(ctx, c.name); err != nil {
		return fmt.Errorf("clear %s: %w", c.name, err)
	}
	return nil
}
