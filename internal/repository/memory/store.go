// Package memory is an in-process document store used by tests and single-node deployments.
package memory

import (
	"context"
	"sort"
	"sync"

	"eventlottery/internal/domain"
)

// Store keeps documents in maps guarded by a single mutex.
type Store struct {
	mu       sync.RWMutex
	docs     map[string]map[string][]byte
	counters map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		docs:     make(map[string]map[string][]byte),
		counters: make(map[string]int),
	}
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[collection][id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(doc), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.docs[collection]
	if !ok {
		c = make(map[string][]byte)
		s.docs[collection] = c
	}
	c[id] = clone(doc)
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[collection][id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.docs[collection], id)
	return nil
}

// List returns documents ordered by id.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := s.docs[collection]
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, clone(c[k]))
	}
	return out, nil
}

func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[collection]++
	return s.counters[collection], nil
}

func (s *Store) Clear(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, collection)
	delete(s.counters, collection)
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
