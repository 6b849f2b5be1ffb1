// Package redis stores documents in one Redis hash per collection.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"

	"eventlottery/internal/domain"
)

// Store maps a collection to the hash "docs:<collection>" and its id counter to "counter:<collection>".
// INCR is atomic on the server, so NextID is safe across processes.
type Store struct {
	client goredis.UniversalClient
}

func NewStore(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

// NewClient builds a client and verifies the connection with PING.
func NewClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func docsKey(collection string) string    { return "docs:" + collection }
func counterKey(collection string) string { return "counter:" + collection }

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	doc, err := s.client.HGet(ctx, docsKey(collection), id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	return s.client.HSet(ctx, docsKey(collection), id, doc).Err()
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	n, err := s.client.HDel(ctx, docsKey(collection), id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns documents ordered by id.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	all, err := s.client.HGetAll(ctx, docsKey(collection)).Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		out = append(out, []byte(all[k]))
	}
	return out, nil
}

func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	n, err := s.client.Incr(ctx, counterKey(collection)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *Store) Clear(ctx context.Context, collection string) error {
	return s.client.Del(ctx, docsKey(collection), counterKey(collection)).Err()
}
