package memory

import (
	"context"
	"sync"
	"testing"

	"eventlottery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	_, err := s.Get(ctx, "events", "1")
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, s.Put(ctx, "events", "2", []byte(`{"b":2}`)))
	require.NoError(t, s.Put(ctx, "events", "1", []byte(`{"a":1}`)))

	doc, err := s.Get(ctx, "events", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(doc))

	docs, err := s.List(ctx, "events")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.JSONEq(t, `{"a":1}`, string(docs[0]))

	require.NoError(t, s.Delete(ctx, "events", "1"))
	require.ErrorIs(t, s.Delete(ctx, "events", "1"), domain.ErrNotFound)

	require.NoError(t, s.Clear(ctx, "events"))
	docs, err = s.List(ctx, "events")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_ReturnedDocumentsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	in := []byte(`{"a":1}`)
	require.NoError(t, s.Put(ctx, "c", "1", in))
	in[2] = 'X'

	out, err := s.Get(ctx, "c", "1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))
}

func TestStore_NextIDConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	first, err := s.NextID(ctx, "entrants")
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	const workers = 50
	var wg sync.WaitGroup
	got := make(chan int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := s.NextID(ctx, "entrants")
			assert.NoError(t, err)
			got <- id
		}()
	}
	wg.Wait()
	close(got)

	seen := make(map[int]bool)
	for id := range got {
		assert.False(t, seen[id], "duplicate id %d", id)
		assert.Greater(t, id, 1)
		seen[id] = true
	}
	assert.Len(t, seen, workers)

	require.NoError(t, s.Clear(ctx, "entrants"))
	id, err := s.NextID(ctx, "entrants")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewStore().NextID(ctx, "c")
	assert.ErrorIs(t, err, context.Canceled)
}
