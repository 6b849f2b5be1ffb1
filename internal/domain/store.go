package domain

import "context"

// Store is a document store addressed by collection and id. Records are JSON documents.
// Put is a full overwrite and each call is atomic on its own; there are no cross-call transactions.
type Store interface {
	// Get returns ErrNotFound when the record does not exist.
	Get(ctx context.Context, collection, id string) ([]byte, error)
	Put(ctx context.Context, collection, id string, doc []byte) error
	// Delete returns ErrNotFound when the record does not exist.
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([][]byte, error)
	// NextID atomically increments the collection's counter and returns it, starting at 1.
	NextID(ctx context.Context, collection string) (int, error)
	// Clear removes every record and resets the counter.
	Clear(ctx context.Context, collection string) error
}
