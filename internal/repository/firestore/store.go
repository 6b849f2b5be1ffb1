// Package firestore stores each collection as a Cloud Firestore collection.
package firestore

import (
	"context"
	"errors"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"eventlottery/internal/domain"
)

const countersCollection = "counters"

type document struct {
	Body string `firestore:"body"`
}

type counter struct {
	Seq int64 `firestore:"seq"`
}

// Store keeps id counters in "counters/<collection>" and bumps them inside a
// transaction, which Firestore retries on contention.
type Store struct {
	client *gfs.Client
}

func NewStore(client *gfs.Client) *Store {
	return &Store{client: client}
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var d document
	if err := snap.DataTo(&d); err != nil {
		return nil, err
	}
	return []byte(d.Body), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, document{Body: string(doc)})
	return err
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, gfs.Exists)
	if err != nil {
		if isNotFound(err) {
			return domain.ErrNotFound
		}
		return err
	}
	return nil
}

// List returns documents ordered by document id.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	snaps, err := s.client.Collection(collection).OrderBy(gfs.DocumentID, gfs.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(snaps))
	for _, snap := range snaps {
		var d document
		if err := snap.DataTo(&d); err != nil {
			return nil, err
		}
		out = append(out, []byte(d.Body))
	}
	return out, nil
}

func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	ref := s.client.Collection(countersCollection).Doc(collection)
	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *gfs.Transaction) error {
		var c counter
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			if err := snap.DataTo(&c); err != nil {
				return err
			}
		case isNotFound(err):
		default:
			return err
		}
		next = c.Seq + 1
		return tx.Set(ref, counter{Seq: next})
	})
	if err != nil {
		return 0, err
	}
	return int(next), nil
}

// Clear deletes every document in the collection with a BulkWriter, then the counter.
func (s *Store) Clear(ctx context.Context, collection string) error {
	refs, err := s.client.Collection(collection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return err
	}
	bw := s.client.BulkWriter(ctx)
	jobs := make([]*gfs.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return err
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var errs []error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil && !isNotFound(err) {
			errs = append(errs, err)
		}
	}
	if _, err := s.client.Collection(countersCollection).Doc(collection).Delete(ctx); err != nil && !isNotFound(err) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
