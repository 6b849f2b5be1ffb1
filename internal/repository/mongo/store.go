// Package mongo stores each collection as a MongoDB collection of {_id, body} documents.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodrv "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eventlottery/internal/domain"
)

const countersCollection = "counters"

type document struct {
	ID   string `bson:"_id"`
	Body string `bson:"body"`
}

type counter struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// Connect opens a client for uri and pings the primary.
func Connect(ctx context.Context, uri string) (*mongodrv.Client, error) {
	client, err := mongodrv.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Store keeps id counters in a shared "counters" collection, bumped with an
// upserting $inc so each call returns a distinct value.
type Store struct {
	db *mongodrv.Database
}

func NewStore(db *mongodrv.Database) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var doc document
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodrv.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return []byte(doc.Body), nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc []byte) error {
	_, err := s.db.Collection(collection).ReplaceOne(ctx,
		bson.M{"_id": id},
		document{ID: id, Body: string(doc)},
		options.Replace().SetUpsert(true),
	)
	return err
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns documents ordered by _id.
func (s *Store) List(ctx context.Context, collection string) ([][]byte, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([][]byte, 0, len(docs))
	for _, d := range docs {
		out = append(out, []byte(d.Body))
	}
	return out, nil
}

func (s *Store) NextID(ctx context.Context, collection string) (int, error) {
	var c counter
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": collection},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&c)
	if err != nil {
		return 0, err
	}
	return int(c.Seq), nil
}

func (s *Store) Clear(ctx context.Context, collection string) error {
	if err := s.db.Collection(collection).Drop(ctx); err != nil {
		return err
	}
	_, err := s.db.Collection(countersCollection).DeleteOne(ctx, bson.M{"_id": collection})
	return err
}
