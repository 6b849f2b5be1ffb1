package mongo

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eventlottery/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Get(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.events", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "1"},
			{Key: "body", Value: `{"info":{"id":1}}`},
		}))
		doc, err := NewStore(mt.DB).Get(context.Background(), "events", "1")
		require.NoError(mt, err)
		assert.JSONEq(mt, `{"info":{"id":1}}`, string(doc))
	})

	mt.Run("not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "db.events", mtest.FirstBatch))
		_, err := NewStore(mt.DB).Get(context.Background(), "events", "1")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})

	mt.Run("server error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad value"}))
		_, err := NewStore(mt.DB).Get(context.Background(), "events", "1")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestStore_Put(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("upsert", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		err := NewStore(mt.DB).Put(context.Background(), "entrants", "4", []byte(`{"id":4}`))
		require.NoError(mt, err)
	})
}

func TestStore_Delete(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("deleted", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, NewStore(mt.DB).Delete(context.Background(), "entrants", "4"))
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := NewStore(mt.DB).Delete(context.Background(), "entrants", "4")
		assert.ErrorIs(mt, err, domain.ErrNotFound)
	})
}

func TestStore_List(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("two documents", func(mt *mtest.T) {
		first := mtest.CreateCursorResponse(1, "db.logs", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "a"}, {Key: "body", Value: `{"id":"a"}`}},
			bson.D{{Key: "_id", Value: "b"}, {Key: "body", Value: `{"id":"b"}`}},
		)
		end := mtest.CreateCursorResponse(0, "db.logs", mtest.NextBatch)
		mt.AddMockResponses(first, end)

		docs, err := NewStore(mt.DB).List(context.Background(), "logs")
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		assert.JSONEq(mt, `{"id":"a"}`, string(docs[0]))
	})
}

func TestStore_NextID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns incremented sequence", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "entrants"},
			{Key: "seq", Value: int64(1)},
		}}))
		id, err := NewStore(mt.DB).NextID(context.Background(), "entrants")
		require.NoError(mt, err)
		assert.Equal(mt, 1, id)
	})
}

func TestStore_Clear(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("drops collection and counter", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
		)
		require.NoError(mt, NewStore(mt.DB).Clear(context.Background(), "test_events"))
	})
}
