package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/sirosfoundation/go-ebics/internal/storage"
)

var _ storage.Store = (*Store)(nil)

func TestNextOrderID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("returns incremented value", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "EBIXHOST")
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "EBIXHOST/P1"},
				{Key: "seq", Value: int64(42)},
			}},
		))

		n, err := s.NextOrderID(context.Background(), "P1")
		require.NoError(t, err)
		assert.EqualValues(t, 42, n)
	})

	mt.Run("propagates errors", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "")
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    11000,
			Message: "duplicate key",
		}))

		_, err := s.NextOrderID(context.Background(), "P1")
		assert.Error(t, err)
	})
}

func TestCounterID(t *testing.T) {
	assert.Equal(t, "P1", (&Store{}).counterID("P1"))
	assert.Equal(t, "H/P1", (&Store{namespace: "H"}).counterID("P1"))
}

func TestJournal(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mt.Run("record", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "")
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		req := &storage.Request{ID: "r1", HostID: "EBIXHOST", Status: storage.RequestStatusBuilt, CreatedAt: created}
		require.NoError(t, s.RecordRequest(context.Background(), req))
		assert.False(t, req.UpdatedAt.IsZero())
	})

	mt.Run("get", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "")
		ns := mt.DB.Name() + ".requests"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "r1"},
			{Key: "host_id", Value: "EBIXHOST"},
			{Key: "order_id", Value: "A001"},
			{Key: "status", Value: "answered"},
			{Key: "created_at", Value: created},
		}))

		req, err := s.GetRequest(context.Background(), "r1")
		require.NoError(t, err)
		assert.Equal(t, "A001", req.OrderID)
		assert.Equal(t, storage.RequestStatusAnswered, req.Status)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+".requests", mtest.FirstBatch))

		_, err := s.GetRequest(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		s := newStore(mt.Client, mt.DB, "")
		ns := mt.DB.Name() + ".requests"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "r2"}, {Key: "status", Value: "failed"}},
			bson.D{{Key: "_id", Value: "r1"}, {Key: "status", Value: "failed"}},
		))

		reqs, err := s.ListRequests(context.Background(), &storage.RequestFilter{Status: storage.RequestStatusFailed, Limit: 10})
		require.NoError(t, err)
		require.Len(t, reqs, 2)
		assert.Equal(t, "r2", reqs[0].ID)
	})
}
