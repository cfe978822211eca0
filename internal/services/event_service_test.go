package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestEventService(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		svc := NewEventService(mt.DB)

		uid := "u-1"
		assert.NoError(mt, svc.CreateEvent(context.Background(), EventSignup, "info", "signed up", &uid))
	})

	mt.Run("create failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 8000, Message: "atlas unavailable", Name: "AtlasError",
		}))
		svc := NewEventService(mt.DB)

		assert.Error(mt, svc.CreateEvent(context.Background(), EventLogout, "info", "bye", nil))
	})

	mt.Run("recent", func(mt *mtest.T) {
		ns := mt.DB.Name() + ".events"
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "e-2"},
				{Key: "type", Value: EventSignInFail},
				{Key: "level", Value: "warn"},
				{Key: "message", Value: "bad pin"},
				{Key: "created_at", Value: time.Now()},
			},
			bson.D{
				{Key: "_id", Value: "e-1"},
				{Key: "type", Value: EventSignup},
				{Key: "level", Value: "info"},
				{Key: "message", Value: "signed up"},
				{Key: "user_id", Value: "u-1"},
				{Key: "created_at", Value: time.Now().Add(-time.Minute)},
			},
		))
		svc := NewEventService(mt.DB)

		events, err := svc.GetRecentEvents(context.Background(), 10)
		require.NoError(mt, err)
		require.Len(mt, events, 2)
		assert.Equal(mt, EventSignInFail, events[0].Type)
		assert.Nil(mt, events[0].UserID)
		require.NotNil(mt, events[1].UserID)
		assert.Equal(mt, "u-1", *events[1].UserID)
	})
}
