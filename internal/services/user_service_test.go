package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/pinpass/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func usersNS(mt *mtest.T) string {
	return mt.DB.Name() + ".users"
}

func userDoc(id, name, email string, pin interface{}) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: name},
		{Key: "email", Value: email},
		{Key: "pin", Value: pin},
		{Key: "created_at", Value: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)},
	}
}

func TestUserService_CreateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("stores trimmed fields with a generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		svc := NewUserService(mt.DB)

		user, err := svc.CreateUser(context.Background(), models.SignupInput{
			Name:  " Alice ",
			Email: "a@x.com ",
			PIN:   "1234",
		})
		require.NoError(mt, err)

		_, parseErr := uuid.Parse(user.ID)
		assert.NoError(mt, parseErr)
		assert.Equal(mt, "Alice", user.Name)
		assert.Equal(mt, "a@x.com", user.Email)
		assert.Equal(mt, models.PIN("1234"), user.PIN)
		assert.False(mt, user.CreatedAt.IsZero())
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: users index: email_unique",
		}))
		svc := NewUserService(mt.DB)

		_, err := svc.CreateUser(context.Background(), models.SignupInput{Email: "a@x.com"})
		assert.ErrorIs(mt, err, ErrEmailTaken)
	})

	mt.Run("storage failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Message: "atlas unavailable",
			Name:    "AtlasError",
		}))
		svc := NewUserService(mt.DB)

		_, err := svc.CreateUser(context.Background(), models.SignupInput{Email: "a@x.com"})
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrEmailTaken)
	})
}

func TestUserService_Lookups(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("by email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc("u-1", "Alice", "a@x.com", "1234")))
		svc := NewUserService(mt.DB)

		user, err := svc.GetUserByEmail(context.Background(), "a@x.com")
		require.NoError(mt, err)
		assert.Equal(mt, "u-1", user.ID)
		assert.Equal(mt, "Alice", user.Name)
	})

	mt.Run("by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))
		svc := NewUserService(mt.DB)

		_, err := svc.GetUserByID(context.Background(), "missing")
		assert.ErrorIs(mt, err, ErrUserNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc("u-1", "Alice", "a@x.com", "1234"),
			userDoc("u-2", "Bob", "b@x.com", int32(42)),
		))
		svc := NewUserService(mt.DB)

		users, err := svc.ListUsers(context.Background())
		require.NoError(mt, err)
		require.Len(mt, users, 2)
		assert.Equal(mt, "b@x.com", users[1].Email)
		assert.Equal(mt, models.PIN("42"), users[1].PIN)
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))
		svc := NewUserService(mt.DB)

		users, err := svc.ListUsers(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, users)
		assert.Empty(mt, users)
	})
}

func TestUserService_AuthenticateUser(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matching pin", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc("u-1", "Alice", "a@x.com", "1234")))
		svc := NewUserService(mt.DB)

		user, err := svc.AuthenticateUser(context.Background(), "a@x.com", "1234")
		require.NoError(mt, err)
		assert.Equal(mt, "u-1", user.ID)
	})

	mt.Run("numeric stored pin compares as string", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc("u-1", "Alice", "a@x.com", int64(1234))))
		svc := NewUserService(mt.DB)

		_, err := svc.AuthenticateUser(context.Background(), "a@x.com", "1234")
		assert.NoError(mt, err)
	})

	mt.Run("wrong pin", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch,
			userDoc("u-1", "Alice", "a@x.com", "1234")))
		svc := NewUserService(mt.DB)

		_, err := svc.AuthenticateUser(context.Background(), "a@x.com", "9999")
		assert.ErrorIs(mt, err, ErrInvalidCredentials)
	})

	mt.Run("unknown email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS(mt), mtest.FirstBatch))
		svc := NewUserService(mt.DB)

		_, err := svc.AuthenticateUser(context.Background(), "nobody@x.com", "1234")
		assert.ErrorIs(mt, err, ErrInvalidCredentials)
	})

	mt.Run("storage failure is not a credential error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    8000,
			Message: "atlas unavailable",
			Name:    "AtlasError",
		}))
		svc := NewUserService(mt.DB)

		_, err := svc.AuthenticateUser(context.Background(), "a@x.com", "1234")
		require.Error(mt, err)
		assert.NotErrorIs(mt, err, ErrInvalidCredentials)
	})
}
