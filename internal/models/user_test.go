package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestPINDecodesNumericTypes(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  PIN
	}{
		{"string", "0042", "0042"},
		{"int32", int32(1234), "1234"},
		{"int64", int64(987654), "987654"},
		{"whole double", float64(5555), "5555"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.D{{Key: "_id", Value: "u"}, {Key: "pin", Value: tt.value}})
			require.NoError(t, err)

			var u User
			require.NoError(t, bson.Unmarshal(raw, &u))
			assert.Equal(t, tt.want, u.PIN)
		})
	}
}

func TestPINRejectsDocuments(t *testing.T) {
	raw, err := bson.Marshal(bson.D{{Key: "pin", Value: bson.D{{Key: "x", Value: 1}}}})
	require.NoError(t, err)

	var u User
	assert.Error(t, bson.Unmarshal(raw, &u))
}

func TestPINEncodesAsString(t *testing.T) {
	raw, err := bson.Marshal(User{ID: "u", PIN: "1234"})
	require.NoError(t, err)

	assert.Equal(t, "1234", bson.Raw(raw).Lookup("pin").StringValue())
}

func TestProfileOmitsPIN(t *testing.T) {
	u := User{ID: "u", Name: "Alice", Email: "a@x.com", Phone: "555", PIN: "1234"}
	p := u.Profile()

	assert.Equal(t, Profile{ID: "u", Name: "Alice", Email: "a@x.com", Phone: "555"}, p)
}

func TestPINMatches(t *testing.T) {
	assert.True(t, PIN("1234").Matches("1234"))
	assert.False(t, PIN("1234").Matches("01234"))
	assert.False(t, PIN("").Matches("0"))
}

func TestEmptyEmailIsNotStored(t *testing.T) {
	raw, err := bson.Marshal(User{ID: "u", Name: "Carol", PIN: "1"})
	require.NoError(t, err)
	_, lookupErr := bson.Raw(raw).LookupErr("email")
	assert.Error(t, lookupErr)

	raw, err = bson.Marshal(User{ID: "u", Email: "c@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "c@x.com", bson.Raw(raw).Lookup("email").StringValue())
}
