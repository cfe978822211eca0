package models

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// User represents one registrant.
type User struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email,omitempty" json:"email"`
	DOB       string    `bson:"dob,omitempty" json:"dob,omitempty"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	PIN       PIN       `bson:"pin" json:"pin"` // plaintext, see DESIGN.md
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Profile is the part of a User that may be shown back to its owner.
type Profile struct {
	ID        string
	Name      string
	Email     string
	DOB       string
	Phone     string
	CreatedAt time.Time
}

// Profile strips the PIN.
func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		DOB:       u.DOB,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}

// SignupInput carries the fields submitted on the signup form.
type SignupInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	DOB   string `json:"dob"`
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

// PIN is stored as a string. Older documents may hold it as a number, so
// decoding accepts any numeric BSON type and keeps its decimal form.
type PIN string

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (p *PIN) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*p = PIN(raw.StringValue())
	case bsontype.Int32:
		*p = PIN(strconv.FormatInt(int64(raw.Int32()), 10))
	case bsontype.Int64:
		*p = PIN(strconv.FormatInt(raw.Int64(), 10))
	case bsontype.Double:
		f := raw.Double()
		if f == math.Trunc(f) {
			*p = PIN(strconv.FormatInt(int64(f), 10))
		} else {
			*p = PIN(strconv.FormatFloat(f, 'f', -1, 64))
		}
	case bsontype.Null, bsontype.Undefined:
		*p = ""
	default:
		return fmt.Errorf("cannot decode %s into PIN", t)
	}
	return nil
}

// Matches compares PINs as strings.
func (p PIN) Matches(candidate string) bool {
	return string(p) == candidate
}
