package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Store.Load for absent or expired sessions.
	ErrNotFound = errors.New("session not found")

	// ErrStoreUnavailable wraps backend failures.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Record is the persisted state of one session.
type Record struct {
	ID        string            `json:"id"`
	Values    map[string]string `json:"values"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at"`
}

func (r *Record) clone() *Record {
	out := *r
	out.Values = make(map[string]string, len(r.Values))
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return &out
}

// Store persists session records.
type Store interface {
	Load(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
