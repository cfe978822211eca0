package session

import "context"

// UserIDKey is the session value that marks a session as authenticated.
const UserIDKey = "user_id"

// Session is the per-request view of one browser session. It is not safe
// for use by more than one goroutine.
type Session struct {
	mgr *Manager
	rec *Record

	isNew        bool
	modified     bool
	expireCookie bool
	pendingToken string
}

// ID returns the opaque session id.
func (s *Session) ID() string { return s.rec.ID }

// IsNew reports whether the session has never been persisted.
func (s *Session) IsNew() bool { return s.isNew }

// Get returns a session value.
func (s *Session) Get(key string) (string, bool) {
	v, ok := s.rec.Values[key]
	return v, ok
}

// Set stores a session value. It is persisted at the end of the request
// unless Save is called earlier.
func (s *Session) Set(key, value string) {
	s.rec.Values[key] = value
	s.modified = true
}

// Delete removes a session value.
func (s *Session) Delete(key string) {
	if _, ok := s.rec.Values[key]; ok {
		delete(s.rec.Values, key)
		s.modified = true
	}
}

// UserID returns the authenticated user id. Sessions without one are anonymous.
func (s *Session) UserID() (string, bool) {
	id, ok := s.Get(UserIDKey)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// SetUserID marks the session as belonging to a user.
func (s *Session) SetUserID(id string) {
	s.Set(UserIDKey, id)
}

// Save persists the session now and refreshes its expiry.
func (s *Session) Save(ctx context.Context) error {
	return s.mgr.save(ctx, s)
}

// Destroy deletes the stored session and leaves an empty anonymous one in
// its place; the response will expire the cookie. Destroying a session that
// was never stored only resets it.
func (s *Session) Destroy(ctx context.Context) error {
	return s.mgr.destroy(ctx, s)
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached by Manager.Middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*Session)
	return s, ok && s != nil
}
