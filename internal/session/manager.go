package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is the session lifetime, counted from the last write.
const DefaultTTL = 24 * time.Hour

// CookieOptions control the session cookie attributes.
type CookieOptions struct {
	Name     string
	Path     string
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Options configure a Manager.
type Options struct {
	TTL    time.Duration
	Cookie CookieOptions
}

// Manager resolves request cookies to sessions and persists them.
type Manager struct {
	store  Store
	tokens *TokenCodec
	ttl    time.Duration
	cookie CookieOptions
	now    func() time.Time
}

// NewManager creates a Manager backed by store. The secret signs cookie values.
func NewManager(store Store, secret string, opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Cookie.Name == "" {
		opts.Cookie.Name = "pinpass.sid"
	}
	if opts.Cookie.Path == "" {
		opts.Cookie.Path = "/"
	}
	return &Manager{
		store:  store,
		tokens: NewTokenCodec(secret),
		ttl:    opts.TTL,
		cookie: opts.Cookie,
		now:    time.Now,
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Ping checks the backing store.
func (m *Manager) Ping(ctx context.Context) error {
	return m.store.Ping(ctx)
}

// Middleware attaches a Session to every request. Changes made by the
// handler are persisted right before the response header goes out.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.resolve(r)
		cw := &commitWriter{ResponseWriter: w}
		cw.commit = func() { m.commit(r.Context(), w, sess) }

		next.ServeHTTP(cw, r.WithContext(NewContext(r.Context(), sess)))
		cw.flush()
	})
}

func (m *Manager) resolve(r *http.Request) *Session {
	cookie, err := r.Cookie(m.cookie.Name)
	if err != nil || cookie.Value == "" {
		return m.fresh(false)
	}

	id, err := m.tokens.Parse(cookie.Value)
	if err != nil {
		log.Debug().Err(err).Msg("Discarding unverifiable session cookie")
		return m.fresh(true)
	}

	rec, err := m.store.Load(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Error().Err(err).Str("session_id", id).Msg("Failed to load session")
		}
		return m.fresh(true)
	}
	return &Session{mgr: m, rec: rec}
}

// fresh returns an anonymous session. staleCookie marks that the request
// carried a cookie that no longer maps to a session, so it gets expired.
func (m *Manager) fresh(staleCookie bool) *Session {
	now := m.now()
	return &Session{
		mgr: m,
		rec: &Record{
			ID:        uuid.New().String(),
			Values:    map[string]string{},
			CreatedAt: now,
		},
		isNew:        true,
		expireCookie: staleCookie,
	}
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	now := m.now()
	s.rec.ExpiresAt = now.Add(m.ttl)
	if err := m.store.Save(ctx, s.rec, m.ttl); err != nil {
		return err
	}
	token, err := m.tokens.Sign(s.rec.ID, now, s.rec.ExpiresAt)
	if err != nil {
		return err
	}
	s.isNew = false
	s.modified = false
	s.expireCookie = false
	s.pendingToken = token
	return nil
}

func (m *Manager) destroy(ctx context.Context, s *Session) error {
	if !s.isNew {
		if err := m.store.Delete(ctx, s.rec.ID); err != nil {
			return err
		}
	}
	hadCookie := !s.isNew || s.expireCookie || s.pendingToken != ""
	*s = *m.fresh(hadCookie)
	return nil
}

// commit runs once per request before the header is written.
func (m *Manager) commit(ctx context.Context, w http.ResponseWriter, s *Session) {
	if s.modified {
		if err := m.save(ctx, s); err != nil {
			log.Error().Err(err).Str("session_id", s.rec.ID).Msg("Failed to persist session")
			return
		}
	}

	switch {
	case s.pendingToken != "":
		http.SetCookie(w, m.newCookie(s.pendingToken, int(m.ttl.Seconds()), s.rec.ExpiresAt))
	case s.expireCookie:
		http.SetCookie(w, m.newCookie("", -1, time.Unix(0, 0)))
	}
}

func (m *Manager) newCookie(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie.Name,
		Value:    value,
		Path:     m.cookie.Path,
		MaxAge:   maxAge,
		Expires:  expires,
		Secure:   m.cookie.Secure,
		HttpOnly: m.cookie.HTTPOnly,
		SameSite: m.cookie.SameSite,
	}
}

// commitWriter calls commit exactly once, before the first header or body write.
type commitWriter struct {
	http.ResponseWriter
	commit func()
	done   bool
}

func (w *commitWriter) flush() {
	if !w.done {
		w.done = true
		w.commit()
	}
}

func (w *commitWriter) WriteHeader(code int) {
	w.flush()
	w.ResponseWriter.WriteHeader(code)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	w.flush()
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
