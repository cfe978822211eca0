package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/isdelr/pinpass/internal/notify"
	"github.com/isdelr/pinpass/internal/services/servicestest"
	"github.com/isdelr/pinpass/internal/session"
	"github.com/isdelr/pinpass/internal/views"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users    *servicestest.Users
	events   *servicestest.Events
	sessions *session.Manager
	store    *session.MemoryStore
	views    *views.Renderer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	renderer, err := views.New()
	require.NoError(t, err)
	store := session.NewMemoryStore()
	return &testEnv{
		users:    servicestest.NewUsers(),
		events:   servicestest.NewEvents(),
		sessions: session.NewManager(store, "test-secret", session.Options{}),
		store:    store,
		views:    renderer,
	}
}

// serve runs h behind the session middleware.
func (e *testEnv) serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.sessions.Middleware(h).ServeHTTP(rec, req)
	return rec
}

// login returns a cookie for a session already signed in as userID.
func (e *testEnv) login(t *testing.T, userID string) *http.Cookie {
	t.Helper()
	rec := e.serve(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := session.FromContext(r.Context())
		sess.SetUserID(userID)
	}), httptest.NewRequest(http.MethodGet, "/", nil))
	return findCookie(t, rec)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "pinpass.sid" {
			return c
		}
	}
	return nil
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// undeletableStore fails every Delete.
type undeletableStore struct {
	*session.MemoryStore
}

func (s *undeletableStore) Delete(context.Context, string) error {
	return errors.New("store unavailable")
}

type recordingDispatcher struct {
	mu   sync.Mutex
	sent []notify.PINRecovery
	err  error
}

func (d *recordingDispatcher) SendPINRecovery(_ context.Context, msg notify.PINRecovery) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return d.err
}
