package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/isdelr/pinpass/internal/api/handlers"
	"github.com/isdelr/pinpass/internal/models"
	"github.com/isdelr/pinpass/internal/notify"
	"github.com/isdelr/pinpass/internal/services/servicestest"
	"github.com/isdelr/pinpass/internal/session"
	"github.com/isdelr/pinpass/internal/views"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopDispatcher struct{ calls int }

func (d *nopDispatcher) SendPINRecovery(context.Context, notify.PINRecovery) error {
	d.calls++
	return nil
}

type testApp struct {
	srv        *httptest.Server
	client     *http.Client
	users      *servicestest.Users
	dispatcher *nopDispatcher
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	renderer, err := views.New()
	require.NoError(t, err)

	app := &testApp{users: servicestest.NewUsers(), dispatcher: &nopDispatcher{}}
	router := NewRouter(Dependencies{
		Sessions:       session.NewManager(session.NewMemoryStore(), "test-secret", session.Options{}),
		Users:          app.users,
		Events:         servicestest.NewEvents(),
		Dispatcher:     app.dispatcher,
		Views:          renderer,
		HealthChecks:   map[string]handlers.HealthCheck{"ok": func(context.Context) error { return nil }},
		AllowedOrigins: []string{"http://localhost:3000"},
		SenderName:     "pinpass",
	})
	app.srv = httptest.NewServer(router)
	t.Cleanup(app.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	app.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return app
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.srv.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.srv.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAliceSignsUpAndSeesHerDashboard(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.post(t, "/", url.Values{
		"name":  {"Alice"},
		"email": {"a@x.com"},
		"pin":   {"1234"},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign_in", resp.Header.Get("Location"))

	resp, _ = app.post(t, "/sign_in", url.Values{"email": {"a@x.com"}, "pin": {"1234"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get("Location"))

	resp, body := app.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Alice")
	assert.NotContains(t, body, "1234")
}

func TestFailedSignInSetsNoSession(t *testing.T) {
	app := newTestApp(t)
	app.post(t, "/", url.Values{"name": {"Alice"}, "email": {"a@x.com"}, "pin": {"1234"}})

	resp, body := app.post(t, "/sign_in", url.Values{"email": {"a@x.com"}, "pin": {"0000"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "Invalid email or PIN")
	assert.Empty(t, resp.Cookies())

	resp, _ = app.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/sign_in", resp.Header.Get("Location"))
}

func TestLogoutTwiceRedirects(t *testing.T) {
	app := newTestApp(t)
	app.post(t, "/", url.Values{"name": {"Alice"}, "email": {"a@x.com"}, "pin": {"1234"}})
	app.post(t, "/sign_in", url.Values{"email": {"a@x.com"}, "pin": {"1234"}})

	for i := 0; i < 2; i++ {
		resp, _ := app.get(t, "/logout")
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/sign_in", resp.Header.Get("Location"))
	}

	resp, _ := app.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestSignupAppearsInTestDB(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodPost, app.srv.URL+"/",
		strings.NewReader(`{"name":"Bob","email":"b@x.com","pin":4321}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.client.Do(req)
	require.NoError(t, err)
	readBody(t, resp)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := app.get(t, "/test-db")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var users []models.User
	require.NoError(t, json.Unmarshal([]byte(body), &users))
	require.Len(t, users, 1)
	assert.Equal(t, "Bob", users[0].Name)
	assert.Equal(t, "b@x.com", users[0].Email)
	assert.Equal(t, models.PIN("4321"), users[0].PIN)
}

func TestSignupsWithoutEmailDoNotCollide(t *testing.T) {
	app := newTestApp(t)

	for _, name := range []string{"Carol", "Dave"} {
		resp, _ := app.post(t, "/", url.Values{"name": {name}, "pin": {"1111"}})
		assert.Equal(t, http.StatusFound, resp.StatusCode, name)
		assert.Equal(t, "/sign_in", resp.Header.Get("Location"), name)
	}

	users, err := app.users.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestRecoveryForUnknownEmail(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.post(t, "/recover-pin", url.Values{"email": {"ghost@x.com"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body, "No account found with this email")
	assert.Zero(t, app.dispatcher.calls)
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/", "/sign_in", "/recover_pin"} {
		resp, body := app.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "<form", path)
	}

	resp, body := app.get(t, "/terms")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Terms and conditions")

	resp, _ = app.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.get(t, "/events")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
