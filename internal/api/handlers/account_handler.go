package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/pinpass/internal/auth"
	"github.com/isdelr/pinpass/internal/models"
	"github.com/isdelr/pinpass/internal/services"
	"github.com/isdelr/pinpass/internal/session"
	"github.com/isdelr/pinpass/internal/views"
	"github.com/rs/zerolog/log"
)

// Paths the account flow redirects between.
const (
	SignInPath    = "/sign_in"
	DashboardPath = "/dashboard"
)

// AccountHandler handles signup, sign-in, the dashboard and logout.
type AccountHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
	views  *views.Renderer
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(users services.UserServiceProvider, events services.EventServiceProvider, renderer *views.Renderer) *AccountHandler {
	return &AccountHandler{users: users, events: events, views: renderer}
}

func (h *AccountHandler) render(w http.ResponseWriter, status int, page string, data views.Data) {
	if err := h.views.Render(w, status, page, data); err != nil {
		log.Error().Err(err).Str("page", page).Msg("Failed to render page")
	}
}

// SignupForm renders the signup page.
func (h *AccountHandler) SignupForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.Signup, views.Data{})
}

// Signup creates an account and sends the user to sign in.
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		h.render(w, http.StatusBadRequest, views.Signup, views.Data{Error: "Invalid request body"})
		return
	}

	in := models.SignupInput{
		Name:  field(values, "name"),
		Email: field(values, "email"),
		DOB:   field(values, "dob"),
		Phone: field(values, "phone"),
		PIN:   field(values, "pin"),
	}
	echo := views.FormValues{Name: in.Name, Email: in.Email, DOB: in.DOB, Phone: in.Phone}

	user, err := h.users.CreateUser(r.Context(), in)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			h.render(w, http.StatusConflict, views.Signup, views.Data{
				Error: "An account with this email already exists",
				Form:  echo,
			})
			return
		}
		log.Error().Err(err).Str("email", in.Email).Msg("Failed to register user")
		h.render(w, http.StatusInternalServerError, views.Signup, views.Data{
			Error: "Something went wrong. Please try again.",
			Form:  echo,
		})
		return
	}

	recordEvent(r.Context(), h.events, services.EventSignup, "info", "Account created for "+user.Email, user.ID)
	http.Redirect(w, r, SignInPath, http.StatusFound)
}

// SignInForm renders the sign-in page.
func (h *AccountHandler) SignInForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.SignIn, views.Data{})
}

// SignIn checks the email and PIN and starts a session.
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		h.render(w, http.StatusBadRequest, views.SignIn, views.Data{Error: "Invalid request body"})
		return
	}
	email := field(values, "email")
	echo := views.FormValues{Email: email}

	user, err := h.users.AuthenticateUser(r.Context(), email, field(values, "pin"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			log.Warn().Str("email", email).Msg("Failed authentication attempt")
			recordEvent(r.Context(), h.events, services.EventSignInFail, "warn", "Failed sign-in for "+email, "")
			h.render(w, http.StatusUnauthorized, views.SignIn, views.Data{Error: "Invalid email or PIN", Form: echo})
			return
		}
		log.Error().Err(err).Str("email", email).Msg("Failed to authenticate user")
		h.render(w, http.StatusInternalServerError, views.SignIn, views.Data{Error: "Something went wrong", Form: echo})
		return
	}

	sess, ok := session.FromContext(r.Context())
	if !ok {
		log.Error().Msg("Session middleware not installed")
		h.render(w, http.StatusInternalServerError, views.SignIn, views.Data{Error: "Something went wrong", Form: echo})
		return
	}

	// A fresh session id on every sign-in. If the old one cannot be dropped
	// the sign-in fails rather than reusing it.
	if !sess.IsNew() {
		if err := sess.Destroy(r.Context()); err != nil {
			log.Error().Err(err).Str("session_id", sess.ID()).Msg("Failed to drop previous session")
			h.render(w, http.StatusInternalServerError, views.SignIn, views.Data{Error: "Something went wrong", Form: echo})
			return
		}
	}
	sess.SetUserID(user.ID)
	if err := sess.Save(r.Context()); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to save session")
		_ = sess.Destroy(r.Context())
		h.render(w, http.StatusInternalServerError, views.SignIn, views.Data{Error: "Something went wrong", Form: echo})
		return
	}

	recordEvent(r.Context(), h.events, services.EventSignInSuccess, "info", "Signed in", user.ID)
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

// Dashboard shows the signed-in user's profile. It runs behind auth.RequireUser.
func (h *AccountHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, SignInPath, http.StatusFound)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			log.Warn().Str("user_id", userID).Msg("Session refers to a missing user")
			recordEvent(r.Context(), h.events, services.EventSessionOrphan, "warn", "Session dropped for missing user", userID)
			h.destroySession(w, r)
			return
		}
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load dashboard user")
		h.render(w, http.StatusInternalServerError, views.Dashboard, views.Data{Error: "Something went wrong"})
		return
	}

	profile := user.Profile()
	h.render(w, http.StatusOK, views.Dashboard, views.Data{Profile: &profile})
}

// Logout ends the session. Calling it without a session is fine.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if userID, authed := sess.UserID(); authed {
			recordEvent(r.Context(), h.events, services.EventLogout, "info", "Signed out", userID)
		}
	}
	h.destroySession(w, r)
}

// destroySession removes the session before redirecting so the next request
// is already anonymous.
func (h *AccountHandler) destroySession(w http.ResponseWriter, r *http.Request) {
	if sess, ok := session.FromContext(r.Context()); ok {
		if err := sess.Destroy(r.Context()); err != nil {
			log.Error().Err(err).Str("session_id", sess.ID()).Msg("Failed to destroy session")
			http.Error(w, "Something went wrong", http.StatusInternalServerError)
			return
		}
	}
	http.Redirect(w, r, SignInPath, http.StatusFound)
}
