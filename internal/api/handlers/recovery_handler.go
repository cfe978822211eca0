package handlers

import (
	"errors"
	"net/http"

	"github.com/isdelr/pinpass/internal/notify"
	"github.com/isdelr/pinpass/internal/services"
	"github.com/isdelr/pinpass/internal/views"
	"github.com/rs/zerolog/log"
)

// RecoveryHandler emails a forgotten PIN to the account owner.
type RecoveryHandler struct {
	users      services.UserServiceProvider
	events     services.EventServiceProvider
	dispatcher notify.Dispatcher
	views      *views.Renderer
	senderName string
}

// NewRecoveryHandler creates a new RecoveryHandler.
func NewRecoveryHandler(users services.UserServiceProvider, events services.EventServiceProvider, dispatcher notify.Dispatcher, renderer *views.Renderer, senderName string) *RecoveryHandler {
	return &RecoveryHandler{
		users:      users,
		events:     events,
		dispatcher: dispatcher,
		views:      renderer,
		senderName: senderName,
	}
}

func (h *RecoveryHandler) render(w http.ResponseWriter, status int, data views.Data) {
	if err := h.views.Render(w, status, views.RecoverPIN, data); err != nil {
		log.Error().Err(err).Msg("Failed to render recovery page")
	}
}

// Form renders the recovery page.
func (h *RecoveryHandler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.Data{})
}

// Recover looks the email up and sends the stored PIN to it.
func (h *RecoveryHandler) Recover(w http.ResponseWriter, r *http.Request) {
	values, err := formValues(w, r)
	if err != nil {
		h.render(w, http.StatusBadRequest, views.Data{Error: "Invalid request body"})
		return
	}
	email := field(values, "email")
	echo := views.FormValues{Email: email}

	user, err := h.users.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			h.render(w, http.StatusNotFound, views.Data{Error: "No account found with this email", Form: echo})
			return
		}
		log.Error().Err(err).Str("email", email).Msg("Failed to look up user for PIN recovery")
		h.render(w, http.StatusInternalServerError, views.Data{Error: "Something went wrong", Form: echo})
		return
	}

	err = h.dispatcher.SendPINRecovery(r.Context(), notify.PINRecovery{
		Email:      user.Email,
		PIN:        string(user.PIN),
		SenderName: h.senderName,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to send PIN recovery email")
		recordEvent(r.Context(), h.events, services.EventRecoveryFailed, "error", "PIN recovery email failed", user.ID)
		h.render(w, http.StatusBadGateway, views.Data{Error: "Failed to send email. Please try again later.", Form: echo})
		return
	}

	recordEvent(r.Context(), h.events, services.EventRecoverySent, "info", "PIN recovery email sent", user.ID)
	h.render(w, http.StatusOK, views.Data{Success: "Your PIN has been sent to your email"})
}
