package handlers

import (
	"net/http"

	"github.com/isdelr/pinpass/internal/services"
	"github.com/rs/zerolog/log"
)

// DebugHandler exposes raw store contents for local troubleshooting.
type DebugHandler struct {
	users services.UserServiceProvider
}

// NewDebugHandler creates a new DebugHandler.
func NewDebugHandler(users services.UserServiceProvider) *DebugHandler {
	return &DebugHandler{users: users}
}

// ListUsers writes every stored user as a JSON array.
func (h *DebugHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
