package handlers

import (
	"net/http"

	"github.com/isdelr/pinpass/internal/views"
	"github.com/rs/zerolog/log"
)

// PageHandler serves static pages.
type PageHandler struct {
	views *views.Renderer
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(renderer *views.Renderer) *PageHandler {
	return &PageHandler{views: renderer}
}

// Terms renders the terms and conditions.
func (h *PageHandler) Terms(w http.ResponseWriter, r *http.Request) {
	if err := h.views.Render(w, http.StatusOK, views.Terms, views.Data{}); err != nil {
		log.Error().Err(err).Msg("Failed to render terms page")
	}
}
