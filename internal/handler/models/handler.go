package models

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/marcus/good-drawer/internal/service/engine"
	"github.com/marcus/good-drawer/pkg/utils"
)

// Lister reports the models the drawing engine can serve.
type Lister interface {
	ListModels(ctx context.Context) ([]engine.Model, error)
}

// Handler exposes model discovery over HTTP.
type Handler struct {
	engine Lister
}

// New creates a models handler.
func New(engine Lister) *Handler {
	return &Handler{engine: engine}
}

// RegisterRoutes registers model discovery routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/models", h.handleListModels)
}

// handleListModels lists installed models with the configured default flagged.
func (h *Handler) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := h.engine.ListModels(r.Context())
	if err != nil {
		if engine.IsUnavailable(err) {
			utils.RespondError(w, http.StatusBadGateway, "drawing engine unreachable")
			return
		}
		log.Error().Err(err).Msg("listing models failed")
		utils.RespondError(w, http.StatusInternalServerError, "failed to list models")
		return
	}
	utils.RespondJSON(w, http.StatusOK, models)
}
