package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"scambait/internal/domain/models"
	"scambait/internal/domain/services"
	"scambait/internal/infrastructure/cache"
	"scambait/pkg/logger"
)

// HoneypotHandler exposes conversation turn handling.
type HoneypotHandler struct {
	orchestrator *services.Orchestrator
	cache        *cache.RedisCache
	logger       *logger.Logger
}

func NewHoneypotHandler(o *services.Orchestrator, c *cache.RedisCache, log *logger.Logger) *HoneypotHandler {
	return &HoneypotHandler{
		orchestrator: o,
		cache:        c,
		logger:       log.WithComponent("honeypot-handler"),
	}
}

// Turn handles POST /api/v1/honeypot/turn
func (h *HoneypotHandler) Turn(w http.ResponseWriter, r *http.Request) {
	var req models.TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.orchestrator.HandleTurn(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrSessionLocked):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, services.ErrSessionEnded):
			respondError(w, http.StatusGone, err.Error())
		default:
			h.logger.Error().Err(err).Msg("turn handling failed")
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /api/v1/honeypot/sessions/{id}
func (h *HoneypotHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing session id")
		return
	}

	session, err := h.cache.GetSession(r.Context(), id)
	if err != nil {
		h.logger.Error().Err(err).Msg("session lookup failed")
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if session == nil {
		respondError(w, http.StatusNotFound, "session not found")
		return
	}

	respondJSON(w, http.StatusOK, session)
}
