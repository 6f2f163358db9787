package http

import (
	"net/http"

	"gamification-engine/internal/domain"
)

func (h *Handler) syncExternalGame(w http.ResponseWriter, r *http.Request) {
	var req domain.ExternalGame
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalog.SyncExternalGame(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) syncExternalUser(w http.ResponseWriter, r *http.Request) {
	var req domain.ExternalUser
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.catalog.SyncExternalUser(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request) {
	var req domain.InternalGame
	if !decodeBody(w, r, &req) {
		return
	}
	game, err := h.catalog.CreateInternalGame(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, game)
}
