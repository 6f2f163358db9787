package http

import (
	"net/http"

	"gamification-engine/internal/domain"
)

type linkRequest struct {
	ExternalID string `json:"externalId"`
	InternalID string `json:"internalId"`
}

type unlinkRequest struct {
	ExternalID string `json:"externalId"`
}

func (h *Handler) linkGame(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.mappings.LinkGame(r.Context(), req.ExternalID, req.InternalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) unlinkGame(w http.ResponseWriter, r *http.Request) {
	var req unlinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.mappings.UnlinkGame(r.Context(), req.ExternalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) linkUser(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.mappings.LinkUser(r.Context(), req.ExternalID, req.InternalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) unlinkUser(w http.ResponseWriter, r *http.Request) {
	var req unlinkRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.mappings.UnlinkUser(r.Context(), req.ExternalID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type availableGamesResponse struct {
	External []domain.ExternalGame `json:"external"`
	Internal []domain.InternalGame `json:"internal"`
}

func (h *Handler) availableGames(w http.ResponseWriter, r *http.Request) {
	external, internal, err := h.mappings.AvailableGames(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availableGamesResponse{External: external, Internal: internal})
}

type availableUsersResponse struct {
	External []domain.ExternalUser `json:"external"`
}

func (h *Handler) availableUsers(w http.ResponseWriter, r *http.Request) {
	external, err := h.mappings.AvailableUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availableUsersResponse{External: external})
}
