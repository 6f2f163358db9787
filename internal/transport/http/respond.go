package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gamification-engine/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("http: encode response: %v", err)
		}
	}
}

// writeError maps domain sentinels onto the HTTP contract: validation 400,
// unknown things 404, state conflicts 409, transient storage trouble 503.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownUser),
		errors.Is(err, domain.ErrUnknownGame),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrLinkNotFound),
		errors.Is(err, domain.ErrNotRanked),
		errors.Is(err, domain.ErrNoRewardAvailable):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGameDisabled),
		errors.Is(err, domain.ErrSessionTerminal),
		errors.Is(err, domain.ErrUnknownQuestion),
		errors.Is(err, domain.ErrAlreadyAnswered),
		errors.Is(err, domain.ErrQuestionBankExhausted),
		errors.Is(err, domain.ErrAlreadyLinked):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrStorageUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		log.Printf("http: internal error: %v", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid request body"})
		return false
	}
	return true
}
