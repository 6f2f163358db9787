package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type createSessionRequest struct {
	ExternalUserID string `json:"externalUserId"`
	ExternalGameID string `json:"externalGameId"`
}

type createSessionResponse struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	session, err := h.sessions.CreateSession(r.Context(), req.ExternalUserID, req.ExternalGameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{SessionID: session.ID})
}

type optionResponse struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// questionResponse deliberately omits the correct flag carried on the
// domain question.
type questionResponse struct {
	QuestionID string           `json:"questionId"`
	Prompt     string           `json:"prompt"`
	Snippet    string           `json:"snippet,omitempty"`
	Options    []optionResponse `json:"options"`
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	difficulty := 0
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid difficulty"})
			return
		}
		difficulty = parsed
	}

	question, err := h.sessions.NextQuestion(r.Context(), sessionID, difficulty)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := questionResponse{
		QuestionID: question.ID,
		Prompt:     question.Prompt,
		Snippet:    question.Snippet,
		Options:    make([]optionResponse, len(question.Options)),
	}
	for i, opt := range question.Options {
		resp.Options[i] = optionResponse{ID: opt.ID, Text: opt.Text}
	}
	writeJSON(w, http.StatusOK, resp)
}

type submitAnswerRequest struct {
	QuestionID     string  `json:"questionId"`
	OptionID       string  `json:"optionId"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	var req submitAnswerRequest
	if !decodeBody(w, r, &req) {
		return
	}
	result, err := h.sessions.SubmitAnswer(r.Context(), sessionID, req.QuestionID, req.OptionID, req.ElapsedSeconds)
	if err != nil {
		writeError(w, err)
		return
	}
	// Replays of an already scored question come back as a plain 200 with
	// the recorded result, so client retries are safe.
	writeJSON(w, http.StatusOK, result)
}
