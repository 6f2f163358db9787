package http

import (
	"net/http"

	"gamification-engine/internal/domain"
)

func (h *Handler) createReward(w http.ResponseWriter, r *http.Request) {
	var req domain.Reward
	if !decodeBody(w, r, &req) {
		return
	}
	reward, err := h.rewards.CreateReward(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

type claimRequest struct {
	UserID string `json:"userId"`
	GameID string `json:"gameId"`
	Period string `json:"period"`
}

type claimResponse struct {
	ClaimID string             `json:"claimId"`
	Claim   domain.RewardClaim `json:"claim"`
	Reward  domain.Reward      `json:"reward"`
}

func (h *Handler) claimReward(w http.ResponseWriter, r *http.Request) {
	var req claimRequest
	if !decodeBody(w, r, &req) {
		return
	}
	period, err := domain.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, err)
		return
	}
	claim, reward, err := h.rewards.Claim(r.Context(), req.UserID, req.GameID, period)
	if err != nil {
		writeError(w, err)
		return
	}
	// Repeated claims land here too, returning the original claim.
	writeJSON(w, http.StatusOK, claimResponse{ClaimID: claim.ID, Claim: claim, Reward: reward})
}
