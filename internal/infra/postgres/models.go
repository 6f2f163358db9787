package postgres

import (
	"time"

	"github.com/uptrace/bun"
)

type externalGameRow struct {
	bun.BaseModel `bun:"table:external_games"`
	ID            string `bun:"id,pk"`
	Name          string `bun:"name"`
	Active        bool   `bun:"active"`
}

type externalUserRow struct {
	bun.BaseModel `bun:"table:external_users"`
	ID            string `bun:"id,pk"`
	Username      string `bun:"username"`
	Email         string `bun:"email"`
}

type internalGameRow struct {
	bun.BaseModel `bun:"table:internal_games"`
	ID            string `bun:"id,pk"`
	Name          string `bun:"name"`
	GameType      string `bun:"game_type"`
	Difficulty    int    `bun:"difficulty"`
	TimeLimitSec  int    `bun:"time_limit_sec"`
	QuestionCount int    `bun:"question_count"`
	BasePoints    int    `bun:"base_points"`
	CreditPolicy  string `bun:"credit_policy"`
}

type sessionRow struct {
	bun.BaseModel  `bun:"table:game_sessions"`
	ID             string    `bun:"id,pk"`
	ExternalUserID string    `bun:"external_user_id"`
	ExternalGameID string    `bun:"external_game_id"`
	InternalGameID *string   `bun:"internal_game_id"`
	GameType       string    `bun:"game_type"`
	Score          int       `bun:"score"`
	State          string    `bun:"state"`
	CreatedAt      time.Time `bun:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at"`
}

type sessionAnswerRow struct {
	bun.BaseModel `bun:"table:session_answers"`
	SessionID     string    `bun:"session_id,pk"`
	Position      int       `bun:"position,pk"`
	QuestionID    string    `bun:"question_id"`
	OptionID      string    `bun:"option_id"`
	Correct       bool      `bun:"correct"`
	Points        int       `bun:"points"`
	ElapsedSec    float64   `bun:"elapsed_sec"`
	AnsweredAt    time.Time `bun:"answered_at"`
}

type rewardRow struct {
	bun.BaseModel `bun:"table:rewards"`
	ID            string `bun:"id,pk"`
	GameID        string `bun:"game_id"`
	Name          string `bun:"name"`
	RequiredRank  int    `bun:"required_rank"`
	Value         int    `bun:"value"`
	Available     int    `bun:"available"`
}

type rewardClaimRow struct {
	bun.BaseModel `bun:"table:reward_claims"`
	ID            string    `bun:"id,pk"`
	UserID        string    `bun:"user_id"`
	RewardID      string    `bun:"reward_id"`
	GameID        string    `bun:"game_id"`
	Period        string    `bun:"period"`
	Rank          int       `bun:"rank"`
	ClaimedAt     time.Time `bun:"claimed_at"`
}
