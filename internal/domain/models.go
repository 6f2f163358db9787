package domain

import (
	"fmt"
	"time"
)

// GameType classifies the question material for an internal game.
type GameType string

const (
	GameTypeBooks   GameType = "books"
	GameTypeAuthors GameType = "authors"
	GameTypeYears   GameType = "years"
)

// ParseGameType validates a game type string at the boundary.
func ParseGameType(raw string) (GameType, error) {
	switch GameType(raw) {
	case GameTypeBooks, GameTypeAuthors, GameTypeYears:
		return GameType(raw), nil
	}
	return "", fmt.Errorf("%w: game type %q", ErrInvalidInput, raw)
}

// CreditPolicy decides when session points reach the leaderboard.
type CreditPolicy string

const (
	// CreditOnComplete credits the whole session score once, at completion.
	CreditOnComplete CreditPolicy = "on_complete"
	// CreditPerAnswer credits each scored answer as it happens.
	CreditPerAnswer CreditPolicy = "per_answer"
)

// ParseCreditPolicy validates a credit policy string at the boundary.
func ParseCreditPolicy(raw string) (CreditPolicy, error) {
	switch CreditPolicy(raw) {
	case CreditOnComplete, CreditPerAnswer:
		return CreditPolicy(raw), nil
	}
	return "", fmt.Errorf("%w: credit policy %q", ErrInvalidInput, raw)
}

// ExternalGame is a game as known to the partner catalog. Created by catalog
// sync; only the active flag changes afterwards.
type ExternalGame struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ExternalUser is a partner-platform user, created by catalog sync.
type ExternalUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// InternalGame is a locally configured game.
type InternalGame struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Type          GameType     `json:"type"`
	Difficulty    int          `json:"difficulty"`
	TimeLimitSec  int          `json:"timeLimitSec"`  // per-question timer
	QuestionCount int          `json:"questionCount"` // answers until the session completes
	BasePoints    int          `json:"basePoints"`    // defaults to 10 if zero
	CreditPolicy  CreditPolicy `json:"creditPolicy"`
}

// Link is a mapping record between one external and one internal id.
// InternalID is empty while the record is half-linked (external known,
// nothing attached yet).
type Link struct {
	ExternalID string `json:"externalId"`
	InternalID string `json:"internalId,omitempty"`
}

// Option is a possible answer for a question.
type Option struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct"` // kept in storage, stripped by the transport layer
}

// Question is a quiz prompt with exactly one correct option. Questions are
// generated per session request and live only on the session record.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Snippet string   `json:"snippet,omitempty"`
	Options []Option `json:"options"`
}

// CorrectOption returns the id of the correct option, or "".
func (q Question) CorrectOption() string {
	for _, opt := range q.Options {
		if opt.Correct {
			return opt.ID
		}
	}
	return ""
}

// SessionState is the lifecycle state of a quiz session.
type SessionState string

const (
	SessionInProgress SessionState = "in_progress"
	SessionCompleted  SessionState = "completed"
	SessionExpired    SessionState = "expired"
)

// Terminal reports whether the state accepts no further mutation.
func (s SessionState) Terminal() bool {
	return s == SessionCompleted || s == SessionExpired
}

// AnswerRecord is one scored submission, append-only on the session.
type AnswerRecord struct {
	QuestionID string    `json:"questionId"`
	OptionID   string    `json:"optionId"`
	Correct    bool      `json:"correct"`
	Points     int       `json:"points"`
	ElapsedSec float64   `json:"elapsedSec"`
	AnsweredAt time.Time `json:"answeredAt"`
}

// GameSession is one quiz attempt by one external user on one external game.
// InternalGameID is empty when the game is not linked; such sessions still
// run but never reach a leaderboard. The game config is snapshotted at
// creation so submits do not depend on later operator edits.
type GameSession struct {
	ID             string         `json:"id"`
	ExternalUserID string         `json:"externalUserId"`
	ExternalGameID string         `json:"externalGameId"`
	InternalGameID string         `json:"internalGameId,omitempty"`
	GameType       GameType       `json:"gameType"`
	Difficulty     int            `json:"difficulty"`
	TimeLimitSec   int            `json:"timeLimitSec"`
	QuestionCount  int            `json:"questionCount"`
	BasePoints     int            `json:"basePoints"`
	CreditPolicy   CreditPolicy   `json:"creditPolicy"`
	OpenQuestion   *Question      `json:"openQuestion,omitempty"`
	AskedIDs       []string       `json:"askedIds,omitempty"`
	Answers        []AnswerRecord `json:"answers,omitempty"`
	Score          int            `json:"score"`
	State          SessionState   `json:"state"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	ExpiresAt      time.Time      `json:"expiresAt"`
}

// Answered returns the recorded result for a question id, if any.
func (s *GameSession) Answered(questionID string) (AnswerRecord, bool) {
	for _, rec := range s.Answers {
		if rec.QuestionID == questionID {
			return rec, true
		}
	}
	return AnswerRecord{}, false
}

// LeaderboardEntry is the aggregated standing for one (user, game, period)
// key within one window. Points only ever grow while the window is current.
type LeaderboardEntry struct {
	UserID      string    `json:"userId"`
	GameID      string    `json:"gameId"`
	Period      Period    `json:"period"`
	WindowStart time.Time `json:"windowStart"`
	Points      int       `json:"points"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Standing is a ranked leaderboard row as served to clients.
type Standing struct {
	UserID string `json:"userId"`
	Points int    `json:"points"`
	Rank   int    `json:"rank"`
}

// Leaderboard is an ordered scoreboard snapshot for one (game, period).
type Leaderboard struct {
	GameID    string     `json:"gameId"`
	Period    Period     `json:"period"`
	Standings []Standing `json:"standings"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Reward is a prize definition created by an operator. RequiredRank is the
// worst rank that still qualifies (1 = only the leader).
type Reward struct {
	ID           string `json:"id"`
	GameID       string `json:"gameId"`
	Name         string `json:"name"`
	RequiredRank int    `json:"requiredRank"`
	Value        int    `json:"value"`
	Available    int    `json:"available"`
}

// RewardClaim is a fulfilled reward, created exactly once per
// (user, reward, period) and never mutated.
type RewardClaim struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	RewardID  string    `json:"rewardId"`
	GameID    string    `json:"gameId"`
	Period    Period    `json:"period"`
	Rank      int       `json:"rank"`
	ClaimedAt time.Time `json:"claimedAt"`
}
