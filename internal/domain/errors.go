package domain

import "errors"

var (
	// ErrInvalidInput marks malformed input rejected before any state change.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyLinked is returned when either side of a mapping is taken.
	ErrAlreadyLinked = errors.New("already linked")
	// ErrLinkNotFound is returned when no mapping row exists for an external id.
	ErrLinkNotFound = errors.New("mapping not found")
	// ErrUnknownUser is returned when an external user id cannot be resolved.
	ErrUnknownUser = errors.New("unknown external user")
	// ErrUnknownGame is returned when an external game id is not in the catalog.
	ErrUnknownGame = errors.New("unknown external game")
	// ErrGameDisabled is returned when the partner catalog marks a game inactive.
	ErrGameDisabled = errors.New("game disabled")
	// ErrSessionNotFound is returned for unknown or fully expired sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionTerminal is returned when a completed or expired session is mutated.
	ErrSessionTerminal = errors.New("session is terminal")
	// ErrUnknownQuestion is returned when a submission does not match the open question.
	ErrUnknownQuestion = errors.New("question is not open for this session")
	// ErrAlreadyAnswered is returned on replay of a scored question.
	ErrAlreadyAnswered = errors.New("question already answered")
	// ErrQuestionBankExhausted is returned when no unseen question remains.
	ErrQuestionBankExhausted = errors.New("question bank exhausted")
	// ErrNotRanked is returned when a user has no leaderboard entry for the key.
	ErrNotRanked = errors.New("user not ranked")
	// ErrNoRewardAvailable is returned when no reward fits the rank or stock is gone.
	ErrNoRewardAvailable = errors.New("no reward available")
	// ErrStorageUnavailable wraps storage timeouts; callers may retry with backoff.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
