package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"gamification-engine/internal/domain"
)

// LeaderboardStore is an in-memory implementation of
// app.LeaderboardRepository. Increments happen under one mutex, so each
// AddPoints is a single read-modify-write on its key.
type LeaderboardStore struct {
	mu      sync.Mutex
	entries map[entryKey]*domain.LeaderboardEntry
}

type entryKey struct {
	userID      string
	gameID      string
	period      domain.Period
	windowStart int64
}

func NewLeaderboardStore() *LeaderboardStore {
	return &LeaderboardStore{entries: make(map[entryKey]*domain.LeaderboardEntry)}
}

func (s *LeaderboardStore) AddPoints(_ context.Context, entry domain.LeaderboardEntry) error {
	key := entryKey{entry.UserID, entry.GameID, entry.Period, entry.WindowStart.Unix()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		existing.Points += entry.Points
		existing.UpdatedAt = entry.UpdatedAt
		return nil
	}
	stored := entry
	s.entries[key] = &stored
	return nil
}

func (s *LeaderboardStore) Top(_ context.Context, gameID string, period domain.Period, windowStart time.Time, limit int) ([]domain.Standing, error) {
	s.mu.Lock()
	ordered := s.orderedLocked(gameID, period, windowStart)
	s.mu.Unlock()

	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}
	return ordered, nil
}

func (s *LeaderboardStore) Rank(_ context.Context, userID, gameID string, period domain.Period, windowStart time.Time) (domain.Standing, error) {
	s.mu.Lock()
	ordered := s.orderedLocked(gameID, period, windowStart)
	s.mu.Unlock()

	for _, standing := range ordered {
		if standing.UserID == userID {
			return standing, nil
		}
	}
	return domain.Standing{}, domain.ErrNotRanked
}

// orderedLocked ranks points descending with the earliest-created entry
// winning ties, so equal totals always resolve the same way.
func (s *LeaderboardStore) orderedLocked(gameID string, period domain.Period, windowStart time.Time) []domain.Standing {
	window := windowStart.Unix()
	entries := make([]*domain.LeaderboardEntry, 0)
	for key, entry := range s.entries {
		if key.gameID == gameID && key.period == period && key.windowStart == window {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.Before(entries[j].CreatedAt)
		}
		return entries[i].UserID < entries[j].UserID
	})

	standings := make([]domain.Standing, len(entries))
	for i, entry := range entries {
		standings[i] = domain.Standing{UserID: entry.UserID, Points: entry.Points, Rank: i + 1}
	}
	return standings
}
