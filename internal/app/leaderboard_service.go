package app

import (
	"context"
	"log"
	"sync"
	"time"

	"gamification-engine/internal/domain"
)

// LeaderboardRepository persists aggregated standings. AddPoints must be an
// atomic increment on the (user, game, period, window) key, never a
// read-score-then-overwrite. Ordering everywhere is points descending with
// earliest-created entry winning ties.
type LeaderboardRepository interface {
	AddPoints(ctx context.Context, entry domain.LeaderboardEntry) error
	Top(ctx context.Context, gameID string, period domain.Period, windowStart time.Time, limit int) ([]domain.Standing, error)
	// Rank returns domain.ErrNotRanked when the user has no entry for the key.
	Rank(ctx context.Context, userID, gameID string, period domain.Period, windowStart time.Time) (domain.Standing, error)
}

// LeaderboardService aggregates session points into per-period standings and
// fans snapshots out to websocket subscribers.
type LeaderboardService struct {
	repo LeaderboardRepository
	now  func() time.Time

	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardService(repo LeaderboardRepository) *LeaderboardService {
	return &LeaderboardService{
		repo:        repo,
		now:         time.Now,
		subscribers: make(map[string]map[chan domain.Leaderboard]struct{}),
	}
}

// Record credits points to all three period windows containing at. An empty
// gameID means the session's game was never linked; the event is skipped, and
// the skip is logged so the points are visibly unattributable rather than
// silently dropped.
func (s *LeaderboardService) Record(ctx context.Context, userID, gameID string, points int, at time.Time) error {
	if gameID == "" {
		log.Printf("leaderboard: skipping %d points for user %s, game not linked", points, userID)
		return nil
	}
	if points <= 0 {
		return nil
	}
	for _, period := range domain.Periods() {
		entry := domain.LeaderboardEntry{
			UserID:      userID,
			GameID:      gameID,
			Period:      period,
			WindowStart: period.WindowStart(at),
			Points:      points,
			CreatedAt:   at,
			UpdatedAt:   at,
		}
		if err := s.repo.AddPoints(ctx, entry); err != nil {
			return err
		}
	}
	s.broadcast(ctx, gameID, at)
	return nil
}

// Standings returns the ordered scoreboard for the period window containing
// the current time.
func (s *LeaderboardService) Standings(ctx context.Context, gameID string, period domain.Period, limit int) (domain.Leaderboard, error) {
	if limit <= 0 {
		limit = 50
	}
	now := s.now()
	standings, err := s.repo.Top(ctx, gameID, period, period.WindowStart(now), limit)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{
		GameID:    gameID,
		Period:    period,
		Standings: standings,
		UpdatedAt: now,
	}, nil
}

// RankOf returns the user's standing in the current window.
func (s *LeaderboardService) RankOf(ctx context.Context, userID, gameID string, period domain.Period) (domain.Standing, error) {
	return s.repo.Rank(ctx, userID, gameID, period, period.WindowStart(s.now()))
}

// Subscribe returns a channel receiving scoreboard snapshots for (game,
// period) on every scoring event. The caller must invoke the returned cancel
// function to avoid leaks.
func (s *LeaderboardService) Subscribe(ctx context.Context, gameID string, period domain.Period) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Standings(ctx, gameID, period, 0)
	if err != nil {
		return nil, nil, err
	}

	key := subscriptionKey(gameID, period)
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	if s.subscribers[key] == nil {
		s.subscribers[key] = make(map[chan domain.Leaderboard]struct{})
	}
	s.subscribers[key][ch] = struct{}{}
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if set, ok := s.subscribers[key]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(s.subscribers, key)
			}
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *LeaderboardService) broadcast(ctx context.Context, gameID string, at time.Time) {
	for _, period := range domain.Periods() {
		key := subscriptionKey(gameID, period)

		s.mu.Lock()
		if len(s.subscribers[key]) == 0 {
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()

		snapshot, err := s.Standings(ctx, gameID, period, 0)
		if err != nil {
			log.Printf("leaderboard: broadcast snapshot failed for %s/%s: %v", gameID, period, err)
			continue
		}

		s.mu.Lock()
		for ch := range s.subscribers[key] {
			select {
			case ch <- snapshot:
			default:
				// Drop the stale snapshot so a slow client never blocks scoring.
				select {
				case <-ch:
				default:
				}
				ch <- snapshot
			}
		}
		s.mu.Unlock()
	}
}

func subscriptionKey(gameID string, period domain.Period) string {
	return gameID + "|" + string(period)
}
