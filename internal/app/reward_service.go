package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"gamification-engine/internal/domain"
)

// RewardRepository stores prize definitions and fulfilled claims.
// ClaimIfAbsent is the one operation in the engine that must be a true
// atomic insert-if-absent on the (user, reward, period) key: it either
// creates the claim while decrementing availability, returns the existing
// claim with created=false, or fails with domain.ErrNoRewardAvailable when
// stock ran out.
type RewardRepository interface {
	SaveReward(ctx context.Context, reward domain.Reward) error
	RewardsForGame(ctx context.Context, gameID string) ([]domain.Reward, error)
	ClaimIfAbsent(ctx context.Context, claim domain.RewardClaim) (domain.RewardClaim, bool, error)
}

// RewardService converts a leaderboard rank into an at-most-once claim.
type RewardService struct {
	rewards     RewardRepository
	leaderboard *LeaderboardService
	now         func() time.Time
	newID       func() string
}

func NewRewardService(rewards RewardRepository, leaderboard *LeaderboardService) *RewardService {
	return &RewardService{
		rewards:     rewards,
		leaderboard: leaderboard,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// CreateReward validates and stores an operator-defined prize.
func (s *RewardService) CreateReward(ctx context.Context, reward domain.Reward) (domain.Reward, error) {
	if reward.GameID == "" || reward.Name == "" {
		return domain.Reward{}, fmt.Errorf("%w: game id and name required", domain.ErrInvalidInput)
	}
	if reward.RequiredRank <= 0 {
		return domain.Reward{}, fmt.Errorf("%w: required rank must be positive", domain.ErrInvalidInput)
	}
	if reward.Available < 0 {
		return domain.Reward{}, fmt.Errorf("%w: availability must not be negative", domain.ErrInvalidInput)
	}
	if reward.ID == "" {
		reward.ID = s.newID()
	}
	if err := s.rewards.SaveReward(ctx, reward); err != nil {
		return domain.Reward{}, err
	}
	return reward, nil
}

// Claim allocates the best-fitting reward for the user's current rank in
// (game, period). A repeated claim for the same reward returns the original
// claim unchanged; it is a success, not an error.
func (s *RewardService) Claim(ctx context.Context, userID, gameID string, period domain.Period) (domain.RewardClaim, domain.Reward, error) {
	if userID == "" || gameID == "" {
		return domain.RewardClaim{}, domain.Reward{}, fmt.Errorf("%w: user and game ids required", domain.ErrInvalidInput)
	}

	standing, err := s.leaderboard.RankOf(ctx, userID, gameID, period)
	if errors.Is(err, domain.ErrNotRanked) {
		return domain.RewardClaim{}, domain.Reward{}, domain.ErrNoRewardAvailable
	}
	if err != nil {
		return domain.RewardClaim{}, domain.Reward{}, err
	}

	rewards, err := s.rewards.RewardsForGame(ctx, gameID)
	if err != nil {
		return domain.RewardClaim{}, domain.Reward{}, err
	}

	// Best fit: the tightest rank requirement the user satisfies, highest
	// value first on equal requirements.
	candidates := rewards[:0:0]
	for _, reward := range rewards {
		if standing.Rank <= reward.RequiredRank {
			candidates = append(candidates, reward)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].RequiredRank != candidates[j].RequiredRank {
			return candidates[i].RequiredRank < candidates[j].RequiredRank
		}
		return candidates[i].Value > candidates[j].Value
	})

	for _, reward := range candidates {
		claim := domain.RewardClaim{
			ID:        s.newID(),
			UserID:    userID,
			RewardID:  reward.ID,
			GameID:    gameID,
			Period:    period,
			Rank:      standing.Rank,
			ClaimedAt: s.now(),
		}
		stored, _, err := s.rewards.ClaimIfAbsent(ctx, claim)
		if errors.Is(err, domain.ErrNoRewardAvailable) {
			continue // stock for this reward is gone, try the next fit
		}
		if err != nil {
			return domain.RewardClaim{}, domain.Reward{}, err
		}
		return stored, reward, nil
	}
	return domain.RewardClaim{}, domain.Reward{}, domain.ErrNoRewardAvailable
}
