package memory

import (
	"context"
	"sort"
	"sync"

	"gamification-engine/internal/domain"
)

// RewardStore is an in-memory implementation of app.RewardRepository. The
// claim check and insert happen under one mutex, which is the in-process
// equivalent of the storage uniqueness constraint.
type RewardStore struct {
	mu      sync.Mutex
	rewards map[string]domain.Reward
	claims  map[claimKey]domain.RewardClaim
}

type claimKey struct {
	userID   string
	rewardID string
	period   domain.Period
}

func NewRewardStore() *RewardStore {
	return &RewardStore{
		rewards: make(map[string]domain.Reward),
		claims:  make(map[claimKey]domain.RewardClaim),
	}
}

func (s *RewardStore) SaveReward(_ context.Context, reward domain.Reward) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rewards[reward.ID] = reward
	return nil
}

func (s *RewardStore) RewardsForGame(_ context.Context, gameID string) ([]domain.Reward, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rewards := make([]domain.Reward, 0)
	for _, reward := range s.rewards {
		if reward.GameID == gameID {
			rewards = append(rewards, reward)
		}
	}
	sort.Slice(rewards, func(i, j int) bool { return rewards[i].ID < rewards[j].ID })
	return rewards, nil
}

func (s *RewardStore) ClaimIfAbsent(_ context.Context, claim domain.RewardClaim) (domain.RewardClaim, bool, error) {
	key := claimKey{claim.UserID, claim.RewardID, claim.Period}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.claims[key]; ok {
		return existing, false, nil
	}
	reward, ok := s.rewards[claim.RewardID]
	if !ok || reward.Available <= 0 {
		return domain.RewardClaim{}, false, domain.ErrNoRewardAvailable
	}
	reward.Available--
	s.rewards[claim.RewardID] = reward
	s.claims[key] = claim
	return claim, true, nil
}
