package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"gamification-engine/internal/domain"
)

// RewardRepository implements app.RewardRepository. The claim path relies on
// the UNIQUE (user_id, reward_id, period) constraint: insert-if-absent and
// the stock decrement run in one transaction, so a racing duplicate either
// sees the winner's committed claim or rolls back cleanly.
type RewardRepository struct {
	db *bun.DB
}

func NewRewardRepository(db *bun.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) SaveReward(ctx context.Context, reward domain.Reward) error {
	row := rewardRow{
		ID:           reward.ID,
		GameID:       reward.GameID,
		Name:         reward.Name,
		RequiredRank: reward.RequiredRank,
		Value:        reward.Value,
		Available:    reward.Available,
	}
	_, err := r.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("required_rank = EXCLUDED.required_rank").
		Set("value = EXCLUDED.value").
		Set("available = EXCLUDED.available").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save reward: %w", err)
	}
	return nil
}

func (r *RewardRepository) RewardsForGame(ctx context.Context, gameID string) ([]domain.Reward, error) {
	var rows []rewardRow
	err := r.db.NewSelect().Model(&rows).
		Where("game_id = ?", gameID).
		Order("required_rank ASC", "value DESC", "id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}
	rewards := make([]domain.Reward, len(rows))
	for i, row := range rows {
		rewards[i] = domain.Reward{
			ID:           row.ID,
			GameID:       row.GameID,
			Name:         row.Name,
			RequiredRank: row.RequiredRank,
			Value:        row.Value,
			Available:    row.Available,
		}
	}
	return rewards, nil
}

func (r *RewardRepository) ClaimIfAbsent(ctx context.Context, claim domain.RewardClaim) (domain.RewardClaim, bool, error) {
	var stored domain.RewardClaim
	var created bool

	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := rewardClaimRow{
			ID:        claim.ID,
			UserID:    claim.UserID,
			RewardID:  claim.RewardID,
			GameID:    claim.GameID,
			Period:    string(claim.Period),
			Rank:      claim.Rank,
			ClaimedAt: claim.ClaimedAt,
		}
		res, err := tx.NewInsert().Model(&row).
			On("CONFLICT (user_id, reward_id, period) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("insert claim: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim rows affected: %w", err)
		}

		if affected == 0 {
			// A claim already exists for this key; return it unchanged.
			var existing rewardClaimRow
			err := tx.NewSelect().Model(&existing).
				Where("user_id = ?", claim.UserID).
				Where("reward_id = ?", claim.RewardID).
				Where("period = ?", string(claim.Period)).
				Scan(ctx)
			if err != nil {
				return fmt.Errorf("load existing claim: %w", err)
			}
			stored = claimFromRow(existing)
			created = false
			return nil
		}

		stock, err := tx.NewRaw(
			"UPDATE rewards SET available = available - 1 WHERE id = ? AND available > 0",
			claim.RewardID,
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		decremented, err := stock.RowsAffected()
		if err != nil {
			return fmt.Errorf("stock rows affected: %w", err)
		}
		if decremented == 0 {
			// Rolling back also removes the claim row inserted above.
			return domain.ErrNoRewardAvailable
		}
		stored = claim
		created = true
		return nil
	})
	if err != nil {
		return domain.RewardClaim{}, false, err
	}
	return stored, created, nil
}

func claimFromRow(row rewardClaimRow) domain.RewardClaim {
	return domain.RewardClaim{
		ID:        row.ID,
		UserID:    row.UserID,
		RewardID:  row.RewardID,
		GameID:    row.GameID,
		Period:    domain.Period(row.Period),
		Rank:      row.Rank,
		ClaimedAt: row.ClaimedAt,
	}
}
