package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"gamification-engine/internal/domain"
)

// CatalogRepository implements app.CatalogRepository on bun models.
type CatalogRepository struct {
	db *bun.DB
}

func NewCatalogRepository(db *bun.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) UpsertExternalGame(ctx context.Context, game domain.ExternalGame) error {
	row := externalGameRow{ID: game.ID, Name: game.Name, Active: game.Active}
	_, err := r.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("active = EXCLUDED.active").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert external game: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ExternalGame(ctx context.Context, id string) (domain.ExternalGame, error) {
	var row externalGameRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExternalGame{}, domain.ErrUnknownGame
	}
	if err != nil {
		return domain.ExternalGame{}, fmt.Errorf("load external game: %w", err)
	}
	return domain.ExternalGame{ID: row.ID, Name: row.Name, Active: row.Active}, nil
}

func (r *CatalogRepository) ListExternalGames(ctx context.Context) ([]domain.ExternalGame, error) {
	var rows []externalGameRow
	if err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list external games: %w", err)
	}
	games := make([]domain.ExternalGame, len(rows))
	for i, row := range rows {
		games[i] = domain.ExternalGame{ID: row.ID, Name: row.Name, Active: row.Active}
	}
	return games, nil
}

func (r *CatalogRepository) UpsertExternalUser(ctx context.Context, user domain.ExternalUser) error {
	row := externalUserRow{ID: user.ID, Username: user.Username, Email: user.Email}
	_, err := r.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("username = EXCLUDED.username").
		Set("email = EXCLUDED.email").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert external user: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ExternalUser(ctx context.Context, id string) (domain.ExternalUser, error) {
	var row externalUserRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExternalUser{}, domain.ErrUnknownUser
	}
	if err != nil {
		return domain.ExternalUser{}, fmt.Errorf("load external user: %w", err)
	}
	return domain.ExternalUser{ID: row.ID, Username: row.Username, Email: row.Email}, nil
}

func (r *CatalogRepository) ListExternalUsers(ctx context.Context) ([]domain.ExternalUser, error) {
	var rows []externalUserRow
	if err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list external users: %w", err)
	}
	users := make([]domain.ExternalUser, len(rows))
	for i, row := range rows {
		users[i] = domain.ExternalUser{ID: row.ID, Username: row.Username, Email: row.Email}
	}
	return users, nil
}

func (r *CatalogRepository) SaveInternalGame(ctx context.Context, game domain.InternalGame) error {
	row := internalGameRow{
		ID:            game.ID,
		Name:          game.Name,
		GameType:      string(game.Type),
		Difficulty:    game.Difficulty,
		TimeLimitSec:  game.TimeLimitSec,
		QuestionCount: game.QuestionCount,
		BasePoints:    game.BasePoints,
		CreditPolicy:  string(game.CreditPolicy),
	}
	_, err := r.db.NewInsert().Model(&row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("game_type = EXCLUDED.game_type").
		Set("difficulty = EXCLUDED.difficulty").
		Set("time_limit_sec = EXCLUDED.time_limit_sec").
		Set("question_count = EXCLUDED.question_count").
		Set("base_points = EXCLUDED.base_points").
		Set("credit_policy = EXCLUDED.credit_policy").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save internal game: %w", err)
	}
	return nil
}

func (r *CatalogRepository) InternalGame(ctx context.Context, id string) (domain.InternalGame, error) {
	var row internalGameRow
	err := r.db.NewSelect().Model(&row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InternalGame{}, domain.ErrUnknownGame
	}
	if err != nil {
		return domain.InternalGame{}, fmt.Errorf("load internal game: %w", err)
	}
	return internalGameFromRow(row), nil
}

func (r *CatalogRepository) ListInternalGames(ctx context.Context) ([]domain.InternalGame, error) {
	var rows []internalGameRow
	if err := r.db.NewSelect().Model(&rows).Order("id ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list internal games: %w", err)
	}
	games := make([]domain.InternalGame, len(rows))
	for i, row := range rows {
		games[i] = internalGameFromRow(row)
	}
	return games, nil
}

func internalGameFromRow(row internalGameRow) domain.InternalGame {
	return domain.InternalGame{
		ID:            row.ID,
		Name:          row.Name,
		Type:          domain.GameType(row.GameType),
		Difficulty:    row.Difficulty,
		TimeLimitSec:  row.TimeLimitSec,
		QuestionCount: row.QuestionCount,
		BasePoints:    row.BasePoints,
		CreditPolicy:  domain.CreditPolicy(row.CreditPolicy),
	}
}
