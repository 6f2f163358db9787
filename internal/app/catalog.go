package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"gamification-engine/internal/domain"
)

// CatalogRepository stores both identity spaces: the partner catalog rows
// (synced, never edited here) and the operator-configured internal games.
type CatalogRepository interface {
	UpsertExternalGame(ctx context.Context, game domain.ExternalGame) error
	ExternalGame(ctx context.Context, id string) (domain.ExternalGame, error)
	ListExternalGames(ctx context.Context) ([]domain.ExternalGame, error)
	UpsertExternalUser(ctx context.Context, user domain.ExternalUser) error
	ExternalUser(ctx context.Context, id string) (domain.ExternalUser, error)
	ListExternalUsers(ctx context.Context) ([]domain.ExternalUser, error)
	SaveInternalGame(ctx context.Context, game domain.InternalGame) error
	InternalGame(ctx context.Context, id string) (domain.InternalGame, error)
	ListInternalGames(ctx context.Context) ([]domain.InternalGame, error)
}

// CatalogService handles the partner sync feed and operator game creation.
type CatalogService struct {
	catalog   CatalogRepository
	gameLinks LinkRepository
	userLinks LinkRepository
	newID     func() string
}

func NewCatalogService(catalog CatalogRepository, gameLinks, userLinks LinkRepository) *CatalogService {
	return &CatalogService{
		catalog:   catalog,
		gameLinks: gameLinks,
		userLinks: userLinks,
		newID:     uuid.NewString,
	}
}

// SyncExternalGame upserts a partner game and makes sure a half-linked
// mapping row exists for it, so an operator can link it later.
func (s *CatalogService) SyncExternalGame(ctx context.Context, game domain.ExternalGame) error {
	if game.ID == "" {
		return fmt.Errorf("%w: external game id required", domain.ErrInvalidInput)
	}
	if err := s.catalog.UpsertExternalGame(ctx, game); err != nil {
		return err
	}
	return s.gameLinks.Ensure(ctx, game.ID)
}

// SyncExternalUser upserts a partner user and its half-linked mapping row.
func (s *CatalogService) SyncExternalUser(ctx context.Context, user domain.ExternalUser) error {
	if user.ID == "" {
		return fmt.Errorf("%w: external user id required", domain.ErrInvalidInput)
	}
	if err := s.catalog.UpsertExternalUser(ctx, user); err != nil {
		return err
	}
	return s.userLinks.Ensure(ctx, user.ID)
}

// CreateInternalGame validates and stores an operator-configured game,
// filling in defaults for unset tuning knobs.
func (s *CatalogService) CreateInternalGame(ctx context.Context, game domain.InternalGame) (domain.InternalGame, error) {
	if game.Name == "" {
		return domain.InternalGame{}, fmt.Errorf("%w: game name required", domain.ErrInvalidInput)
	}
	if _, err := domain.ParseGameType(string(game.Type)); err != nil {
		return domain.InternalGame{}, err
	}
	if game.ID == "" {
		game.ID = s.newID()
	}
	if game.Difficulty <= 0 {
		game.Difficulty = 1
	}
	if game.TimeLimitSec <= 0 {
		game.TimeLimitSec = 10
	}
	if game.QuestionCount <= 0 {
		game.QuestionCount = 5
	}
	if game.BasePoints <= 0 {
		game.BasePoints = 10
	}
	if game.CreditPolicy == "" {
		game.CreditPolicy = domain.CreditOnComplete
	} else if _, err := domain.ParseCreditPolicy(string(game.CreditPolicy)); err != nil {
		return domain.InternalGame{}, err
	}
	if err := s.catalog.SaveInternalGame(ctx, game); err != nil {
		return domain.InternalGame{}, err
	}
	return game, nil
}
