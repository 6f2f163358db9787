package memory

import (
	"context"
	"sort"
	"sync"

	"gamification-engine/internal/domain"
)

// CatalogStore is an in-memory implementation of app.CatalogRepository.
type CatalogStore struct {
	mu            sync.RWMutex
	externalGames map[string]domain.ExternalGame
	externalUsers map[string]domain.ExternalUser
	internalGames map[string]domain.InternalGame
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		externalGames: make(map[string]domain.ExternalGame),
		externalUsers: make(map[string]domain.ExternalUser),
		internalGames: make(map[string]domain.InternalGame),
	}
}

func (s *CatalogStore) UpsertExternalGame(_ context.Context, game domain.ExternalGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalGames[game.ID] = game
	return nil
}

func (s *CatalogStore) ExternalGame(_ context.Context, id string) (domain.ExternalGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if game, ok := s.externalGames[id]; ok {
		return game, nil
	}
	return domain.ExternalGame{}, domain.ErrUnknownGame
}

func (s *CatalogStore) ListExternalGames(_ context.Context) ([]domain.ExternalGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.ExternalGame, 0, len(s.externalGames))
	for _, game := range s.externalGames {
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}

func (s *CatalogStore) UpsertExternalUser(_ context.Context, user domain.ExternalUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.externalUsers[user.ID] = user
	return nil
}

func (s *CatalogStore) ExternalUser(_ context.Context, id string) (domain.ExternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.externalUsers[id]; ok {
		return user, nil
	}
	return domain.ExternalUser{}, domain.ErrUnknownUser
}

func (s *CatalogStore) ListExternalUsers(_ context.Context) ([]domain.ExternalUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]domain.ExternalUser, 0, len(s.externalUsers))
	for _, user := range s.externalUsers {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *CatalogStore) SaveInternalGame(_ context.Context, game domain.InternalGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.internalGames[game.ID] = game
	return nil
}

func (s *CatalogStore) InternalGame(_ context.Context, id string) (domain.InternalGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if game, ok := s.internalGames[id]; ok {
		return game, nil
	}
	return domain.InternalGame{}, domain.ErrUnknownGame
}

func (s *CatalogStore) ListInternalGames(_ context.Context) ([]domain.InternalGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.InternalGame, 0, len(s.internalGames))
	for _, game := range s.internalGames {
		games = append(games, game)
	}
	sort.Slice(games, func(i, j int) bool { return games[i].ID < games[j].ID })
	return games, nil
}
