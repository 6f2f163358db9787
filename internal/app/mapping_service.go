package app

import (
	"context"
	"fmt"

	"gamification-engine/internal/domain"
)

// LinkRepository stores mapping rows between one external and one internal
// identity space. Link must be atomic: it fails with domain.ErrAlreadyLinked
// when either side already has a counterpart, and never leaves a row where
// one external id holds two internal ids or vice versa.
type LinkRepository interface {
	// Ensure creates a half-linked row for externalID if none exists.
	Ensure(ctx context.Context, externalID string) error
	// Link attaches internalID to externalID, creating the row if needed.
	Link(ctx context.Context, externalID, internalID string) error
	// Unlink clears the internal side; domain.ErrLinkNotFound without a row.
	Unlink(ctx context.Context, externalID string) error
	// InternalFor returns "" when the row is absent or half-linked.
	InternalFor(ctx context.Context, externalID string) (string, error)
	// ExternalFor returns "" when internalID is not referenced by any row.
	ExternalFor(ctx context.Context, internalID string) (string, error)
	List(ctx context.Context) ([]domain.Link, error)
}

// MappingService keeps the two identity spaces linked under the uniqueness
// invariant, for both games and users.
type MappingService struct {
	games   LinkRepository
	users   LinkRepository
	catalog CatalogRepository
}

func NewMappingService(games, users LinkRepository, catalog CatalogRepository) *MappingService {
	return &MappingService{games: games, users: users, catalog: catalog}
}

// LinkGame maps an external game to an internal one. The internal game must
// exist; uniqueness on both sides is enforced by the repository, not by a
// read-then-write here.
func (s *MappingService) LinkGame(ctx context.Context, externalID, internalID string) error {
	if externalID == "" || internalID == "" {
		return fmt.Errorf("%w: external and internal ids required", domain.ErrInvalidInput)
	}
	if _, err := s.catalog.InternalGame(ctx, internalID); err != nil {
		return err
	}
	return s.games.Link(ctx, externalID, internalID)
}

func (s *MappingService) UnlinkGame(ctx context.Context, externalID string) error {
	if externalID == "" {
		return fmt.Errorf("%w: external id required", domain.ErrInvalidInput)
	}
	return s.games.Unlink(ctx, externalID)
}

// LinkUser maps an external user to an internal dashboard user. Internal
// users live outside this service, so only the mapping is validated.
func (s *MappingService) LinkUser(ctx context.Context, externalID, internalID string) error {
	if externalID == "" || internalID == "" {
		return fmt.Errorf("%w: external and internal ids required", domain.ErrInvalidInput)
	}
	return s.users.Link(ctx, externalID, internalID)
}

func (s *MappingService) UnlinkUser(ctx context.Context, externalID string) error {
	if externalID == "" {
		return fmt.Errorf("%w: external id required", domain.ErrInvalidInput)
	}
	return s.users.Unlink(ctx, externalID)
}

func (s *MappingService) ResolveInternalGame(ctx context.Context, externalID string) (string, error) {
	return s.games.InternalFor(ctx, externalID)
}

func (s *MappingService) ResolveExternalGame(ctx context.Context, internalID string) (string, error) {
	return s.games.ExternalFor(ctx, internalID)
}

func (s *MappingService) ResolveInternalUser(ctx context.Context, externalID string) (string, error) {
	return s.users.InternalFor(ctx, externalID)
}

func (s *MappingService) ResolveExternalUser(ctx context.Context, internalID string) (string, error) {
	return s.users.ExternalFor(ctx, internalID)
}

// AvailableGames is the derived "free to link" view: external games whose
// mapping is absent or half-linked, and internal games no mapping references.
func (s *MappingService) AvailableGames(ctx context.Context) ([]domain.ExternalGame, []domain.InternalGame, error) {
	links, err := s.games.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	linkedExternal := make(map[string]bool, len(links))
	linkedInternal := make(map[string]bool, len(links))
	for _, link := range links {
		if link.InternalID != "" {
			linkedExternal[link.ExternalID] = true
			linkedInternal[link.InternalID] = true
		}
	}

	external, err := s.catalog.ListExternalGames(ctx)
	if err != nil {
		return nil, nil, err
	}
	freeExternal := external[:0:0]
	for _, game := range external {
		if !linkedExternal[game.ID] {
			freeExternal = append(freeExternal, game)
		}
	}

	internal, err := s.catalog.ListInternalGames(ctx)
	if err != nil {
		return nil, nil, err
	}
	freeInternal := internal[:0:0]
	for _, game := range internal {
		if !linkedInternal[game.ID] {
			freeInternal = append(freeInternal, game)
		}
	}
	return freeExternal, freeInternal, nil
}

// AvailableUsers lists external users whose mapping is absent or half-linked.
// Internal dashboard users are not catalogued here, so only the external side
// has a view.
func (s *MappingService) AvailableUsers(ctx context.Context) ([]domain.ExternalUser, error) {
	links, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	linked := make(map[string]bool, len(links))
	for _, link := range links {
		if link.InternalID != "" {
			linked[link.ExternalID] = true
		}
	}

	users, err := s.catalog.ListExternalUsers(ctx)
	if err != nil {
		return nil, err
	}
	free := users[:0:0]
	for _, user := range users {
		if !linked[user.ID] {
			free = append(free, user)
		}
	}
	return free, nil
}
