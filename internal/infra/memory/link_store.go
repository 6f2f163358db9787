package memory

import (
	"context"
	"sort"
	"sync"

	"gamification-engine/internal/domain"
)

// LinkStore is an in-memory implementation of app.LinkRepository. One mutex
// guards both directions of the mapping so a link is atomic on both sides.
type LinkStore struct {
	mu         sync.Mutex
	byExternal map[string]string // external id -> internal id, "" while half-linked
	byInternal map[string]string
}

func NewLinkStore() *LinkStore {
	return &LinkStore{
		byExternal: make(map[string]string),
		byInternal: make(map[string]string),
	}
}

func (s *LinkStore) Ensure(_ context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byExternal[externalID]; !ok {
		s.byExternal[externalID] = ""
	}
	return nil
}

func (s *LinkStore) Link(_ context.Context, externalID, internalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if current := s.byExternal[externalID]; current != "" {
		return domain.ErrAlreadyLinked
	}
	if _, taken := s.byInternal[internalID]; taken {
		return domain.ErrAlreadyLinked
	}
	s.byExternal[externalID] = internalID
	s.byInternal[internalID] = externalID
	return nil
}

func (s *LinkStore) Unlink(_ context.Context, externalID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	internalID, ok := s.byExternal[externalID]
	if !ok {
		return domain.ErrLinkNotFound
	}
	if internalID != "" {
		delete(s.byInternal, internalID)
	}
	s.byExternal[externalID] = ""
	return nil
}

func (s *LinkStore) InternalFor(_ context.Context, externalID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byExternal[externalID], nil
}

func (s *LinkStore) ExternalFor(_ context.Context, internalID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byInternal[internalID], nil
}

func (s *LinkStore) List(_ context.Context) ([]domain.Link, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := make([]domain.Link, 0, len(s.byExternal))
	for externalID, internalID := range s.byExternal {
		links = append(links, domain.Link{ExternalID: externalID, InternalID: internalID})
	}
	sort.Slice(links, func(i, j int) bool { return links[i].ExternalID < links[j].ExternalID })
	return links, nil
}
