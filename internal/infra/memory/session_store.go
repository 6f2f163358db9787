package memory

import (
	"context"
	"sync"

	"gamification-engine/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// Sessions are stored as copies so callers can only change stored state
// through Save.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.GameSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.GameSession)}
}

func (s *SessionStore) Save(_ context.Context, session *domain.GameSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = cloneSession(session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.GameSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	out := cloneSession(&session)
	return &out, nil
}

func cloneSession(session *domain.GameSession) domain.GameSession {
	out := *session
	if session.OpenQuestion != nil {
		question := *session.OpenQuestion
		question.Options = append([]domain.Option(nil), session.OpenQuestion.Options...)
		out.OpenQuestion = &question
	}
	out.AskedIDs = append([]string(nil), session.AskedIDs...)
	out.Answers = append([]domain.AnswerRecord(nil), session.Answers...)
	return out
}
