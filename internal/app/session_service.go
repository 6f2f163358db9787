package app

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamification-engine/internal/domain"
)

// SessionRepository stores live sessions. Get must return
// domain.ErrSessionNotFound for ids it no longer holds, which covers
// TTL-evicted (long expired) sessions.
type SessionRepository interface {
	Save(ctx context.Context, session *domain.GameSession) error
	Get(ctx context.Context, id string) (*domain.GameSession, error)
}

// SessionArchive persists finished sessions with their append-only answer
// history. Archival is best-effort and never blocks scoring.
type SessionArchive interface {
	ArchiveSession(ctx context.Context, session *domain.GameSession) error
}

// QuestionSource produces quiz questions for a game type and difficulty,
// never repeating an id in exclude. domain.ErrQuestionBankExhausted signals
// there is nothing unseen left.
type QuestionSource interface {
	NextQuestion(ctx context.Context, gameType domain.GameType, difficulty int, exclude []string) (domain.Question, error)
}

// AnswerResult summarizes one scored (or replayed) submission.
type AnswerResult struct {
	QuestionID    string `json:"questionId"`
	Correct       bool   `json:"isCorrect"`
	Points        int    `json:"points"`
	TotalScore    int    `json:"totalScore"`
	CorrectOption string `json:"correctAnswer,omitempty"` // set when the answer was wrong
	Completed     bool   `json:"sessionCompleted"`
	Replayed      bool   `json:"replayed"` // true when this is an idempotent replay
}

// SessionService drives a quiz session from creation through answer
// submission to completion, feeding the leaderboard as it goes.
type SessionService struct {
	sessions    SessionRepository
	archive     SessionArchive
	questions   QuestionSource
	catalog     CatalogRepository
	mappings    *MappingService
	leaderboard *LeaderboardService

	unlinkedDefaults domain.InternalGame
	sessionTTL       time.Duration
	locks            sessionLocks
	now              func() time.Time
	newID            func() string
}

func NewSessionService(
	sessions SessionRepository,
	archive SessionArchive,
	questions QuestionSource,
	catalog CatalogRepository,
	mappings *MappingService,
	leaderboard *LeaderboardService,
	sessionTTL time.Duration,
) *SessionService {
	if sessionTTL <= 0 {
		sessionTTL = 10 * time.Minute
	}
	return &SessionService{
		sessions:    sessions,
		archive:     archive,
		questions:   questions,
		catalog:     catalog,
		mappings:    mappings,
		leaderboard: leaderboard,
		unlinkedDefaults: domain.InternalGame{
			Type:          domain.GameTypeBooks,
			Difficulty:    1,
			TimeLimitSec:  10,
			QuestionCount: 5,
			BasePoints:    10,
			CreditPolicy:  domain.CreditOnComplete,
		},
		sessionTTL: sessionTTL,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// CreateSession starts a quiz attempt. The external user must be known to
// the catalog; an unlinked game is non-fatal, the session simply runs
// without an internal game id and never reaches a leaderboard.
func (s *SessionService) CreateSession(ctx context.Context, externalUserID, externalGameID string) (*domain.GameSession, error) {
	if externalUserID == "" || externalGameID == "" {
		return nil, fmt.Errorf("%w: user and game ids required", domain.ErrInvalidInput)
	}
	if _, err := s.catalog.ExternalUser(ctx, externalUserID); err != nil {
		return nil, err
	}
	game, err := s.catalog.ExternalGame(ctx, externalGameID)
	if err != nil {
		return nil, err
	}
	if !game.Active {
		return nil, domain.ErrGameDisabled
	}

	config := s.unlinkedDefaults
	internalID, err := s.mappings.ResolveInternalGame(ctx, externalGameID)
	if err != nil {
		return nil, err
	}
	if internalID != "" {
		config, err = s.catalog.InternalGame(ctx, internalID)
		if err != nil {
			return nil, err
		}
	} else {
		log.Printf("session: external game %s not linked, scores will not be attributed", externalGameID)
	}

	now := s.now()
	session := &domain.GameSession{
		ID:             s.newID(),
		ExternalUserID: externalUserID,
		ExternalGameID: externalGameID,
		InternalGameID: internalID,
		GameType:       config.Type,
		Difficulty:     config.Difficulty,
		TimeLimitSec:   config.TimeLimitSec,
		QuestionCount:  config.QuestionCount,
		BasePoints:     config.BasePoints,
		CreditPolicy:   config.CreditPolicy,
		State:          domain.SessionInProgress,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// NextQuestion issues the session's next prompt. The sequence is lazy,
// session-scoped and non-restartable: a consumed question id is never
// reissued, and re-requesting before answering returns the same open
// question rather than burning a new one.
func (s *SessionService) NextQuestion(ctx context.Context, sessionID string, difficulty int) (domain.Question, error) {
	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.loadOpen(ctx, sessionID)
	if err != nil {
		return domain.Question{}, err
	}

	if session.OpenQuestion != nil {
		return *session.OpenQuestion, nil
	}

	if difficulty <= 0 {
		difficulty = session.Difficulty
	}
	question, err := s.questions.NextQuestion(ctx, session.GameType, difficulty, session.AskedIDs)
	if err == domain.ErrQuestionBankExhausted {
		// Nothing left to ask; the session ends with the score it has.
		if cerr := s.complete(ctx, session); cerr != nil {
			return domain.Question{}, cerr
		}
		return domain.Question{}, domain.ErrSessionTerminal
	}
	if err != nil {
		return domain.Question{}, err
	}

	session.OpenQuestion = &question
	session.AskedIDs = append(session.AskedIDs, question.ID)
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

// SubmitAnswer scores the open question. Replaying an already scored
// question returns the recorded result unchanged, so client retries never
// earn double credit; any other stale or unknown question id is rejected.
func (s *SessionService) SubmitAnswer(ctx context.Context, sessionID, questionID, optionID string, elapsedSec float64) (AnswerResult, error) {
	if questionID == "" || optionID == "" {
		return AnswerResult{}, fmt.Errorf("%w: question and option ids required", domain.ErrInvalidInput)
	}
	if elapsedSec < 0 {
		return AnswerResult{}, fmt.Errorf("%w: elapsed seconds must not be negative", domain.ErrInvalidInput)
	}

	unlock := s.locks.acquire(sessionID)
	defer unlock()

	session, err := s.loadOpen(ctx, sessionID)
	if err != nil {
		if err != domain.ErrSessionTerminal {
			return AnswerResult{}, err
		}
		// A terminal session still answers replays idempotently.
		terminal, terr := s.sessions.Get(ctx, sessionID)
		if terr != nil {
			return AnswerResult{}, err
		}
		if rec, ok := terminal.Answered(questionID); ok {
			return replayResult(terminal, rec), nil
		}
		return AnswerResult{}, err
	}

	if rec, ok := session.Answered(questionID); ok {
		return replayResult(session, rec), nil
	}
	if session.OpenQuestion == nil || session.OpenQuestion.ID != questionID {
		return AnswerResult{}, domain.ErrUnknownQuestion
	}

	question := *session.OpenQuestion
	var selected *domain.Option
	for i := range question.Options {
		if question.Options[i].ID == optionID {
			selected = &question.Options[i]
			break
		}
	}
	if selected == nil {
		return AnswerResult{}, fmt.Errorf("%w: option %s not part of question %s", domain.ErrInvalidInput, optionID, questionID)
	}

	now := s.now()
	points := Score(selected.Correct, elapsedSec, session.BasePoints, session.TimeLimitSec)
	record := domain.AnswerRecord{
		QuestionID: questionID,
		OptionID:   optionID,
		Correct:    selected.Correct,
		Points:     points,
		ElapsedSec: elapsedSec,
		AnsweredAt: now,
	}
	session.Answers = append(session.Answers, record)
	session.Score += points
	session.OpenQuestion = nil
	session.UpdatedAt = now

	completed := len(session.Answers) >= session.QuestionCount
	if completed {
		session.State = domain.SessionCompleted
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return AnswerResult{}, err
	}

	switch session.CreditPolicy {
	case domain.CreditPerAnswer:
		if err := s.leaderboard.Record(ctx, session.ExternalUserID, session.InternalGameID, points, now); err != nil {
			return AnswerResult{}, err
		}
	default:
		if completed {
			if err := s.leaderboard.Record(ctx, session.ExternalUserID, session.InternalGameID, session.Score, now); err != nil {
				return AnswerResult{}, err
			}
		}
	}
	if completed {
		s.archiveSession(ctx, session)
	}

	result := AnswerResult{
		QuestionID: questionID,
		Correct:    record.Correct,
		Points:     points,
		TotalScore: session.Score,
		Completed:  completed,
	}
	if !record.Correct {
		result.CorrectOption = question.CorrectOption()
	}
	return result, nil
}

// Session returns the current session record.
func (s *SessionService) Session(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	return s.sessions.Get(ctx, sessionID)
}

// loadOpen fetches a session and enforces the terminal-state rules, marking
// past-due sessions expired on the way.
func (s *SessionService) loadOpen(ctx context.Context, sessionID string) (*domain.GameSession, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		return nil, domain.ErrSessionTerminal
	}
	if s.now().After(session.ExpiresAt) {
		session.State = domain.SessionExpired
		session.UpdatedAt = s.now()
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		s.archiveSession(ctx, session)
		return nil, domain.ErrSessionTerminal
	}
	return session, nil
}

// complete finishes a session early (question bank exhausted) and credits
// whatever score it accumulated under the on-complete policy.
func (s *SessionService) complete(ctx context.Context, session *domain.GameSession) error {
	session.State = domain.SessionCompleted
	session.OpenQuestion = nil
	session.UpdatedAt = s.now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return err
	}
	if session.CreditPolicy != domain.CreditPerAnswer {
		if err := s.leaderboard.Record(ctx, session.ExternalUserID, session.InternalGameID, session.Score, session.UpdatedAt); err != nil {
			return err
		}
	}
	s.archiveSession(ctx, session)
	return nil
}

func (s *SessionService) archiveSession(ctx context.Context, session *domain.GameSession) {
	if s.archive == nil {
		return
	}
	if err := s.archive.ArchiveSession(ctx, session); err != nil {
		log.Printf("session: archive %s failed: %v", session.ID, err)
	}
}

func replayResult(session *domain.GameSession, rec domain.AnswerRecord) AnswerResult {
	return AnswerResult{
		QuestionID: rec.QuestionID,
		Correct:    rec.Correct,
		Points:     rec.Points,
		TotalScore: session.Score,
		Completed:  session.State == domain.SessionCompleted,
		Replayed:   true,
	}
}

// sessionLocks serializes operations per session id so two racing submits
// for the same session cannot both score the same question. Sessions for
// different ids never contend.
type sessionLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func (l *sessionLocks) acquire(id string) func() {
	l.mu.Lock()
	if l.entries == nil {
		l.entries = make(map[string]*lockEntry)
	}
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
