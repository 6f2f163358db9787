package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"gamification-engine/internal/domain"
)

// QuestionSource serves questions from an in-memory bank keyed by game type
// (useful for tests and demo mode). Difficulty is accepted for interface
// parity but the static bank carries a single tier per type.
type QuestionSource struct {
	mu    sync.Mutex
	banks map[domain.GameType][]domain.Question
	rnd   *rand.Rand
}

func NewQuestionSource(banks map[domain.GameType][]domain.Question) *QuestionSource {
	return &QuestionSource{
		banks: banks,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *QuestionSource) NextQuestion(_ context.Context, gameType domain.GameType, _ int, exclude []string) (domain.Question, error) {
	seen := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		seen[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := make([]domain.Question, 0)
	for _, question := range s.banks[gameType] {
		if !seen[question.ID] {
			candidates = append(candidates, question)
		}
	}
	if len(candidates) == 0 {
		return domain.Question{}, domain.ErrQuestionBankExhausted
	}
	return candidates[s.rnd.Intn(len(candidates))], nil
}
