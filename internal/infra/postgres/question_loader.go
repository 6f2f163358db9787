package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"gamification-engine/internal/domain"
)

// QuestionLoader implements app.QuestionSource on the questions bank table.
// Option sets live as JSONB per question; a random unseen row is drawn per
// request, which keeps the per-session question sequence lazy and
// non-restartable without any loader-side state.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) NextQuestion(ctx context.Context, gameType domain.GameType, difficulty int, exclude []string) (domain.Question, error) {
	if exclude == nil {
		exclude = []string{}
	}
	var question domain.Question
	var rawOptions []byte
	err := l.pool.QueryRow(ctx,
		`SELECT id, prompt, snippet, options FROM questions
		 WHERE game_type = $1 AND difficulty = $2 AND NOT (id = ANY($3))
		 ORDER BY random() LIMIT 1`,
		string(gameType), difficulty, exclude,
	).Scan(&question.ID, &question.Prompt, &question.Snippet, &rawOptions)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Question{}, domain.ErrQuestionBankExhausted
	}
	if err != nil {
		return domain.Question{}, fmt.Errorf("load question: %w", err)
	}
	if err := json.Unmarshal(rawOptions, &question.Options); err != nil {
		return domain.Question{}, fmt.Errorf("unmarshal options: %w", err)
	}
	return question, nil
}
