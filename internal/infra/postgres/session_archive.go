package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"

	"gamification-engine/internal/domain"
)

// SessionArchive persists finished sessions and their append-only answer
// history for audit and replay. Answers are keyed by (session, position),
// so re-archiving the same session is harmless.
type SessionArchive struct {
	db *bun.DB
}

func NewSessionArchive(db *bun.DB) *SessionArchive {
	return &SessionArchive{db: db}
}

func (a *SessionArchive) ArchiveSession(ctx context.Context, session *domain.GameSession) error {
	return a.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		row := sessionRow{
			ID:             session.ID,
			ExternalUserID: session.ExternalUserID,
			ExternalGameID: session.ExternalGameID,
			GameType:       string(session.GameType),
			Score:          session.Score,
			State:          string(session.State),
			CreatedAt:      session.CreatedAt,
			UpdatedAt:      session.UpdatedAt,
		}
		if session.InternalGameID != "" {
			internalID := session.InternalGameID
			row.InternalGameID = &internalID
		}
		_, err := tx.NewInsert().Model(&row).
			On("CONFLICT (id) DO UPDATE").
			Set("score = EXCLUDED.score").
			Set("state = EXCLUDED.state").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("archive session: %w", err)
		}

		if len(session.Answers) == 0 {
			return nil
		}
		answers := make([]sessionAnswerRow, len(session.Answers))
		for i, rec := range session.Answers {
			answers[i] = sessionAnswerRow{
				SessionID:  session.ID,
				Position:   i,
				QuestionID: rec.QuestionID,
				OptionID:   rec.OptionID,
				Correct:    rec.Correct,
				Points:     rec.Points,
				ElapsedSec: rec.ElapsedSec,
				AnsweredAt: rec.AnsweredAt,
			}
		}
		_, err = tx.NewInsert().Model(&answers).
			On("CONFLICT (session_id, position) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("archive answers: %w", err)
		}
		return nil
	})
}
