package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"gamification-engine/internal/domain"
)

// LinkRepository implements app.LinkRepository on a mapping table with a
// nullable internal side. Atomicity comes from the schema: the external id
// is the primary key and a partial unique index covers non-null internal
// ids, so a racing link attempt on either side loses inside Postgres, not
// in application code.
type LinkRepository struct {
	db    *bun.DB
	table string
}

func NewGameLinkRepository(db *bun.DB) *LinkRepository {
	return &LinkRepository{db: db, table: "game_links"}
}

func NewUserLinkRepository(db *bun.DB) *LinkRepository {
	return &LinkRepository{db: db, table: "user_links"}
}

func (r *LinkRepository) Ensure(ctx context.Context, externalID string) error {
	_, err := r.db.NewRaw(
		"INSERT INTO ? (external_id, internal_id) VALUES (?, NULL) ON CONFLICT (external_id) DO NOTHING",
		bun.Ident(r.table), externalID,
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("ensure link: %w", err)
	}
	return nil
}

func (r *LinkRepository) Link(ctx context.Context, externalID, internalID string) error {
	res, err := r.db.NewRaw(
		`INSERT INTO ? AS l (external_id, internal_id) VALUES (?, ?)
		 ON CONFLICT (external_id) DO UPDATE SET internal_id = EXCLUDED.internal_id
		 WHERE l.internal_id IS NULL`,
		bun.Ident(r.table), externalID, internalID,
	).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			// Partial unique index: the internal id already has a counterpart.
			return domain.ErrAlreadyLinked
		}
		return fmt.Errorf("link: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("link rows affected: %w", err)
	}
	if affected == 0 {
		// The external id already holds a non-null counterpart.
		return domain.ErrAlreadyLinked
	}
	return nil
}

func (r *LinkRepository) Unlink(ctx context.Context, externalID string) error {
	res, err := r.db.NewRaw(
		"UPDATE ? SET internal_id = NULL WHERE external_id = ?",
		bun.Ident(r.table), externalID,
	).Exec(ctx)
	if err != nil {
		return fmt.Errorf("unlink: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("unlink rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *LinkRepository) InternalFor(ctx context.Context, externalID string) (string, error) {
	var internalID sql.NullString
	err := r.db.NewRaw(
		"SELECT internal_id FROM ? WHERE external_id = ?",
		bun.Ident(r.table), externalID,
	).Scan(ctx, &internalID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve internal: %w", err)
	}
	return internalID.String, nil
}

func (r *LinkRepository) ExternalFor(ctx context.Context, internalID string) (string, error) {
	var externalID string
	err := r.db.NewRaw(
		"SELECT external_id FROM ? WHERE internal_id = ?",
		bun.Ident(r.table), internalID,
	).Scan(ctx, &externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve external: %w", err)
	}
	return externalID, nil
}

func (r *LinkRepository) List(ctx context.Context) ([]domain.Link, error) {
	rows, err := r.db.QueryContext(ctx,
		fmt.Sprintf("SELECT external_id, internal_id FROM %s ORDER BY external_id", r.table),
	)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []domain.Link
	for rows.Next() {
		var externalID string
		var internalID sql.NullString
		if err := rows.Scan(&externalID, &internalID); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, domain.Link{ExternalID: externalID, InternalID: internalID.String})
	}
	return links, rows.Err()
}

// isUniqueViolation reports whether err is Postgres error 23505.
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}
