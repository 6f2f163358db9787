package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

//go:embed 0001_create_engine_tables.sql
var createEngineTablesSQL string

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(createEngineTablesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.Exec(`
				DROP TABLE IF EXISTS questions;
				DROP TABLE IF EXISTS reward_claims;
				DROP TABLE IF EXISTS rewards;
				DROP TABLE IF EXISTS leaderboard_entries;
				DROP TABLE IF EXISTS session_answers;
				DROP TABLE IF EXISTS game_sessions;
				DROP TABLE IF EXISTS user_links;
				DROP TABLE IF EXISTS game_links;
				DROP TABLE IF EXISTS internal_games;
				DROP TABLE IF EXISTS external_users;
				DROP TABLE IF EXISTS external_games;
			`)
			return err
		},
	)
}
