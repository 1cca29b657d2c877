package migration

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// RunMigrations executes all necessary database migrations on startup.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	migrations := []Migration{
		{Name: "create_profiles", Up: exec(`
			CREATE TABLE IF NOT EXISTS profiles (
				user_id    UUID PRIMARY KEY,
				name       TEXT NOT NULL DEFAULT '',
				phone      TEXT NOT NULL DEFAULT '',
				location   TEXT NOT NULL DEFAULT '',
				linkedin   TEXT NOT NULL DEFAULT '',
				github     TEXT NOT NULL DEFAULT '',
				website    TEXT NOT NULL DEFAULT '',
				updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
			);`)},
		{Name: "create_work_experiences", Up: exec(`
			CREATE TABLE IF NOT EXISTS work_experiences (
				id           UUID PRIMARY KEY,
				user_id      UUID NOT NULL,
				company      TEXT NOT NULL,
				position     TEXT NOT NULL,
				location     TEXT NOT NULL DEFAULT '',
				start_date   DATE NOT NULL,
				end_date     DATE,
				is_current   BOOLEAN NOT NULL DEFAULT false,
				achievements JSONB NOT NULL DEFAULT '[]'::jsonb,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_work_experiences_user ON work_experiences (user_id);`)},
		{Name: "create_education_records", Up: exec(`
			CREATE TABLE IF NOT EXISTS education_records (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL,
				institution TEXT NOT NULL,
				degree      TEXT NOT NULL,
				field       TEXT NOT NULL DEFAULT '',
				start_date  DATE NOT NULL,
				end_date    DATE,
				is_current  BOOLEAN NOT NULL DEFAULT false,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_education_records_user ON education_records (user_id);`)},
		{Name: "create_skills", Up: exec(`
			CREATE TABLE IF NOT EXISTS skills (
				id       UUID PRIMARY KEY,
				user_id  UUID NOT NULL,
				name     TEXT NOT NULL,
				category TEXT NOT NULL DEFAULT 'technical'
			);
			CREATE INDEX IF NOT EXISTS idx_skills_user ON skills (user_id);`)},
		{Name: "create_projects", Up: exec(`
			CREATE TABLE IF NOT EXISTS projects (
				id          UUID PRIMARY KEY,
				user_id     UUID NOT NULL,
				name        TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				skills      JSONB NOT NULL DEFAULT '[]'::jsonb,
				url         TEXT NOT NULL DEFAULT '',
				created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
			);
			CREATE INDEX IF NOT EXISTS idx_projects_user ON projects (user_id);`)},
		{Name: "create_api_tokens", Up: exec(`
			CREATE TABLE IF NOT EXISTS api_tokens (
				id         UUID PRIMARY KEY,
				user_id    UUID NOT NULL,
				token_hash TEXT NOT NULL UNIQUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
				revoked_at TIMESTAMPTZ
			);`)},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			log.Error().Err(err).Str("name", m.Name).Msg("migration failed")
			return err
		}
		log.Info().Str("name", m.Name).Msg("migration completed")
	}
	return nil
}

func exec(query string) func(ctx context.Context, pool *pgxpool.Pool) error {
	return func(ctx context.Context, pool *pgxpool.Pool) error {
		_, err := pool.Exec(ctx, query)
		return err
	}
}
