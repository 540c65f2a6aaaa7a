package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// baseTables creates every table in its current shape. Existing tables are
// left alone so older databases keep their columns until the migrator runs.
var baseTables = []string{
	`CREATE TABLE IF NOT EXISTS author (
		id           BIGSERIAL PRIMARY KEY,
		name         VARCHAR NOT NULL,
		biography_bg TEXT NOT NULL,
		biography_en TEXT,
		photo_url    VARCHAR,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS play (
		id                  BIGSERIAL PRIMARY KEY,
		title_bg            VARCHAR NOT NULL,
		title_en            VARCHAR,
		description_bg      TEXT NOT NULL,
		description_en      TEXT,
		year                INTEGER,
		genre               VARCHAR,
		theme               VARCHAR,
		male_participants   INTEGER,
		female_participants INTEGER,
		pdf_path            VARCHAR,
		author_id           BIGINT NOT NULL REFERENCES author(id) ON DELETE RESTRICT,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS playimage (
		id         BIGSERIAL PRIMARY KEY,
		image_url  VARCHAR NOT NULL,
		caption_bg VARCHAR,
		caption_en VARCHAR,
		play_id    BIGINT NOT NULL REFERENCES play(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS playfile (
		id         BIGSERIAL PRIMARY KEY,
		file_url   VARCHAR NOT NULL,
		caption_bg VARCHAR,
		caption_en VARCHAR,
		play_id    BIGINT NOT NULL REFERENCES play(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS literarypiece (
		id             BIGSERIAL PRIMARY KEY,
		title_bg       VARCHAR NOT NULL,
		title_en       VARCHAR,
		description_bg TEXT NOT NULL,
		description_en TEXT,
		pdf_path       VARCHAR,
		author_id      BIGINT NOT NULL REFERENCES author(id) ON DELETE RESTRICT,
		play_id        BIGINT REFERENCES play(id) ON DELETE SET NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// baseIndexes reference bilingual columns, so they run after migrations
var baseIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_author_name ON author (name)`,
	`CREATE INDEX IF NOT EXISTS idx_play_author_id ON play (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_play_title_bg ON play (title_bg)`,
	`CREATE INDEX IF NOT EXISTS idx_playimage_play_id ON playimage (play_id)`,
	`CREATE INDEX IF NOT EXISTS idx_playfile_play_id ON playfile (play_id)`,
	`CREATE INDEX IF NOT EXISTS idx_literarypiece_author_id ON literarypiece (author_id)`,
	`CREATE INDEX IF NOT EXISTS idx_literarypiece_play_id ON literarypiece (play_id)`,
}

// EnsureTables creates missing tables in dependency order
func EnsureTables(ctx context.Context, db Execer) error {
	for _, stmt := range baseTables {
		if _, err := db.Exec(ctx, stmt); err != nil && !IsDuplicateObject(err) {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

// EnsureIndexes creates missing secondary indexes
func EnsureIndexes(ctx context.Context, db Execer) error {
	for _, stmt := range baseIndexes {
		if _, err := db.Exec(ctx, stmt); err != nil && !IsDuplicateObject(err) {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}
