package migration

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	pkgdb "bgpiesa-backend/pkg/database"
)

// LanguageSplit describes one legacy column that became a _bg/_en pair
type LanguageSplit struct {
	Legacy string
	Type   string
}

func (s LanguageSplit) Primary() string   { return s.Legacy + "_bg" }
func (s LanguageSplit) Secondary() string { return s.Legacy + "_en" }

// Catalog is the live schema the migrator inspects and alters
type Catalog interface {
	ColumnExists(ctx context.Context, table, column string) (bool, error)
	AddColumn(ctx context.Context, table, column, columnType string) error
	DropColumn(ctx context.Context, table, column string) error
	// Backfill adds the split columns, copies legacy values into the
	// primary column and relaxes NOT NULL on the legacy column, atomically.
	Backfill(ctx context.Context, table string, splits []LanguageSplit) error
}

// PostgresCatalog implements Catalog over information_schema
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalog(pool *pgxpool.Pool) *PostgresCatalog {
	return &PostgresCatalog{pool: pool}
}

func (c *PostgresCatalog) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema()
			  AND table_name = $1
			  AND column_name = $2
		)`

	var exists bool
	if err := c.pool.QueryRow(ctx, query, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return exists, nil
}

func (c *PostgresCatalog) AddColumn(ctx context.Context, table, column, columnType string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", ident(table), ident(column), columnType)
	_, err := c.pool.Exec(ctx, stmt)
	return err
}

func (c *PostgresCatalog) DropColumn(ctx context.Context, table, column string) error {
	stmt := fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s", ident(table), ident(column))
	_, err := c.pool.Exec(ctx, stmt)
	return err
}

func (c *PostgresCatalog) Backfill(ctx context.Context, table string, splits []LanguageSplit) error {
	return pkgdb.WithTransaction(ctx, c.pool, func(tx pgx.Tx) error {
		t := ident(table)
		for _, s := range splits {
			stmts := []string{
				fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", t, ident(s.Primary()), s.Type),
				fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", t, ident(s.Secondary()), s.Type),
				fmt.Sprintf("UPDATE %s SET %s = %s", t, ident(s.Primary()), ident(s.Legacy)),
				fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL", t, ident(s.Legacy)),
			}
			for _, stmt := range stmts {
				if _, err := tx.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("backfill %s.%s: %w", table, s.Legacy, err)
				}
			}
		}
		return nil
	})
}

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
