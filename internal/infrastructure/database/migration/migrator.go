package migration

import (
	"context"
	"fmt"

	"bgpiesa-backend/internal/infrastructure/database"
	"bgpiesa-backend/pkg/logger"
)

// Step is one named, self-gating schema change
type Step struct {
	Name  string
	Apply func(ctx context.Context, m *Migrator) error
}

// Migrator brings older databases to the current schema.
// Every step checks live column state first, so Run is safe on each start
// and against other processes running it at the same time.
type Migrator struct {
	catalog Catalog
	steps   []Step
}

func NewMigrator(catalog Catalog) *Migrator {
	return &Migrator{catalog: catalog, steps: DefaultSteps()}
}

// DefaultSteps returns the historical migrations in the order they must run
func DefaultSteps() []Step {
	return []Step{
		{Name: "play_demographics", Apply: migratePlayDemographics},
		{Name: "playimage_captions", Apply: migratePlayImageCaptions},
		{Name: "bilingual_backfill", Apply: migrateBilingualFields},
	}
}

// Run applies every step, stopping at the first failure
func (m *Migrator) Run(ctx context.Context) error {
	for _, step := range m.steps {
		if err := step.Apply(ctx, m); err != nil {
			logger.Error("migration step failed: "+step.Name, err)
			return fmt.Errorf("migration %s: %w", step.Name, err)
		}
		logger.Debug("migration step done", map[string]interface{}{"step": step.Name})
	}
	return nil
}

// ColumnExists is false for a missing table and for any inspection error
func (m *Migrator) ColumnExists(ctx context.Context, table, column string) bool {
	exists, err := m.catalog.ColumnExists(ctx, table, column)
	if err != nil {
		logger.Debug("column inspection failed", map[string]interface{}{
			"table":  table,
			"column": column,
			"error":  err.Error(),
		})
		return false
	}
	return exists
}

// AddColumnIfNotExists reports whether the column was added by this call
func (m *Migrator) AddColumnIfNotExists(ctx context.Context, table, column, columnType string) (bool, error) {
	if m.ColumnExists(ctx, table, column) {
		return false, nil
	}

	if err := m.catalog.AddColumn(ctx, table, column, columnType); err != nil {
		if database.IsDuplicateObject(err) {
			return false, nil
		}
		return false, fmt.Errorf("add column %s.%s: %w", table, column, err)
	}

	logger.Info("column added", map[string]interface{}{"table": table, "column": column, "type": columnType})
	return true, nil
}

// DropColumnIfExists reports whether the column was dropped by this call
func (m *Migrator) DropColumnIfExists(ctx context.Context, table, column string) (bool, error) {
	if !m.ColumnExists(ctx, table, column) {
		return false, nil
	}

	if err := m.catalog.DropColumn(ctx, table, column); err != nil {
		if database.IsMissingObject(err) {
			return false, nil
		}
		return false, fmt.Errorf("drop column %s.%s: %w", table, column, err)
	}

	logger.Info("column dropped", map[string]interface{}{"table": table, "column": column})
	return true, nil
}

func (m *Migrator) tableExists(ctx context.Context, table string) bool {
	return m.ColumnExists(ctx, table, "id")
}

// ============================================
// Steps
// ============================================

func migratePlayDemographics(ctx context.Context, m *Migrator) error {
	if !m.tableExists(ctx, "play") {
		return nil
	}

	for _, col := range []struct{ name, typ string }{
		{"theme", "VARCHAR"},
		{"male_participants", "INTEGER"},
		{"female_participants", "INTEGER"},
	} {
		if _, err := m.AddColumnIfNotExists(ctx, "play", col.name, col.typ); err != nil {
			return err
		}
	}

	_, err := m.DropColumnIfExists(ctx, "play", "duration")
	return err
}

func migratePlayImageCaptions(ctx context.Context, m *Migrator) error {
	if !m.tableExists(ctx, "playimage") {
		return nil
	}

	for _, col := range []string{"caption_bg", "caption_en"} {
		if _, err := m.AddColumnIfNotExists(ctx, "playimage", col, "VARCHAR"); err != nil {
			return err
		}
	}
	return nil
}

var bilingualTables = []struct {
	table  string
	splits []LanguageSplit
}{
	{"author", []LanguageSplit{{Legacy: "biography", Type: "TEXT"}}},
	{"play", []LanguageSplit{{Legacy: "title", Type: "VARCHAR"}, {Legacy: "description", Type: "TEXT"}}},
}

func migrateBilingualFields(ctx context.Context, m *Migrator) error {
	for _, entity := range bilingualTables {
		var pending []LanguageSplit
		for _, s := range entity.splits {
			if m.ColumnExists(ctx, entity.table, s.Legacy) && !m.ColumnExists(ctx, entity.table, s.Primary()) {
				pending = append(pending, s)
			}
		}
		if len(pending) == 0 {
			continue
		}

		if err := m.catalog.Backfill(ctx, entity.table, pending); err != nil {
			if database.IsMissingObject(err) {
				logger.Warn("backfill skipped, table missing", map[string]interface{}{
					"table": entity.table,
					"error": err.Error(),
				})
				continue
			}
			return fmt.Errorf("backfill %s: %w", entity.table, err)
		}

		for _, s := range pending {
			logger.Info("bilingual column backfilled", map[string]interface{}{
				"table":  entity.table,
				"legacy": s.Legacy,
				"into":   s.Primary(),
			})
		}
	}
	return nil
}
