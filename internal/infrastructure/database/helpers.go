package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jackc/pgx/v5/pgconn"

	"bgpiesa-backend/pkg/logger"
)

// Close releases every pooled connection. Safe to call twice.
func (db *PostgresDB) Close() error {
	if db.Pool == nil {
		return nil
	}
	db.Pool.Close()
	db.Pool = nil
	logger.Info("database pool closed", nil)
	return nil
}

// PoolStats is a snapshot of pool counters
type PoolStats struct {
	TotalConns    int32 `json:"total_conns"`
	IdleConns     int32 `json:"idle_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	MaxConns      int32 `json:"max_conns"`
}

func (db *PostgresDB) Stats() PoolStats {
	if db.Pool == nil {
		return PoolStats{}
	}
	s := db.Pool.Stat()
	return PoolStats{
		TotalConns:    s.TotalConns(),
		IdleConns:     s.IdleConns(),
		AcquiredConns: s.AcquiredConns(),
		MaxConns:      s.MaxConns(),
	}
}

// PostgreSQL error codes the repositories care about
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeDuplicateColumn     = "42701"
	CodeDuplicateTable      = "42P07"
	CodeUndefinedTable      = "42P01"
	CodeUndefinedColumn     = "42703"
)

// PgErrorCode returns the SQLSTATE of err, or "" when err is not a server error
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == CodeForeignKeyViolation
}

// IsDuplicateObject matches "already exists" errors from DDL.
// Falls back to message text for drivers that don't surface SQLSTATE.
func IsDuplicateObject(err error) bool {
	if err == nil {
		return false
	}
	switch PgErrorCode(err) {
	case CodeDuplicateColumn, CodeDuplicateTable:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate")
}

// IsMissingObject matches errors raised against an absent table
func IsMissingObject(err error) bool {
	if err == nil {
		return false
	}
	switch PgErrorCode(err) {
	case CodeUndefinedTable, CodeUndefinedColumn:
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "does not exist") || strings.Contains(msg, "no such table")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds a LIKE pattern matching s anywhere.
// Wildcards in s are escaped so they match literally.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// LowerLike renders a case-insensitive substring match of column against
// search. Both sides go through the server's LOWER so one set of case rules
// applies to Cyrillic and Latin alike.
func LowerLike(sb *sqlbuilder.SelectBuilder, column, search string) string {
	return fmt.Sprintf("LOWER(%s) LIKE LOWER(%s)", column, sb.Var(ContainsPattern(search)))
}
