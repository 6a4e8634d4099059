// Package repository is the persistence layer. Every repo runs its SQL
// against a DBTX, so the same methods work on the pooled *sql.DB and, via
// WithTx, inside a transaction owned by the service layer.
package repository

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is the subset of database/sql shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// isDuplicateErr reports whether err is a unique-constraint violation.
// MySQL surfaces error 1062, sqlite reports "UNIQUE constraint failed".
func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "1062") || strings.Contains(msg, "unique constraint")
}
