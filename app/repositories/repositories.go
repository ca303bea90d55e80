// Package repositories implements explicit data-access methods over the
// User, Order, and Product models. Relationship traversal is always an
// explicit query returning plain data; no live object-graph navigation.
//
// Every repository takes its *gorm.DB at construction; domain failures are
// returned as pkg/httperr taxonomy errors, storage errors are wrapped.
package repositories

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports whether err is a unique-constraint failure.
// Postgres is detected by SQLSTATE 23505; the sqlite and mysql drivers
// only expose message text, so those are matched as a fallback.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "Duplicate entry") // mysql
}

// isForeignKeyViolation reports whether err is a foreign-key failure.
func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}

	msg := err.Error()
	return strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "foreign key constraint")
}
