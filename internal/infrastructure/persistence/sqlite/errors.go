package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/rezkam/fiscal/internal/domain"
)

// mapWriteError translates constraint violations into domain errors. SQLite
// does not report which foreign key failed, so fk is the sentinel to use.
func mapWriteError(err error, fk error) error {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "occurrences."):
			return fmt.Errorf("%w: %w", domain.ErrDuplicateOccurrence, err)
		case strings.Contains(msg, "installments."):
			return fmt.Errorf("%w: %w", domain.ErrDuplicateInstallment, err)
		case strings.Contains(msg, "clients."):
			return fmt.Errorf("%w: %w", domain.ErrDuplicateClient, err)
		}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		if fk != nil {
			return fmt.Errorf("%w: %w", fk, err)
		}
	}
	return err
}

// notFound maps sql.ErrNoRows to the given domain error.
func notFound(err error, sentinel error, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", sentinel, id)
	}
	return err
}
