package persistence

import (
	"context"
	"database/sql/driver"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"github.com/travelpkg/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver and ORM errors onto the domain error taxonomy.
// Errors that are already domain errors pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var de *shared.DomainError
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return shared.NewRetryableError(err)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewConflictError("a record with the same key already exists")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return shared.NewConflictError("the record is still referenced")
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return shared.NewRetryableError(err) // connection exception
		case pgErr.Code == "40001", pgErr.Code == "40P01":
			return shared.NewRetryableError(err) // serialization failure, deadlock
		case pgErr.Code == "57P01", pgErr.Code == "53300":
			return shared.NewRetryableError(err) // admin shutdown, too many connections
		case pgErr.Code == "23505":
			return shared.NewConflictError("a record with the same key already exists")
		case pgErr.Code == "23503":
			return shared.NewConflictError("the record is still referenced")
		}
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return shared.NewConflictError("a record with the same key already exists")
		case sqlite3.ErrConstraintForeignKey:
			return shared.NewConflictError("the record is still referenced")
		}
		if liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked {
			return shared.NewRetryableError(err)
		}
	}
	return shared.NewFatalError(err)
}
