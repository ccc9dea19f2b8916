package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrInvalidConfig     = errors.New("pg.invalid_config")
	ErrConnectionFailed  = errors.New("pg.connection_failed")
	ErrHealthcheckFailed = errors.New("pg.healthcheck_failed")
	ErrMigrationFailed   = errors.New("pg.migration_failed")
)

// IsNotFoundError reports whether the error is pgx.ErrNoRows, so repositories
// can map it to their own not-found sentinel.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
// Stores rely on it to turn index conflicts into already-exists errors.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolationError reports a referential integrity violation
// (SQLSTATE 23503).
func IsForeignKeyViolationError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
