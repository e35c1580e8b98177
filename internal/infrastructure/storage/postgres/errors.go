package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repositories react to.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeNumericOutOfRange   = "22003"
	CodeQueryCanceled       = "57014"
	CodeLockNotAvailable    = "55P03"
)

// PgErrorCode returns the SQLSTATE of err, or "" if err is not a server error.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// IsUniqueViolation reports whether err is a unique constraint violation.
func IsUniqueViolation(err error) bool {
	return PgErrorCode(err) == CodeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return PgErrorCode(err) == CodeForeignKeyViolation
}

// IsNumericOutOfRange reports whether a value overflowed its column type.
func IsNumericOutOfRange(err error) bool {
	return PgErrorCode(err) == CodeNumericOutOfRange
}

// IsLockTimeout reports whether a statement gave up waiting, either on
// statement_timeout or on lock_timeout / NOWAIT.
func IsLockTimeout(err error) bool {
	switch PgErrorCode(err) {
	case CodeQueryCanceled, CodeLockNotAvailable:
		return true
	}
	return false
}

// IsNoRows reports whether err means the query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
