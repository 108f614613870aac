package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres SQLSTATE codes the repositories care about.
const (
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
)

func pgCode(err error) (string, *pgconn.PgError) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr
	}
	return "", nil
}

// IsContention reports errors caused by another writer holding the same
// barber's calendar. The request can be resubmitted as-is.
func IsContention(err error) bool {
	switch code, _ := pgCode(err); code {
	case codeLockNotAvailable, codeDeadlockDetected, codeSerializationFailure:
		return true
	}
	return false
}

func IsUniqueViolation(err error) bool {
	code, _ := pgCode(err)
	return code == codeUniqueViolation
}

// ForeignKeyConstraint returns the violated constraint name, if err is a
// foreign key violation.
func ForeignKeyConstraint(err error) (string, bool) {
	code, pgErr := pgCode(err)
	if code != codeForeignKeyViolation {
		return "", false
	}
	return pgErr.ConstraintName, true
}
