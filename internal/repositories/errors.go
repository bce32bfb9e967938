package repositories

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// ErrorKind is the store-independent class of a persistence failure.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindDuplicate
	KindForeignKeyViolation
	KindNotFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindDuplicate:
		return "duplicate"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindNotFound:
		return "not_found"
	default:
		return "other"
	}
}

// Postgres SQLSTATE codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// ClassifyError maps a raw store error to an ErrorKind. It understands gorm's
// translated sentinels as well as the native Postgres and SQLite driver errors.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindOther
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return KindNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return KindDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return KindForeignKeyViolation
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return KindDuplicate
		case pgForeignKeyViolation:
			return KindForeignKeyViolation
		}
		return KindOther
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return KindDuplicate
		case sqlite3.ErrConstraintForeignKey:
			return KindForeignKeyViolation
		}
	}

	return KindOther
}

// IsNotFoundError checks if error is a not found error
func IsNotFoundError(err error) bool {
	return ClassifyError(err) == KindNotFound
}

// IsDuplicateError checks if error violates a unique constraint
func IsDuplicateError(err error) bool {
	return ClassifyError(err) == KindDuplicate
}

// IsForeignKeyError checks if error violates a foreign key constraint
func IsForeignKeyError(err error) bool {
	return ClassifyError(err) == KindForeignKeyViolation
}
