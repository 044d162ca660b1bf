package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrConstraintViolation = errors.New("constraint violation")
)

// Postgres SQLSTATE codes.
const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
)

type ConstraintKind string

const (
	ConstraintUnique  ConstraintKind = "unique"
	ConstraintNotNull ConstraintKind = "not_null"
)

// ConstraintError is returned when the store rejects a write because of an
// integrity rule. Field is the column the rule applies to.
type ConstraintError struct {
	Kind       ConstraintKind
	Field      string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint violation on %q (%s)", e.Kind, e.Field, e.Constraint)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrConstraintViolation }
func (e *ConstraintError) Unwrap() error        { return e.Err }

// StoreError wraps a transport or server failure from one of the stores.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }
func (e *StoreError) Unwrap() error        { return e.Err }

// mapPostgresError translates a driver error into ErrNotFound, a
// *ConstraintError or a *StoreError.
func mapPostgresError(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return &ConstraintError{
				Kind:       ConstraintUnique,
				Field:      uniqueViolationField(pgErr),
				Constraint: pgErr.ConstraintName,
				Err:        err,
			}
		case pgNotNullViolation:
			return &ConstraintError{
				Kind:       ConstraintNotNull,
				Field:      pgErr.ColumnName,
				Constraint: pgErr.ConstraintName,
				Err:        err,
			}
		}
	}

	return &StoreError{Op: op, Err: err}
}

// keyDetailPattern matches the DETAIL Postgres attaches to unique violations,
// e.g. "Key (email)=(jane@example.com) already exists.".
var keyDetailPattern = regexp.MustCompile(`^Key \(([^)]+)\)=`)

// uniqueViolationField names the column(s) behind a unique violation. The
// detail line is independent of how the constraint or index is named.
func uniqueViolationField(pgErr *pgconn.PgError) string {
	if m := keyDetailPattern.FindStringSubmatch(pgErr.Detail); m != nil {
		return m[1]
	}

	return fieldFromConstraint(pgErr.TableName, pgErr.ConstraintName)
}

// fieldFromConstraint follows the Postgres default naming <table>_<column>_key.
func fieldFromConstraint(table, constraint string) string {
	if table == "" {
		table = "users"
	}

	field := strings.TrimPrefix(constraint, table+"_")
	field = strings.TrimSuffix(field, "_key")

	return field
}
