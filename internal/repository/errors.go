package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("record not found")

// ValidationError reports a write that violates a constraint.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// integrity_constraint_violation class
const integrityViolationClass = "23"

// asConstraintViolation converts PostgreSQL integrity errors from either driver into a ValidationError.
func asConstraintViolation(err error) (*ValidationError, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), integrityViolationClass) {
		return &ValidationError{Field: pqErr.Column, Message: pqErr.Message, Err: err}, true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, integrityViolationClass) {
		return &ValidationError{Field: pgErr.ColumnName, Message: pgErr.Message, Err: err}, true
	}

	return nil, false
}

// wrapWriteErr turns a failed write into a ValidationError when the database rejected it on a constraint.
func wrapWriteErr(op string, err error) error {
	if vErr, ok := asConstraintViolation(err); ok {
		return fmt.Errorf("%s: %w", op, vErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func wrapGetErr(what string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("failed to get %s %d: %w", what, id, err)
}
