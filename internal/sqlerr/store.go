package sqlerr

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Kind classifies every failure a store operation can report.
type Kind string

const (
	// KindConnectionUnavailable means no connection could be obtained.
	KindConnectionUnavailable Kind = "CONNECTION_UNAVAILABLE"

	// KindNotFound means a keyed read/update/delete targeted no existing row.
	KindNotFound Kind = "NOT_FOUND"

	// KindUnexpectedRowCount means an insert affected a row count other than 1.
	KindUnexpectedRowCount Kind = "UNEXPECTED_ROW_COUNT"

	// KindKeyGenerationFailed means an insert returned no generated key.
	KindKeyGenerationFailed Kind = "KEY_GENERATION_FAILED"

	// KindQueryExecutionFailed covers any other driver or statement failure.
	KindQueryExecutionFailed Kind = "QUERY_EXECUTION_FAILED"

	// KindInvalidArgument means the operation was called with unusable input,
	// e.g. an update of a recipe that was never persisted.
	KindInvalidArgument Kind = "INVALID_ARGUMENT"
)

// Sentinels for errors.Is. Matching is by Kind only:
//
//	if errors.Is(err, sqlerr.ErrNotFound) { ... }
var (
	ErrConnectionUnavailable = &StoreError{Kind: KindConnectionUnavailable}
	ErrNotFound              = &StoreError{Kind: KindNotFound}
	ErrUnexpectedRowCount    = &StoreError{Kind: KindUnexpectedRowCount}
	ErrKeyGenerationFailed   = &StoreError{Kind: KindKeyGenerationFailed}
	ErrQueryExecutionFailed  = &StoreError{Kind: KindQueryExecutionFailed}
	ErrInvalidArgument       = &StoreError{Kind: KindInvalidArgument}
)

// StoreError is the typed failure returned by every store operation.
//
// Op names the operation ("recipe.read"), Table the backing table, Detail is a
// short human explanation and Err the underlying driver error (if any).
type StoreError struct {
	Kind   Kind
	Op     string
	Table  string
	Detail string
	Err    error
}

func (e *StoreError) Error() string {
	msg := string(e.Kind)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches any *StoreError of the same Kind.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	return ok && t.Kind == e.Kind
}

// New builds a StoreError without an underlying cause.
func New(kind Kind, op, table, detail string) *StoreError {
	return &StoreError{Kind: kind, Op: op, Table: table, Detail: detail}
}

// Newf is New with a formatted detail.
func Newf(kind Kind, op, table, format string, args ...any) *StoreError {
	return New(kind, op, table, fmt.Sprintf(format, args...))
}

// Wrap classifies err as a StoreError for operation op on table.
//
//   - nil stays nil
//   - an existing *StoreError is returned unchanged
//   - pgx.ErrNoRows becomes KindNotFound
//   - anything else becomes KindQueryExecutionFailed, including a connection
//     lost after Acquire succeeded
//
// KindConnectionUnavailable is reserved for Unavailable. The cause stays
// reachable through errors.As / errors.Is.
func Wrap(op, table string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	kind := KindQueryExecutionFailed

	if errors.Is(err, pgx.ErrNoRows) {
		kind = KindNotFound
	}

	return &StoreError{Kind: kind, Op: op, Table: table, Err: err}
}

// Unavailable wraps a connection acquisition failure.
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return err
	}

	detail := "could not acquire a database connection"
	if errors.Is(err, context.DeadlineExceeded) {
		detail = "timed out acquiring a database connection"
	}

	return &StoreError{Kind: KindConnectionUnavailable, Op: op, Detail: detail, Err: err}
}

// KindOf returns the Kind of err, or "" when err is not a StoreError.
func KindOf(err error) Kind {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr.Kind
	}
	return ""
}
