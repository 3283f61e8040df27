package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/recipe-service/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"no rows", pgx.ErrNoRows, KindNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), KindNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, KindQueryExecutionFailed},
		{"too many connections", &pgconn.PgError{Code: "53300"}, KindQueryExecutionFailed},
		{"connection failure mid-query", &pgconn.PgError{Code: "08006"}, KindQueryExecutionFailed},
		{"admin shutdown mid-query", &pgconn.PgError{Code: "57P01"}, KindQueryExecutionFailed},
		{"transport error", fmt.Errorf("read tcp: %w", errors.New("connection reset by peer")), KindQueryExecutionFailed},
		{"syntax error", &pgconn.PgError{Code: "42601"}, KindQueryExecutionFailed},
		{"plain error", errors.New("boom"), KindQueryExecutionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrap("recipe.read", "recipe", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.want, KindOf(err))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap("recipe.read", "recipe", nil))
	assert.NoError(t, Unavailable("recipe.read", nil))
}

func TestWrap_KeepsStoreError(t *testing.T) {
	orig := New(KindUnexpectedRowCount, "recipe.create", "recipe", "2 rows")
	assert.Same(t, orig, Wrap("recipe.create", "recipe", orig))
}

func TestStoreError_Is(t *testing.T) {
	err := Newf(KindNotFound, "recipe.delete", "recipe", "id %d", 7)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrQueryExecutionFailed)
	assert.ErrorIs(t, fmt.Errorf("service: %w", err), ErrNotFound)
	assert.Equal(t, "recipe.delete: NOT_FOUND: id 7", err.Error())
}

func TestUnavailable(t *testing.T) {
	err := Unavailable("recipe.read", context.DeadlineExceeded)

	assert.ErrorIs(t, err, ErrConnectionUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
}

func TestMapCode(t *testing.T) {
	assert.Equal(t, UniqueViolation, MapCode("23505"))
	assert.Equal(t, ForeignKeyViolation, MapCode("23503"))
	assert.Equal(t, ConnectionException, MapCode("08001"))
	assert.Equal(t, Other, MapCode("XX000"))
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "store not found",
			err:        New(KindNotFound, "recipe.read", "recipe", "id 1"),
			wantStatus: http.StatusNotFound,
			wantCode:   "RECIPE_NOT_FOUND",
		},
		{
			name:       "connection unavailable",
			err:        Unavailable("recipe.read", errors.New("dial tcp: refused")),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "SERVICE_UNAVAILABLE",
		},
		{
			name:       "invalid argument",
			err:        New(KindInvalidArgument, "recipe.update", "recipe", "recipe id is not set"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "connection lost mid-query",
			err:        Wrap("recipe.delete", "recipe", &pgconn.PgError{Code: "08006"}),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name:       "unexpected row count",
			err:        New(KindUnexpectedRowCount, "recipe.create", "recipe", "0 rows"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
		{
			name: "foreign key violation through store error",
			err: Wrap("recipe.create", "recipe", &pgconn.PgError{
				Code:       "23503",
				TableName:  "recipe",
				ColumnName: "admin_id",
			}),
			wantStatus: http.StatusBadRequest,
			wantCode:   "RECIPE_NOT_FOUND",
		},
		{
			name: "unique violation",
			err: &pgconn.PgError{
				Code:           "23505",
				TableName:      "recipe",
				ConstraintName: "recipe_name_key",
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "RECIPE_ALREADY_EXISTS",
		},
		{
			name:       "not null violation",
			err:        &pgconn.PgError{Code: "23502", TableName: "recipe", ColumnName: "name"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "RECIPE_REQUIRED",
		},
		{
			name:       "no rows",
			err:        pgx.ErrNoRows,
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
		{
			name:       "unknown",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_SERVER_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var httpErr *errs.HTTPError
			require.ErrorAs(t, HandleError(tt.err), &httpErr)
			assert.Equal(t, tt.wantStatus, httpErr.Status)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestHandleError_UniqueViolationMessage(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "recipe",
		ConstraintName: "recipe_name_key",
	})

	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "A Recipe with this Name already exists", httpErr.Message)
}

func TestHandleError_PassesHTTPError(t *testing.T) {
	orig := errs.NewNotFoundError("nope", false, nil)
	assert.Same(t, orig, HandleError(orig))
}
