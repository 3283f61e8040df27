package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement surface the repositories use on a connection.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is a connection-scoped resource. *pgxpool.Conn satisfies it.
//
// Release returns the connection to its pool and must be called exactly once.
type Conn interface {
	Querier
	Release()
}

// ConnectionProvider hands out connections to repositories.
//
// Acquire either returns a usable Conn or fails with an error matching
// sqlerr.ErrConnectionUnavailable.
type ConnectionProvider interface {
	Acquire(ctx context.Context) (Conn, error)
}
