// Package cachestore provides persistent backends for the provider response
// cache: SQLite for single-host deployments and Postgres for shared ones.
// Both satisfy address.Cache and store whatever bytes the caching layer hands
// them under its opaque keys.
package cachestore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of pgxpool.Pool the Postgres cache needs. pgxmock
// satisfies it for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
