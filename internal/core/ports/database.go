// internal/core/ports/database.go
package ports

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database defines the port for audit-store database access,
// abstracting the concrete pgx pool from handlers and workers.
type Database interface {
	Close()
	Ping(ctx context.Context) error
	Health(ctx context.Context) map[string]interface{}
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}
