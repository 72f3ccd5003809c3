package rowdec

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

// SqlInterface is implemented by *sql.DB, *sql.Tx and *sql.Conn
type SqlInterface interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PgxInterface is implemented by *pgx.Conn, *pgxpool.Pool and pgx.Tx
type PgxInterface interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}
