package rowdec

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5"
)

// cursor yields a QueryResult for each row of an executed query
type cursor interface {
	Next() bool
	Result() (*QueryResult, error)
	Err() error
	Close() error
}

type sqlCursor struct {
	backend Backend
	rows    *sql.Rows
	info    *columnsInfo
}

var _ cursor = (*sqlCursor)(nil)

func openSqlCursor(ctx context.Context, sqli SqlInterface, backend Backend, query string, args []any) (cursor, error) {
	rows, err := sqli.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	info, err := newColumnsInfo(rows)
	if err != nil {
		_ = rows.Close()
		return nil, err
	}
	return &sqlCursor{
		backend: backend,
		rows:    rows,
		info:    info,
	}, nil
}

func (c *sqlCursor) Next() bool {
	return c.rows.Next()
}

func (c *sqlCursor) Result() (*QueryResult, error) {
	row, err := c.info.readRow(c.rows)
	if err != nil {
		return nil, err
	}
	if c.backend == BackendMySQL {
		return NewMySQLResult(&MySQLRow{sqlRow: row}), nil
	}
	return NewSQLiteResult(&SQLiteRow{sqlRow: row}), nil
}

func (c *sqlCursor) Err() error {
	return c.rows.Err()
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

type pgxCursor struct {
	rows  pgx.Rows
	types *pgTypes
}

var _ cursor = (*pgxCursor)(nil)

func openPgxCursor(ctx context.Context, pgxi PgxInterface, query string, args []any) (cursor, error) {
	rows, err := pgxi.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	// one type map per result set, shared by its rows
	return &pgxCursor{
		rows:  rows,
		types: newPgTypes(nil),
	}, nil
}

func (c *pgxCursor) Next() bool {
	return c.rows.Next()
}

func (c *pgxCursor) Result() (*QueryResult, error) {
	return NewPostgresResult(newPostgresRow(c.rows.FieldDescriptions(), c.rows.RawValues(), c.types)), nil
}

func (c *pgxCursor) Err() error {
	return c.rows.Err()
}

func (c *pgxCursor) Close() error {
	c.rows.Close()
	return c.rows.Err()
}
