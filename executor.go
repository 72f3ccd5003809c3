package rowdec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Executor runs queries against a caller-owned database handle and returns each row as a QueryResult
//
// Q is the handle type - SqlInterface (mysql, sqlite) or PgxInterface (postgres). The Executor never opens,
// pools or closes connections and never starts transactions.
type Executor[Q any] interface {
	// Rows reads all rows
	//
	// options can be any of Query, AddClause, Limiter or ErrorTranslator
	Rows(ctx context.Context, q Q, args []any, options ...any) ([]*QueryResult, error)
	// FirstRow reads just the first row
	//
	// if there are no rows, returns nil
	//
	// options can be any of Query, AddClause, Limiter (ignored) or ErrorTranslator
	FirstRow(ctx context.Context, q Q, args []any, options ...any) (*QueryResult, error)
	// ExactlyOneRow reads exactly one row
	//
	// if there are no rows, returns a DbErr of kind ErrRecordNotFound
	//
	// options can be any of Query, AddClause, Limiter (ignored) or ErrorTranslator
	ExactlyOneRow(ctx context.Context, q Q, args []any, options ...any) (*QueryResult, error)
	// Iterate iterates over the rows and calls the supplied handler with each row
	//
	// iteration stops at the end of rows - or an error is encountered - or the supplied handler returns false for `cont` (continue)
	Iterate(ctx context.Context, q Q, args []any, handler func(res *QueryResult) (cont bool, err error), options ...any) error
}

// NewSqlExecutor creates a new Executor for a database/sql handle
//
// backend must be BackendMySQL or BackendSQLite; options can be any of Query or ErrorTranslator
func NewSqlExecutor(backend Backend, options ...any) (Executor[SqlInterface], error) {
	switch backend {
	case BackendMySQL, BackendSQLite:
	default:
		return nil, fmt.Errorf("%s rows cannot be read through database/sql", backend)
	}
	return newExecutor[SqlInterface](backend, func(ctx context.Context, sqli SqlInterface, query string, args []any) (cursor, error) {
		return openSqlCursor(ctx, sqli, backend, query, args)
	}, options)
}

// MustNewSqlExecutor is the same as NewSqlExecutor, except it panics on error
func MustNewSqlExecutor(backend Backend, options ...any) Executor[SqlInterface] {
	e, err := NewSqlExecutor(backend, options...)
	if err != nil {
		panic(err)
	}
	return e
}

// NewPgxExecutor creates a new Executor for a pgx handle (postgres)
//
// options can be any of Query or ErrorTranslator
func NewPgxExecutor(options ...any) (Executor[PgxInterface], error) {
	return newExecutor[PgxInterface](BackendPostgres, openPgxCursor, options)
}

// MustNewPgxExecutor is the same as NewPgxExecutor, except it panics on error
func MustNewPgxExecutor(options ...any) Executor[PgxInterface] {
	e, err := NewPgxExecutor(options...)
	if err != nil {
		panic(err)
	}
	return e
}

type openCursor[Q any] func(ctx context.Context, q Q, query string, args []any) (cursor, error)

type executor[Q any] struct {
	backend         Backend
	defaultQuery    *Query
	errorTranslator ErrorTranslator
	open            openCursor[Q]
}

func newExecutor[Q any](backend Backend, open openCursor[Q], options []any) (*executor[Q], error) {
	result := &executor[Q]{
		backend:         backend,
		errorTranslator: defaultErrorTranslator,
		open:            open,
	}
	if err := result.addOptions(options...); err != nil {
		return nil, err
	}
	return result, nil
}

func (e *executor[Q]) Rows(ctx context.Context, q Q, args []any, options ...any) (result []*QueryResult, err error) {
	query, limiter, errTranslator, err := e.callOptions(options)
	if err == nil {
		var cur cursor
		if cur, err = e.open(ctx, q, query, args); err == nil {
			defer func() {
				_ = cur.Close()
			}()
			result = make([]*QueryResult, 0)
			rowCount := 0
			var res *QueryResult
			for err == nil && cur.Next() {
				rowCount++
				if limiter.LimitReached(rowCount) {
					break
				}
				if res, err = cur.Result(); err == nil {
					result = append(result, res)
				}
			}
			if err == nil {
				err = cur.Err()
			}
		}
	}
	if err != nil {
		return nil, translateError(err, e.backend, errTranslator)
	}
	return result, nil
}

func (e *executor[Q]) FirstRow(ctx context.Context, q Q, args []any, options ...any) (result *QueryResult, err error) {
	query, _, errTranslator, err := e.callOptions(options)
	if err == nil {
		var cur cursor
		if cur, err = e.open(ctx, q, query, args); err == nil {
			defer func() {
				_ = cur.Close()
			}()
			if cur.Next() {
				result, err = cur.Result()
			} else {
				err = cur.Err()
			}
		}
	}
	return result, translateError(err, e.backend, errTranslator)
}

func (e *executor[Q]) ExactlyOneRow(ctx context.Context, q Q, args []any, options ...any) (result *QueryResult, err error) {
	query, _, errTranslator, err := e.callOptions(options)
	if err == nil {
		var cur cursor
		if cur, err = e.open(ctx, q, query, args); err == nil {
			defer func() {
				_ = cur.Close()
			}()
			if cur.Next() {
				result, err = cur.Result()
			} else if err = cur.Err(); err == nil {
				err = sql.ErrNoRows
			}
		}
	}
	return result, translateError(err, e.backend, errTranslator)
}

func (e *executor[Q]) Iterate(ctx context.Context, q Q, args []any, handler func(res *QueryResult) (cont bool, err error), options ...any) (err error) {
	query, _, errTranslator, err := e.callOptions(options)
	if err == nil {
		var cur cursor
		if cur, err = e.open(ctx, q, query, args); err == nil {
			defer func() {
				_ = cur.Close()
			}()
			var res *QueryResult
			cont := true
			for cont && err == nil && cur.Next() {
				if res, err = cur.Result(); err == nil {
					cont, err = handler(res)
				}
			}
			if err == nil {
				err = cur.Err()
			}
		}
	}
	return translateError(err, e.backend, errTranslator)
}

func (e *executor[Q]) addOptions(options ...any) error {
	seenQuery := false
	for _, o := range options {
		if o != nil {
			switch option := o.(type) {
			case Query:
				if seenQuery {
					return errors.New("cannot use multiple default queries")
				}
				seenQuery = true
				qStr := option
				e.defaultQuery = &qStr
			case ErrorTranslator:
				e.errorTranslator = option
			default:
				return fmt.Errorf("unknown option type: %T", o)
			}
		}
	}
	return nil
}

func (e *executor[Q]) callOptions(options []any) (query string, limiter Limiter, errorTranslator ErrorTranslator, err error) {
	querySet := false
	limiter = defaultLimiter
	errorTranslator = e.errorTranslator
	var qb strings.Builder
	if e.defaultQuery != nil {
		querySet = true
		qb.WriteString(string(*e.defaultQuery))
	}
	for _, o := range options {
		if o != nil {
			switch option := o.(type) {
			case Query:
				querySet = true
				qb.Reset()
				qb.WriteString(string(option))
			case AddClause:
				if !querySet {
					err = errors.New("add clause must have a query set")
					return
				}
				qb.WriteString(" " + string(option))
			case Limiter:
				limiter = option
			case ErrorTranslator:
				errorTranslator = option
			default:
				err = fmt.Errorf("unknown option type: %T", o)
				return
			}
		}
	}
	if !querySet {
		err = errors.New("no default query")
	}
	return qb.String(), limiter, errorTranslator, err
}
