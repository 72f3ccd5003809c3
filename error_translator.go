package rowdec

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
)

// ErrorTranslator is an option that can be passed to NewSqlExecutor, NewPgxExecutor and the Executor methods
//
// and is called with any errors (after they have been translated to *DbErr) so that they can be translated (or wrapped)
//
// Is particularly useful for translating ErrRecordNotFound errors to your own 'not found' errors
type ErrorTranslator interface {
	// Translate translates the passed error
	Translate(error) error
}

// ErrorTranslatorFunc is a func that implements ErrorTranslator
type ErrorTranslatorFunc func(error) error

func (f ErrorTranslatorFunc) Translate(err error) error {
	return f(err)
}

var defaultErrorTranslator ErrorTranslator = &defErrorTranslator{}

type defErrorTranslator struct{}

func (e *defErrorTranslator) Translate(err error) error {
	return err
}

var driverErrorTranslators = map[Backend]ErrorTranslator{
	BackendMySQL:    ErrorTranslatorFunc(mysqlErrToDbErr),
	BackendPostgres: ErrorTranslatorFunc(pgErrToDbErr),
	BackendSQLite:   ErrorTranslatorFunc(sqliteErrToDbErr),
	BackendMock:     ErrorTranslatorFunc(commonErrToDbErr),
}

// DriverErrorTranslator returns the translator that maps the native driver errors of a backend to *DbErr
func DriverErrorTranslator(b Backend) ErrorTranslator {
	if t, ok := driverErrorTranslators[b]; ok {
		return t
	}
	return ErrorTranslatorFunc(commonErrToDbErr)
}

func translateError(err error, backend Backend, translator ErrorTranslator) error {
	if err == nil {
		return nil
	}
	return translator.Translate(DriverErrorTranslator(backend).Translate(err))
}

func commonErr(err error) (*DbErr, bool) {
	var dbErr *DbErr
	switch {
	case errors.As(err, &dbErr):
		return dbErr, true
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, pgx.ErrNoRows):
		return &DbErr{Kind: ErrRecordNotFound, Message: err.Error(), Err: err}, true
	case errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return &DbErr{Kind: ErrConn, Message: err.Error(), Err: err}, true
	}
	return nil, false
}

func commonErrToDbErr(err error) error {
	if err == nil {
		return nil
	}
	if dbErr, ok := commonErr(err); ok {
		return dbErr
	}
	return WrapQueryErr(err)
}

const (
	mysqlErConCount     = 1040
	mysqlErAccessDenied = 1045
)

func mysqlErrToDbErr(err error) error {
	if err == nil {
		return nil
	}
	if dbErr, ok := commonErr(err); ok {
		return dbErr
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		if myErr.Number == mysqlErConCount || myErr.Number == mysqlErAccessDenied {
			return &DbErr{Kind: ErrConn, Message: myErr.Error(), Err: err}
		}
		return &DbErr{Kind: ErrQuery, Message: myErr.Error(), Err: err}
	}
	if errors.Is(err, mysql.ErrInvalidConn) {
		return &DbErr{Kind: ErrConn, Message: err.Error(), Err: err}
	}
	return WrapQueryErr(err)
}

const pgConnectionExceptionClass = "08"

func pgErrToDbErr(err error) error {
	if err == nil {
		return nil
	}
	if dbErr, ok := commonErr(err); ok {
		return dbErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) >= 2 && pgErr.Code[:2] == pgConnectionExceptionClass {
			return &DbErr{Kind: ErrConn, Message: pgErr.Error(), Err: err}
		}
		return &DbErr{Kind: ErrQuery, Message: pgErr.Error(), Err: err}
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return &DbErr{Kind: ErrConn, Message: connErr.Error(), Err: err}
	}
	return WrapQueryErr(err)
}

const sqliteCantOpen = 14

func sqliteErrToDbErr(err error) error {
	if err == nil {
		return nil
	}
	if dbErr, ok := commonErr(err); ok {
		return dbErr
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		kind := ErrQuery
		if liteErr.Code()&0xff == sqliteCantOpen {
			kind = ErrConn
		}
		return &DbErr{Kind: kind, Message: fmt.Sprintf("%s (code %d)", liteErr.Error(), liteErr.Code()), Err: err}
	}
	return WrapQueryErr(err)
}
