package rowdec

import (
	"bytes"
	"database/sql"
)

// columnsInfo is the column metadata of a database/sql result set - read once per cursor
type columnsInfo struct {
	count   int
	names   []string
	dbTypes []string
	index   map[string]int
}

type columnsReader struct {
	values   []any
	scanArgs []any
}

func newColumnsInfo(rows *sql.Rows) (result *columnsInfo, err error) {
	var cts []*sql.ColumnType
	if cts, err = rows.ColumnTypes(); err == nil {
		names := make([]string, len(cts))
		dbTypes := make([]string, len(cts))
		for i, ct := range cts {
			names[i] = ct.Name()
			dbTypes[i] = ct.DatabaseTypeName()
		}
		result = buildColumnsInfo(names, dbTypes)
	}
	return result, err
}

func buildColumnsInfo(names []string, dbTypes []string) *columnsInfo {
	if dbTypes == nil {
		dbTypes = make([]string, len(names))
	}
	ci := &columnsInfo{
		count:   len(names),
		names:   names,
		dbTypes: dbTypes,
		index:   make(map[string]int, len(names)),
	}
	for i, name := range names {
		// first occurrence wins for duplicated column names
		if _, exists := ci.index[name]; !exists {
			ci.index[name] = i
		}
	}
	return ci
}

func (ci *columnsInfo) reader() *columnsReader {
	r := &columnsReader{
		values:   make([]any, ci.count),
		scanArgs: make([]any, ci.count),
	}
	for i := 0; i < ci.count; i++ {
		r.scanArgs[i] = &rawColumnScanner{
			columns: r,
			index:   i,
		}
	}
	return r
}

// readRow materialises the current row of rows
func (ci *columnsInfo) readRow(rows *sql.Rows) (result sqlRow, err error) {
	r := ci.reader()
	if err = rows.Scan(r.scanArgs...); err == nil {
		result = sqlRow{
			columns: ci,
			values:  r.values,
		}
	}
	return result, err
}

type rawColumnScanner struct {
	columns *columnsReader
	index   int
}

func (c *rawColumnScanner) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		// drivers may reuse the buffer on the next row
		c.columns.values[c.index] = bytes.Clone(v)
	default:
		c.columns.values[c.index] = src
	}
	return nil
}

// sqlRow is a database/sql row materialised as raw driver values
type sqlRow struct {
	columns *columnsInfo
	values  []any
}

func newSqlRow(columns []string, dbTypes []string, values []any) sqlRow {
	if len(columns) != len(values) {
		panic("rowdec: number of columns and values differ")
	}
	cr := &columnsReader{values: make([]any, len(values))}
	for i, v := range values {
		_ = (&rawColumnScanner{columns: cr, index: i}).Scan(v)
	}
	return sqlRow{
		columns: buildColumnsInfo(append([]string{}, columns...), append([]string(nil), dbTypes...)),
		values:  cr.values,
	}
}

func (r *sqlRow) value(column string) (any, bool) {
	if i, ok := r.columns.index[column]; ok {
		return r.values[i], true
	}
	return nil, false
}

// scanSqlValue decodes the named column as an optionally present T using database/sql conversions
func scanSqlValue[T any](row *sqlRow, column string) (result T, err error) {
	v, ok := row.value(column)
	if !ok {
		return result, columnNotFound(column)
	}
	var n sql.Null[T]
	if cErr := n.Scan(v); cErr != nil {
		return result, decodeErr(column, cErr)
	}
	if !n.Valid {
		return result, nullError()
	}
	return n.V, nil
}

// MySQLRow is a row read from a MySQL database (github.com/go-sql-driver/mysql)
type MySQLRow struct {
	sqlRow
}

// NewMySQLRow creates a MySQLRow from column names and driver values (nil values are NULL)
func NewMySQLRow(columns []string, values []any) *MySQLRow {
	return &MySQLRow{sqlRow: newSqlRow(columns, nil, values)}
}

// ScanMySQLRow materialises the current row of a MySQL cursor
func ScanMySQLRow(rows *sql.Rows) (*MySQLRow, error) {
	ci, err := newColumnsInfo(rows)
	if err != nil {
		return nil, err
	}
	row, err := ci.readRow(rows)
	if err != nil {
		return nil, err
	}
	return &MySQLRow{sqlRow: row}, nil
}

func (r *MySQLRow) backend() Backend {
	return BackendMySQL
}

func (r *MySQLRow) String() string {
	return formatRow("MySQLRow", r.columns.names, func(i int) any {
		return r.values[i]
	})
}

// SQLiteRow is a row read from a SQLite database (modernc.org/sqlite)
type SQLiteRow struct {
	sqlRow
}

// NewSQLiteRow creates a SQLiteRow from column names and driver values (nil values are NULL)
func NewSQLiteRow(columns []string, values []any) *SQLiteRow {
	return &SQLiteRow{sqlRow: newSqlRow(columns, nil, values)}
}

// ScanSQLiteRow materialises the current row of a SQLite cursor
func ScanSQLiteRow(rows *sql.Rows) (*SQLiteRow, error) {
	ci, err := newColumnsInfo(rows)
	if err != nil {
		return nil, err
	}
	row, err := ci.readRow(rows)
	if err != nil {
		return nil, err
	}
	return &SQLiteRow{sqlRow: row}, nil
}

func (r *SQLiteRow) backend() Backend {
	return BackendSQLite
}
