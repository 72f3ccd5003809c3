package rowdec

import (
	"fmt"
	"strings"
)

// QueryResult carries exactly one backend-native row
//
// A QueryResult is read-only once constructed and may be decoded from concurrently. Use one of
// NewMySQLResult, NewPostgresResult, NewSQLiteResult or NewMockResult to create one.
type QueryResult struct {
	row resultRow
}

// resultRow is implemented only by the row types of this package
type resultRow interface {
	backend() Backend
}

// NewMySQLResult creates a QueryResult holding a MySQL row
func NewMySQLResult(row *MySQLRow) *QueryResult {
	if row == nil {
		panic("rowdec: nil MySQLRow")
	}
	return &QueryResult{row: row}
}

// NewPostgresResult creates a QueryResult holding a Postgres row
func NewPostgresResult(row *PostgresRow) *QueryResult {
	if row == nil {
		panic("rowdec: nil PostgresRow")
	}
	return &QueryResult{row: row}
}

// NewSQLiteResult creates a QueryResult holding a SQLite row
func NewSQLiteResult(row *SQLiteRow) *QueryResult {
	if row == nil {
		panic("rowdec: nil SQLiteRow")
	}
	return &QueryResult{row: row}
}

// NewMockResult creates a QueryResult holding a mock row
func NewMockResult(row *MockRow) *QueryResult {
	if row == nil {
		panic("rowdec: nil MockRow")
	}
	return &QueryResult{row: row}
}

// Backend returns the backend that produced the row
func (r *QueryResult) Backend() Backend {
	return r.mustRow().backend()
}

// Inspect returns a human-readable listing of the row
//
// Only MySQL and mock rows can be inspected - Postgres and SQLite rows can only be decoded at a
// known type and column, so Inspect panics for them
func (r *QueryResult) Inspect() string {
	switch row := r.mustRow().(type) {
	case *MySQLRow:
		return row.String()
	case *MockRow:
		return row.String()
	default:
		panic(fmt.Sprintf("%s row cannot be inspected", row.backend()))
	}
}

func (r *QueryResult) mustRow() resultRow {
	if r == nil || r.row == nil {
		panic("rowdec: QueryResult holds no row")
	}
	return r.row
}

func formatRow(name string, columns []string, value func(i int) any) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("{")
	for i, col := range columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col)
		sb.WriteString(": ")
		switch v := value(i).(type) {
		case nil:
			sb.WriteString("NULL")
		case []byte:
			sb.WriteString(fmt.Sprintf("%q", v))
		case string:
			sb.WriteString(fmt.Sprintf("%q", v))
		default:
			sb.WriteString(fmt.Sprintf("%v", v))
		}
	}
	sb.WriteString("}")
	return sb.String()
}
