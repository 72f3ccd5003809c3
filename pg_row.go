package rowdec

import (
	"bytes"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// pgTypes serialises access to a pgtype.Map, which is not safe for concurrent use
type pgTypes struct {
	mu sync.Mutex
	m  *pgtype.Map
}

func newPgTypes(m *pgtype.Map) *pgTypes {
	if m == nil {
		m = pgtype.NewMap()
	}
	return &pgTypes{m: m}
}

func (t *pgTypes) scan(fd pgconn.FieldDescription, src []byte, dst any) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.m.Scan(fd.DataTypeOID, fd.Format, src, dst)
}

// PostgresRow is a row read from PostgreSQL using pgx
//
// values are kept in their wire form and only decoded when a column is requested at a known type
type PostgresRow struct {
	fields []pgconn.FieldDescription
	values [][]byte
	index  map[string]int
	types  *pgTypes
}

// NewPostgresRow creates a PostgresRow from field descriptions and raw wire values (a nil value is NULL)
//
// typeMap is used to decode values (if nil, a new pgtype.Map is used) - it must not be used elsewhere
// while the row is being decoded
func NewPostgresRow(fields []pgconn.FieldDescription, values [][]byte, typeMap *pgtype.Map) *PostgresRow {
	return newPostgresRow(fields, values, newPgTypes(typeMap))
}

// ScanPostgresRow materialises the current row of a pgx cursor
func ScanPostgresRow(rows pgx.Rows, typeMap *pgtype.Map) *PostgresRow {
	return newPostgresRow(rows.FieldDescriptions(), rows.RawValues(), newPgTypes(typeMap))
}

func newPostgresRow(fields []pgconn.FieldDescription, values [][]byte, types *pgTypes) *PostgresRow {
	if len(fields) != len(values) {
		panic("rowdec: number of fields and values differ")
	}
	result := &PostgresRow{
		fields: append([]pgconn.FieldDescription{}, fields...),
		values: make([][]byte, len(values)),
		index:  make(map[string]int, len(fields)),
		types:  types,
	}
	for i, v := range values {
		// pgx reuses the read buffer for the next row
		result.values[i] = bytes.Clone(v)
	}
	for i, fd := range fields {
		if _, exists := result.index[fd.Name]; !exists {
			result.index[fd.Name] = i
		}
	}
	return result
}

func (r *PostgresRow) backend() Backend {
	return BackendPostgres
}

func (r *PostgresRow) scan(column string, dst any) error {
	i, ok := r.index[column]
	if !ok {
		return columnNotFound(column)
	}
	if err := r.types.scan(r.fields[i], r.values[i], dst); err != nil {
		return decodeErr(column, err)
	}
	return nil
}

// scanPgValue decodes the named column as an optionally present T using pgx pointer-to-pointer scanning
func scanPgValue[T any](row *PostgresRow, column string) (result T, err error) {
	var p *T
	if err = row.scan(column, &p); err != nil {
		return result, err
	}
	if p == nil {
		return result, nullError()
	}
	return *p, nil
}
