package rowdec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func init() {
	register(reflect.TypeFor[decimal.Decimal](), FamilyNativeOrFallback, func(res *QueryResult, column string) (any, error) {
		d, err := tryGetDecimal(res, column)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// tryGetDecimal decodes an arbitrary-precision decimal
//
// mysql and postgres have native decimal columns; sqlite has none, so the column is read as a
// float64 and converted
func tryGetDecimal(res *QueryResult, column string) (result decimal.Decimal, err error) {
	switch row := res.mustRow().(type) {
	case *MySQLRow:
		return scanSqlValue[decimal.Decimal](&row.sqlRow, column)
	case *PostgresRow:
		var n pgtype.Numeric
		if err = row.scan(column, &n); err != nil {
			return result, err
		}
		if !n.Valid {
			return result, nullError()
		}
		return decimalFromNumeric(n)
	case *SQLiteRow:
		var f float64
		if f, err = scanSqlValue[float64](&row.sqlRow, column); err != nil {
			return result, err
		}
		return decimalFromFloat(f)
	case *MockRow:
		return mockValue[decimal.Decimal](row, column)
	}
	panic(fmt.Sprintf("rowdec: unknown row type %T", res.row))
}

// decimalFromFloat is the sqlite fallback conversion
//
// decimal.NewFromFloat yields the shortest decimal that round-trips to f (3.14 -> 3.14); NaN and
// infinities have no decimal representation and are errors
func decimalFromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, dbError(QueryErr("Failed to convert f64 into Decimal"))
	}
	return decimal.NewFromFloat(f), nil
}

func decimalFromNumeric(n pgtype.Numeric) (decimal.Decimal, error) {
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Decimal{}, dbError(QueryErr("Failed to convert numeric into Decimal: not a finite number"))
	}
	if n.Int == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}
