package rowdec

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// MockRow is a synthetic row for tests, holding values by column name
type MockRow struct {
	values map[string]any
}

// NewMockRow creates a MockRow
//
// a nil value is NULL, including a typed nil (e.g. []byte(nil) or (*int)(nil))
func NewMockRow(values map[string]any) *MockRow {
	cloned := maps.Clone(values)
	for k, v := range cloned {
		if isNilValue(v) {
			cloned[k] = nil
		}
	}
	return &MockRow{values: cloned}
}

func isNilValue(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (r *MockRow) backend() Backend {
	return BackendMock
}

func (r *MockRow) String() string {
	keys := make([]string, 0, len(r.values))
	for k := range r.values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return formatRow("MockRow", keys, func(i int) any {
		return r.values[keys[i]]
	})
}

// mockValue extracts the named column by exact type
//
// a missing column and a value of another type are both reported as Null
func mockValue[T any](row *MockRow, column string) (result T, err error) {
	v, ok := row.values[column]
	if !ok {
		log().Debug("mock row has no such column", "column", column)
		return result, nullError()
	}
	if result, ok = v.(T); !ok {
		if v != nil {
			log().Debug("mock row value has a different type", "column", column,
				"want", fmt.Sprintf("%T", result), "got", fmt.Sprintf("%T", v))
		}
		return result, nullError()
	}
	return result, nil
}
