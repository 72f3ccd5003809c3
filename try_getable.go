package rowdec

import (
	"errors"
	"fmt"
	"reflect"
)

// TryGetable is implemented (with a pointer receiver) by types that decode themselves from a QueryResult
//
// TryGet should resolve the column as pre + col and return either nil, a Null TryGetError (see NewNullError)
// or a DbErr TryGetError (see NewDbError) - any other error is treated as a query error
type TryGetable interface {
	TryGet(res *QueryResult, pre, col string) error
}

var tryGetableType = reflect.TypeFor[TryGetable]()

// TryGet decodes column pre+col of res as a T
//
// The column key is the plain concatenation of pre and col (e.g. pre "a_" and col "id" read column "a_id").
//
// The returned error, if any, is a *DbErr - a NULL column is reported as a query error. Use a pointer
// type for T (e.g. TryGet[*int64]) to read nullable columns.
//
// TryGet panics if T cannot be decoded from the backend that produced res (e.g. uint8 from postgres)
// or if T has no decoder at all.
func TryGet[T any](res *QueryResult, pre, col string) (T, error) {
	v, err := Decode[T](res, pre, col)
	if err != nil {
		return v, IntoDbErr(err)
	}
	return v, nil
}

// Decode is the two-level form of TryGet - the returned error, if any, is a *TryGetError
//
// use errors.Is(err, ErrNull) to detect a NULL column
func Decode[T any](res *QueryResult, pre, col string) (result T, err error) {
	var v any
	if v, err = decodeType(reflect.TypeFor[T](), res, pre, col); err == nil {
		result = v.(T)
	}
	return result, err
}

// Nullable decodes column pre+col as an optional T - a NULL column gives a nil pointer
//
// the returned error, if any, is a *TryGetError that wraps a DbErr
func Nullable[T any](res *QueryResult, pre, col string) (*T, error) {
	return Decode[*T](res, pre, col)
}

func decodeType(rt reflect.Type, res *QueryResult, pre, col string) (any, error) {
	if reflect.PointerTo(rt).Implements(tryGetableType) {
		pv := reflect.New(rt)
		if err := pv.Interface().(TryGetable).TryGet(res, pre, col); err != nil {
			return nil, asTryGetError(err)
		}
		return pv.Elem().Interface(), nil
	}
	if reg, ok := lookup(rt); ok {
		return reg.decode(res, pre+col)
	}
	if rt.Kind() == reflect.Pointer {
		return decodeOption(rt, res, pre, col)
	}
	panic(fmt.Sprintf("%s has no TryGetable implementation", rt))
}

// decodeOption decodes the pointer type rt by decoding its element type
//
// Null becomes a nil pointer; any other error is returned unchanged
func decodeOption(rt reflect.Type, res *QueryResult, pre, col string) (any, error) {
	v, err := decodeType(rt.Elem(), res, pre, col)
	if err != nil {
		if errors.Is(err, ErrNull) {
			return reflect.Zero(rt).Interface(), nil
		}
		return nil, err
	}
	pv := reflect.New(rt.Elem())
	pv.Elem().Set(reflect.ValueOf(v))
	return pv.Interface(), nil
}

func asTryGetError(err error) *TryGetError {
	var tge *TryGetError
	if errors.As(err, &tge) {
		return tge
	}
	return dbError(WrapQueryErr(err))
}

// isDecodable reports whether a value of type rt can be decoded from a single column
func isDecodable(rt reflect.Type) bool {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if reflect.PointerTo(rt).Implements(tryGetableType) {
		return true
	}
	_, ok := lookup(rt)
	return ok
}
