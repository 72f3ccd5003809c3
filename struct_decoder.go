package rowdec

import (
	"errors"
	"fmt"
	"reflect"
)

const sqlTag = "sql"

// UseTagName is a type that can be passed as an option to NewStructDecoder
// and determines the field tag name to use for field column mappings
//
// If this option is not passed to NewStructDecoder, then the default "sql" tag is used
type UseTagName string

// FieldColumnNamer is an interface that can be passed as an option to NewStructDecoder
// and is used to derive the column name to use for a given field
//
// If this option is not specified (or none are satisfied), the name is deduced from the "sql" tag for the field
type FieldColumnNamer interface {
	// ColumnName returns the column name to use for the given struct field
	//
	// The returned name is only used if second return arg is true
	ColumnName(structType reflect.Type, fld reflect.StructField) (string, bool)
}

// StructPostProcessor is an interface that can be passed as an option to NewStructDecoder
//
// Multiple StructPostProcessor can be used, each one is called sequentially after the fields have been decoded
type StructPostProcessor[T any] interface {
	// PostProcess executes the StructPostProcessor
	PostProcess(res *QueryResult, row *T) error
}

// StructDecoder decodes a whole QueryResult into a struct, one column per tagged field
type StructDecoder[T any] interface {
	// Decode decodes the row into a `T`
	//
	// each field's column is resolved as pre + column name - the returned error, if any, is a *DbErr
	Decode(res *QueryResult, pre string) (T, error)
	// DecodeAll decodes each row into a `T`
	DecodeAll(results []*QueryResult, pre string) ([]T, error)
}

type fieldDecoder struct {
	index  []int
	column string
	typ    reflect.Type
}

type structDecoder[T any] struct {
	useTagName        string
	fieldColumnNamers []FieldColumnNamer
	postProcessors    []StructPostProcessor[T]
	fields            []fieldDecoder
}

// NewStructDecoder creates a new struct decoder
//
// options can be any of UseTagName, FieldColumnNamer or StructPostProcessor[T]
func NewStructDecoder[T any](options ...any) (StructDecoder[T], error) {
	if reflect.TypeFor[T]().Kind() != reflect.Struct {
		return nil, errors.New("StructDecoder can only be used with struct types")
	}
	d := &structDecoder[T]{useTagName: sqlTag}
	if err := d.processOptions(options); err != nil {
		return nil, err
	}
	fields, err := buildFieldDecoders(d.fieldColumnNamers, reflect.TypeFor[T](), nil, make(map[string]struct{}))
	if err != nil {
		return nil, err
	}
	d.fields = fields
	return d, nil
}

// MustNewStructDecoder is the same as NewStructDecoder except that it panics on error
func MustNewStructDecoder[T any](options ...any) StructDecoder[T] {
	result, err := NewStructDecoder[T](options...)
	if err != nil {
		panic(err)
	}
	return result
}

func (d *structDecoder[T]) Decode(res *QueryResult, pre string) (result T, err error) {
	rv := reflect.ValueOf(&result).Elem()
	for _, fd := range d.fields {
		var v any
		if v, err = decodeType(fd.typ, res, pre, fd.column); err != nil {
			return result, IntoDbErr(err)
		}
		fv := rv.FieldByIndex(fd.index)
		if v == nil {
			fv.Set(reflect.Zero(fd.typ))
		} else {
			fv.Set(reflect.ValueOf(v))
		}
	}
	for _, pp := range d.postProcessors {
		if err = pp.PostProcess(res, &result); err != nil {
			return result, WrapQueryErr(err)
		}
	}
	return result, nil
}

func (d *structDecoder[T]) DecodeAll(results []*QueryResult, pre string) ([]T, error) {
	items := make([]T, 0, len(results))
	for _, res := range results {
		item, err := d.Decode(res, pre)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (d *structDecoder[T]) processOptions(options []any) error {
	for _, o := range options {
		if o != nil {
			switch option := o.(type) {
			case UseTagName:
				if option != "" {
					d.useTagName = string(option)
				}
			case FieldColumnNamer:
				d.fieldColumnNamers = append(d.fieldColumnNamers, option)
			case StructPostProcessor[T]:
				d.postProcessors = append(d.postProcessors, option)
			default:
				return fmt.Errorf("unknown option type: %T", o)
			}
		}
	}
	d.fieldColumnNamers = append(d.fieldColumnNamers, &defaultFieldColumnNamer{tagName: d.useTagName})
	return nil
}

func buildFieldDecoders(namers []FieldColumnNamer, rt reflect.Type, parentIndex []int, seen map[string]struct{}) (result []fieldDecoder, err error) {
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		index := append(append([]int{}, parentIndex...), f.Index...)
		if f.Type.Kind() == reflect.Struct && !isDecodable(f.Type) {
			var nested []fieldDecoder
			if nested, err = buildFieldDecoders(namers, f.Type, index, seen); err != nil {
				return nil, err
			}
			result = append(result, nested...)
			continue
		}
		useColName := ""
		named := false
		for _, namer := range namers {
			if useColName, named = namer.ColumnName(rt, f); named {
				break
			}
		}
		if !named || useColName == "-" || useColName == "" {
			continue
		}
		if _, exists := seen[useColName]; exists {
			return nil, fmt.Errorf("duplicate column mapping %q", useColName)
		}
		seen[useColName] = struct{}{}
		if !isDecodable(f.Type) {
			return nil, fmt.Errorf("field %s.%s (%s) cannot be decoded", rt.Name(), f.Name, f.Type)
		}
		result = append(result, fieldDecoder{
			index:  index,
			column: useColName,
			typ:    f.Type,
		})
	}
	return result, nil
}

type defaultFieldColumnNamer struct {
	tagName string
}

var _ FieldColumnNamer = &defaultFieldColumnNamer{}

func (d *defaultFieldColumnNamer) ColumnName(structType reflect.Type, fld reflect.StructField) (string, bool) {
	tag, ok := fld.Tag.Lookup(d.tagName)
	if !ok || tag == "-" || tag == "" {
		return "", false
	}
	return tag, true
}
