package rowdec

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// Family classifies which backends can decode a type
type Family int

const (
	// FamilyUniversal types decode on every backend
	FamilyUniversal Family = iota
	// FamilyUnsignedRestricted types decode on every backend except postgres (no unsigned wire types)
	FamilyUnsignedRestricted
	// FamilyMySQLOnly types decode only on mysql
	FamilyMySQLOnly
	// FamilyPostgresOnly types decode only on postgres
	FamilyPostgresOnly
	// FamilyNativeOrFallback types decode natively where the backend supports them and through a
	// type-specific conversion elsewhere
	FamilyNativeOrFallback
)

func (f Family) String() string {
	switch f {
	case FamilyUniversal:
		return "universal"
	case FamilyUnsignedRestricted:
		return "unsigned-restricted"
	case FamilyMySQLOnly:
		return "mysql-only"
	case FamilyPostgresOnly:
		return "postgres-only"
	case FamilyNativeOrFallback:
		return "native-or-fallback"
	}
	return "unknown"
}

// Supports reports whether a type in the family can be decoded from a row of the backend
//
// the mock backend supports every family
func (f Family) Supports(b Backend) bool {
	if b == BackendMock {
		return true
	}
	switch f {
	case FamilyUniversal, FamilyNativeOrFallback:
		return true
	case FamilyUnsignedRestricted:
		return b != BackendPostgres
	case FamilyMySQLOnly:
		return b == BackendMySQL
	case FamilyPostgresOnly:
		return b == BackendPostgres
	}
	return false
}

type decodeFunc func(res *QueryResult, column string) (any, error)

type registration struct {
	family Family
	decode decodeFunc
}

var registry = struct {
	sync.RWMutex
	types map[reflect.Type]registration
}{
	types: map[reflect.Type]registration{},
}

func register(rt reflect.Type, family Family, decode decodeFunc) {
	if rt.Kind() == reflect.Pointer {
		panic(fmt.Sprintf("rowdec: cannot register pointer type %s", rt))
	}
	if reflect.PointerTo(rt).Implements(tryGetableType) {
		panic(fmt.Sprintf("rowdec: %s implements TryGetable and cannot be registered", rt))
	}
	registry.Lock()
	defer registry.Unlock()
	if existing, ok := registry.types[rt]; ok {
		panic(fmt.Sprintf("rowdec: %s is already registered as %s", rt, existing.family))
	}
	registry.types[rt] = registration{family: family, decode: decode}
}

func lookup(rt reflect.Type) (registration, bool) {
	registry.RLock()
	defer registry.RUnlock()
	reg, ok := registry.types[rt]
	return reg, ok
}

// FamilyOf returns the family a type is registered in
func FamilyOf(rt reflect.Type) (Family, bool) {
	reg, ok := lookup(rt)
	return reg.family, ok
}

// Register registers T in a family, decoding it with each backend's own conversions
// (database/sql conversion rules for mysql and sqlite, pgx codecs for postgres)
//
// Register panics if T is already registered, is a pointer type, implements TryGetable or family is
// FamilyNativeOrFallback
// (fallback conversions are type-specific - implement TryGetable instead)
func Register[T any](family Family) {
	if family == FamilyNativeOrFallback {
		panic("rowdec: Register cannot be used with FamilyNativeOrFallback")
	}
	registerNative[T](family)
}

func registerNative[T any](family Family) {
	registerVia[T, T](family, nil)
}

func registerVia[W, T any](family Family, conv func(W) (T, error)) {
	register(reflect.TypeFor[T](), family, func(res *QueryResult, column string) (any, error) {
		v, err := tryGetVia[W, T](res, family, column, conv)
		if err != nil {
			return nil, err
		}
		return v, nil
	})
}

// tryGetVia is the backend dispatch shared by every registered native type
//
// real backends read the column as an optionally present W and convert it to T (W and T are the
// same type when conv is nil); mock rows hold T directly
func tryGetVia[W, T any](res *QueryResult, family Family, column string, conv func(W) (T, error)) (result T, err error) {
	row := res.mustRow()
	checkSupported(reflect.TypeFor[T](), family, row.backend())
	var wire W
	switch r := row.(type) {
	case *MockRow:
		return mockValue[T](r, column)
	case *MySQLRow:
		wire, err = scanSqlValue[W](&r.sqlRow, column)
	case *SQLiteRow:
		wire, err = scanSqlValue[W](&r.sqlRow, column)
	case *PostgresRow:
		wire, err = scanPgValue[W](r, column)
	default:
		panic(fmt.Sprintf("rowdec: unknown row type %T", row))
	}
	if err != nil {
		return result, err
	}
	if conv == nil {
		return any(wire).(T), nil
	}
	if result, err = conv(wire); err != nil {
		var dbErr *DbErr
		if errors.As(err, &dbErr) {
			return result, dbError(dbErr)
		}
		return result, decodeErr(column, err)
	}
	return result, nil
}

// checkSupported panics when a type is requested from a backend its family does not support
//
// this is a programming error (the query's types do not match the active backend), not a data condition
func checkSupported(rt reflect.Type, family Family, b Backend) {
	if !family.Supports(b) {
		msg := fmt.Sprintf("%s unsupported by %s", rt, b)
		log().Error(msg, "family", family.String())
		panic(msg)
	}
}
