package rowdec

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ZonedTime is a timezone-aware instant decoded from a timestamptz column
//
// The location is whatever the driver reports (the session or local zone), not an offset stored with
// the value. Only PostgreSQL can decode a ZonedTime - use time.Time for timestamps on other backends
type ZonedTime struct {
	time.Time
}

func init() {
	registerNative[bool](FamilyUniversal)
	registerNative[int](FamilyUniversal)
	registerNative[int8](FamilyUniversal)
	registerNative[int16](FamilyUniversal)
	registerNative[int32](FamilyUniversal)
	registerNative[int64](FamilyUniversal)
	registerNative[uint32](FamilyUniversal)
	registerNative[float32](FamilyUniversal)
	registerNative[float64](FamilyUniversal)
	registerNative[string](FamilyUniversal)
	registerNative[[]byte](FamilyUniversal)
	registerNative[time.Time](FamilyUniversal)
	registerNative[uuid.UUID](FamilyUniversal)
	registerVia[string, json.RawMessage](FamilyUniversal, jsonFromString)

	registerNative[uint8](FamilyUnsignedRestricted)
	registerNative[uint16](FamilyUnsignedRestricted)

	registerNative[uint64](FamilyMySQLOnly)
	registerNative[uint](FamilyMySQLOnly)

	registerVia[time.Time, ZonedTime](FamilyPostgresOnly, func(t time.Time) (ZonedTime, error) {
		return ZonedTime{Time: t}, nil
	})
}

// jsonFromString validates a json document read as text (pgx unmarshals json/jsonb into []byte targets)
func jsonFromString(s string) (json.RawMessage, error) {
	if !json.Valid([]byte(s)) {
		return nil, &DbErr{Kind: ErrJson, Message: "column does not contain valid JSON"}
	}
	return json.RawMessage(s), nil
}
