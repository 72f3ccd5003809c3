package rowdec

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockRow_Copies(t *testing.T) {
	values := map[string]any{"id": int64(1)}
	res := NewMockResult(NewMockRow(values))
	values["id"] = int64(2)
	v, err := TryGet[int64](res, "", "id")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestMockRow_String(t *testing.T) {
	row := NewMockRow(map[string]any{"b": "two", "a": int64(1), "c": nil, "d": []byte("x")})
	assert.Equal(t, `MockRow{a: 1, b: "two", c: NULL, d: "x"}`, row.String())
	assert.Equal(t, row.String(), NewMockResult(row).Inspect())
}

func TestMockRow_Decode(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	res := NewMockResult(NewMockRow(map[string]any{
		"i8":      int8(-8),
		"u8":      uint8(8),
		"u64":     uint64(64),
		"s":       "str",
		"ts":      ts,
		"zoned":   ZonedTime{Time: ts},
		"uuid":    id,
		"dec":     decimal.RequireFromString("1.25"),
		"json":    json.RawMessage(`{"a":1}`),
		"null":    nil,
		"wrongTy": int32(1),
	}))
	require.Equal(t, BackendMock, res.Backend())

	i8, err := TryGet[int8](res, "", "i8")
	require.NoError(t, err)
	assert.Equal(t, int8(-8), i8)

	// every family decodes from a mock row
	u8, err := TryGet[uint8](res, "", "u8")
	require.NoError(t, err)
	assert.Equal(t, uint8(8), u8)
	u64, err := TryGet[uint64](res, "", "u64")
	require.NoError(t, err)
	assert.Equal(t, uint64(64), u64)
	zoned, err := TryGet[ZonedTime](res, "", "zoned")
	require.NoError(t, err)
	assert.True(t, ts.Equal(zoned.Time))

	s, err := TryGet[string](res, "", "s")
	require.NoError(t, err)
	assert.Equal(t, "str", s)

	tv, err := TryGet[time.Time](res, "", "ts")
	require.NoError(t, err)
	assert.Equal(t, ts, tv)

	uv, err := TryGet[uuid.UUID](res, "", "uuid")
	require.NoError(t, err)
	assert.Equal(t, id, uv)

	dec, err := TryGet[decimal.Decimal](res, "", "dec")
	require.NoError(t, err)
	assert.Equal(t, "1.25", dec.String())

	js, err := TryGet[json.RawMessage](res, "", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(js))
}

func TestMockRow_NullForms(t *testing.T) {
	res := NewMockResult(NewMockRow(map[string]any{
		"null":    nil,
		"wrongTy": int32(1),
	}))

	for _, col := range []string{"null", "wrongTy", "missing"} {
		t.Run(col, func(t *testing.T) {
			_, err := Decode[int64](res, "", col)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNull))

			v, err := Nullable[int64](res, "", col)
			require.NoError(t, err)
			assert.Nil(t, v)

			_, err = TryGet[int64](res, "", col)
			require.Error(t, err)
			assert.Equal(t, "Query Error: error occurred while decoding: Null", err.Error())
		})
	}
}

func TestMockRow_TypedNil(t *testing.T) {
	var np *int64
	res := NewMockResult(NewMockRow(map[string]any{
		"bytes": []byte(nil),
		"ptr":   np,
		"raw":   json.RawMessage(nil),
		"empty": []byte{},
	}))

	pb, err := Decode[*[]byte](res, "", "bytes")
	require.NoError(t, err)
	assert.Nil(t, pb)
	_, err = Decode[[]byte](res, "", "bytes")
	assert.True(t, errors.Is(err, ErrNull))

	_, err = Decode[json.RawMessage](res, "", "raw")
	assert.True(t, errors.Is(err, ErrNull))
	pi, err := Decode[*int64](res, "", "ptr")
	require.NoError(t, err)
	assert.Nil(t, pi)

	empty, err := Decode[*[]byte](res, "", "empty")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, []byte{}, *empty)

	assert.Equal(t, `MockRow{bytes: NULL, empty: "", ptr: NULL, raw: NULL}`, res.Inspect())
}
