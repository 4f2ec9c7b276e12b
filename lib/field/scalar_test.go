package field

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarField_AllKinds(t *testing.T) {
	testCases := []struct {
		kind  Kind
		value any
		wire  []byte
	}{
		{KindBool, true, []byte{1}},
		{KindInt8, int8(-2), []byte{0xFE}},
		{KindUint8, uint8(200), []byte{200}},
		{KindInt16, int16(-2), []byte{0xFE, 0xFF}},
		{KindUint16, uint16(0x0102), []byte{0x02, 0x01}},
		{KindInt32, int32(-2), []byte{0xFE, 0xFF, 0xFF, 0xFF}},
		{KindUint32, uint32(0x01020304), []byte{0x04, 0x03, 0x02, 0x01}},
		{KindInt64, int64(1), []byte{1, 0, 0, 0, 0, 0, 0, 0}},
		{KindUint64, uint64(math.MaxUint64), []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}},
		{KindFloat32, float32(1), []byte{0x00, 0x00, 0x80, 0x3F}},
		{KindFloat64, float64(1), []byte{0, 0, 0, 0, 0, 0, 0xF0, 0x3F}},
	}

	for _, tc := range testCases {
		t.Run(tc.kind.String(), func(t *testing.T) {
			f := NewScalarField(tc.kind, "value")
			require.NoError(t, f.SetValue(tc.value))

			buf := buffer.New(0)
			f.Serialize(buf)
			assert.Equal(t, tc.wire, buf.Bytes())
			assert.Equal(t, tc.kind.Size(), buf.ReadableBytes())

			decoded := NewScalarField(tc.kind, "value")
			require.NoError(t, decoded.Deserialize(buf))
			assert.Equal(t, tc.value, decoded.Value())
			assert.False(t, decoded.IsArray())
		})
	}
}

func TestScalarField_RejectsOtherTypes(t *testing.T) {
	f := NewScalarField(KindInt32, "count")
	require.NoError(t, f.SetValue(int32(7)))

	err := f.SetValue(int64(8))
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "field count: expected int32, got int64")
	assert.Equal(t, int32(7), f.Value())
}

func TestScalarField_TypedAccessors(t *testing.T) {
	f := NewScalarField(KindFloat64, "x").(*ScalarField[float64])
	f.Set(2.5)
	assert.Equal(t, 2.5, f.Get())
	assert.Equal(t, "float64 x\n", f.Signature())
}

func TestScalarField_PanicsOnNonScalarKind(t *testing.T) {
	assert.Panics(t, func() { NewScalarField(KindString, "s") })
	assert.Panics(t, func() { NewListField(KindMessage, "m", -1) })
}

func TestListField_FixedSize(t *testing.T) {
	f := NewListField(KindUint16, "rgb", 3)
	assert.Equal(t, []uint16{0, 0, 0}, f.Value())
	assert.True(t, f.IsArray())

	err := f.SetValue([]uint16{1, 2})
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "expected 3 elements, got 2")

	require.NoError(t, f.SetValue([]uint16{1, 2, 3}))
	buf := buffer.New(0)
	f.Serialize(buf)
	assert.Equal(t, []byte{1, 0, 2, 0, 3, 0}, buf.Bytes())
}

func TestListField_ValueIsCopied(t *testing.T) {
	f := NewListField(KindInt32, "values", -1)
	in := []int32{1, 2, 3}
	require.NoError(t, f.SetValue(in))

	in[0] = 100
	out := f.Value().([]int32)
	out[1] = 200

	assert.Equal(t, []int32{1, 2, 3}, f.Value())
}

func TestListField_RejectsImpossibleCount(t *testing.T) {
	buf := buffer.New(0)
	buf.WriteInt32(math.MaxInt32)
	buf.WriteInt64(0)

	f := NewListField(KindFloat64, "samples", -1)
	assert.ErrorIs(t, f.Deserialize(buf), buffer.ErrTruncated)

	buf = buffer.New(0)
	buf.WriteInt32(-1)
	assert.ErrorIs(t, f.Deserialize(buf), ErrMalformed)
}

func TestStringField_Wire(t *testing.T) {
	f := NewStringField("frame_id")
	require.NoError(t, f.SetValue("map"))

	buf := buffer.New(0)
	f.Serialize(buf)
	assert.Equal(t, []byte{3, 0, 0, 0, 'm', 'a', 'p'}, buf.Bytes())
	assert.Equal(t, "string frame_id\n", f.Signature())

	err := f.SetValue(string([]byte{0xFF, 0xFE}))
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Equal(t, "map", f.Get())
}

func TestStringField_DecodedValueOwnsStorage(t *testing.T) {
	data := []byte{2, 0, 0, 0, 'o', 'k'}
	f := NewStringField("status")
	require.NoError(t, f.Deserialize(buffer.Wrap(data)))

	data[4] = 'n'
	assert.Equal(t, "ok", f.Get())
}

func TestStringField_DecodeRejectsInvalidUTF8(t *testing.T) {
	f := NewStringField("status")
	require.NoError(t, f.SetValue("ok"))

	err := f.Deserialize(buffer.Wrap([]byte{2, 0, 0, 0, 0xFF, 0xFE}))
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "status")
	assert.Equal(t, "ok", f.Get())
}

func TestExchange(t *testing.T) {
	testCases := []struct {
		name string
		a, b Field
		x, y any
	}{
		{"scalar", NewScalarField(KindInt16, "v"), NewScalarField(KindInt16, "v"), int16(1), int16(2)},
		{"string", NewStringField("s"), NewStringField("s"), "left", "right"},
		{"list", NewListField(KindUint8, "l", -1), NewListField(KindUint8, "l", -1), []uint8{1}, []uint8{2, 3}},
		{"bytes", NewByteSequenceField(KindUint8, "b", 2), NewByteSequenceField(KindUint8, "b", 2), buffer.Wrap([]byte{1, 2}), buffer.Wrap([]byte{3, 4})},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.NoError(t, tc.a.SetValue(tc.x))
			require.NoError(t, tc.b.SetValue(tc.y))
			wantA, wantB := tc.b.Hash(), tc.a.Hash()

			require.NoError(t, Exchange(tc.a, tc.b))
			assert.Equal(t, wantA, tc.a.Hash())
			assert.Equal(t, wantB, tc.b.Hash())
		})
	}
}

func TestExchange_RejectsDifferentShapes(t *testing.T) {
	testCases := []struct {
		name string
		a, b Field
	}{
		{"kind", NewScalarField(KindInt16, "v"), NewScalarField(KindInt32, "v")},
		{"name", NewStringField("a"), NewStringField("b")},
		{"size", NewListField(KindUint8, "l", 2), NewListField(KindUint8, "l", 3)},
		{"variant", NewByteSequenceField(KindUint8, "b", -1), NewScalarField(KindUint8, "b")},
		{"nil", NewStringField("a"), nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, Exchange(tc.a, tc.b), ErrInvalidValue)
		})
	}
}

func TestKind_ParseAndJSON(t *testing.T) {
	for k := KindBool; k <= KindMessage; k++ {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		data, err := json.Marshal(k)
		require.NoError(t, err)

		var decoded Kind
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, k, decoded)
	}

	_, err := ParseKind("complex128")
	assert.Error(t, err)
	assert.Equal(t, "unknown", Kind(200).String())
	assert.True(t, KindFloat64.IsScalar())
	assert.False(t, KindString.IsScalar())
	assert.Equal(t, -1, KindString.Size())
}
