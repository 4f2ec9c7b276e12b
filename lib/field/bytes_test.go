package field

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteSequenceField_RoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		value []byte
	}{
		{name: "empty", value: []byte{}},
		{name: "single byte", value: []byte{0x7F}},
		{name: "binary data", value: []byte{0x00, 0x01, 0xFE, 0xFF}},
		{name: "large value", value: bytes.Repeat([]byte("v"), 10240)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewByteSequenceField(KindUint8, "data", -1)
			require.NoError(t, f.SetValue(buffer.Wrap(tc.value)))

			buf := buffer.New(0)
			f.Serialize(buf)
			assert.Equal(t, 4+len(tc.value), buf.ReadableBytes())

			decoded := NewByteSequenceField(KindUint8, "data", -1)
			require.NoError(t, decoded.Deserialize(buf))

			assert.Equal(t, tc.value, decoded.Buffer().Bytes())
			assert.True(t, f.Equal(decoded))
		})
	}
}

func TestByteSequenceField_EmptyVariableWire(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "data", -1)

	buf := buffer.New(0)
	f.Serialize(buf)
	assert.Equal(t, []byte{0, 0, 0, 0}, buf.Bytes())

	decoded := NewByteSequenceField(KindUint8, "data", -1)
	require.NoError(t, decoded.Deserialize(buf))
	assert.Equal(t, 0, decoded.Buffer().ReadableBytes())
}

func TestByteSequenceField_WireFormat(t *testing.T) {
	variable := NewByteSequenceField(KindUint8, "data", -1)
	require.NoError(t, variable.SetValue(buffer.Wrap([]byte{0xAA, 0xBB, 0xCC})))

	buf := buffer.New(0)
	variable.Serialize(buf)
	assert.Equal(t, []byte{0x03, 0x00, 0x00, 0x00, 0xAA, 0xBB, 0xCC}, buf.Bytes())

	fixed := NewByteSequenceField(KindUint8, "data", 3)
	require.NoError(t, fixed.SetValue(buffer.Wrap([]byte{0xAA, 0xBB, 0xCC})))

	buf = buffer.New(0)
	fixed.Serialize(buf)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, buf.Bytes())
}

func TestByteSequenceField_LengthPrefixUsesBufferOrder(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "data", -1)
	require.NoError(t, f.SetValue(buffer.Wrap([]byte{1, 2})))

	buf := buffer.New(0).WithOrder(binary.BigEndian)
	f.Serialize(buf)
	assert.Equal(t, []byte{0, 0, 0, 2, 1, 2}, buf.Bytes())
}

func TestByteSequenceField_FixedLengthRejection(t *testing.T) {
	for k := 0; k <= 8; k++ {
		t.Run(fmt.Sprintf("size=%d", k), func(t *testing.T) {
			f := NewByteSequenceField(KindUint8, "digest", k)
			prior := bytes.Repeat([]byte{0x11}, k)
			require.NoError(t, f.SetValue(buffer.Wrap(prior)))

			for _, n := range []int{k - 1, k + 1, k + 5} {
				if n < 0 {
					continue
				}
				err := f.SetValue(buffer.Wrap(make([]byte, n)))
				assert.ErrorIs(t, err, ErrInvalidValue)
				assert.Contains(t, err.Error(), "digest")
				assert.Contains(t, err.Error(), fmt.Sprintf("expected %d bytes, got %d", k, n))
			}

			assert.Equal(t, prior, f.Buffer().Bytes())
		})
	}
}

func TestByteSequenceField_ByteOrderRejection(t *testing.T) {
	for _, size := range []int{-1, 0, 2} {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			f := NewByteSequenceField(KindUint8, "data", size)
			length := max(size, 0)

			big := buffer.Wrap(make([]byte, length)).WithOrder(binary.BigEndian)
			err := f.SetValue(big)
			assert.ErrorIs(t, err, ErrInvalidValue)
			assert.Contains(t, err.Error(), "little-endian")
			assert.Equal(t, 0, f.Buffer().ReadableBytes())
		})
	}
}

func TestByteSequenceField_FixedZeroSize(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "nothing", 0)

	buf := buffer.Wrap([]byte{1, 2, 3})
	require.NoError(t, f.Deserialize(buf))
	assert.Equal(t, 3, buf.ReadableBytes())

	out := buffer.New(0)
	f.Serialize(out)
	assert.Equal(t, 0, out.ReadableBytes())
}

func TestByteSequenceField_ValueIsDefensiveView(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "data", -1)
	require.NoError(t, f.SetValue(buffer.Wrap([]byte("abcdef"))))

	view := f.Value().(*buffer.Buffer)
	_, err := view.ReadBytes(4)
	require.NoError(t, err)
	assert.Equal(t, 2, view.ReadableBytes())

	// consuming the returned view does not move the field's cursor
	assert.Equal(t, "abcdef", string(f.Buffer().Bytes()))

	out := buffer.New(0)
	f.Serialize(out)
	assert.Equal(t, "\x06\x00\x00\x00abcdef", string(out.Bytes()))
}

func TestByteSequenceField_SetValueDetachesCallerCursor(t *testing.T) {
	src := buffer.New(0)
	src.WriteBytes([]byte("xxpayload"))
	_, err := src.ReadBytes(2)
	require.NoError(t, err)

	f := NewByteSequenceField(KindUint8, "data", 7)
	require.NoError(t, f.SetValue(src))

	// moving the caller's cursor afterwards does not affect the field
	_, err = src.ReadBytes(3)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(f.Buffer().Bytes()))
}

func TestByteSequenceField_DeserializeIsZeroCopy(t *testing.T) {
	data := []byte{2, 0, 0, 0, 'h', 'i', 0xFF}
	f := NewByteSequenceField(KindUint8, "data", -1)

	buf := buffer.Wrap(data)
	require.NoError(t, f.Deserialize(buf))
	assert.Equal(t, 1, buf.ReadableBytes())

	data[4] = 'H'
	assert.Equal(t, "Hi", string(f.Buffer().Bytes()))
}

func TestByteSequenceField_Malformed(t *testing.T) {
	buf := buffer.New(0)
	buf.WriteInt32(-5)

	f := NewByteSequenceField(KindUint8, "data", -1)
	err := f.Deserialize(buf)
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "data")
}

func TestByteSequenceField_SetValueWrongType(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "data", -1)
	err := f.SetValue([]byte("raw"))
	assert.ErrorIs(t, err, ErrInvalidValue)
	assert.Contains(t, err.Error(), "[]uint8")
}

func TestByteSequenceField_Signature(t *testing.T) {
	f := NewByteSequenceField(KindUint8, "data", -1)
	before := f.Signature()
	require.NoError(t, f.SetValue(buffer.Wrap([]byte{1, 2, 3})))

	assert.Equal(t, "uint8 data\n", before)
	assert.Equal(t, before, f.Signature())
	assert.Equal(t, "int8 data\n", NewByteSequenceField(KindInt8, "data", 16).Signature())
}
