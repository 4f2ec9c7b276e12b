package testing

import (
	"testing"

	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/ValentinKolb/dMsg/lib/field"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// FieldFactory is a function that creates a new instance of a field implementation
type FieldFactory func() field.Field

// invalidValue is a value no field variant accepts
type invalidValue struct{}

// RunFieldTests runs the conformance suite for a field implementation. sample must be a
// value the field accepts and that differs from the field's initial value.
func RunFieldTests(t *testing.T, name string, factory FieldFactory, sample any) {
	t.Run(name, func(t *testing.T) {
		t.Run("RoundTrip", func(t *testing.T) {
			testRoundTrip(t, factory, sample)
		})

		t.Run("SignatureIgnoresValue", func(t *testing.T) {
			testSignatureIgnoresValue(t, factory, sample)
		})

		t.Run("RejectedValueKeepsPrior", func(t *testing.T) {
			testRejectedValueKeepsPrior(t, factory, sample)
		})

		t.Run("Truncated", func(t *testing.T) {
			testTruncated(t, factory, sample)
		})

		t.Run("SerializeIsReadOnly", func(t *testing.T) {
			testSerializeIsReadOnly(t, factory, sample)
		})

		t.Run("EqualAndHash", func(t *testing.T) {
			testEqualAndHash(t, factory, sample)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// withSample creates a field holding the sample value
func withSample(t *testing.T, factory FieldFactory, sample any) field.Field {
	t.Helper()
	f := factory()
	require.NoError(t, f.SetValue(sample), "sample value must be accepted")
	return f
}

func serialize(f field.Field) *buffer.Buffer {
	buf := buffer.New(0)
	f.Serialize(buf)
	return buf
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testRoundTrip(t *testing.T, factory FieldFactory, sample any) {
	original := withSample(t, factory, sample)
	buf := serialize(original)

	decoded := factory()
	require.NoError(t, decoded.Deserialize(buf))

	assert.Equal(t, 0, buf.ReadableBytes(), "deserialize must consume exactly the serialized bytes")
	assert.True(t, original.Equal(decoded), "round trip changed the value of %s", original)
	assert.Equal(t, original.Hash(), decoded.Hash())

	// decoding into a field that already holds a value replaces it
	buf = serialize(original)
	reused := withSample(t, factory, sample)
	require.NoError(t, reused.Deserialize(buf))
	assert.True(t, original.Equal(reused))
}

func testSignatureIgnoresValue(t *testing.T, factory FieldFactory, sample any) {
	empty := factory()
	filled := withSample(t, factory, sample)

	assert.Equal(t, empty.Signature(), filled.Signature())
	assert.Contains(t, filled.Signature(), filled.Name())
	assert.Regexp(t, `^\S+ \S+\n$`, filled.Signature())
}

func testRejectedValueKeepsPrior(t *testing.T, factory FieldFactory, sample any) {
	f := withSample(t, factory, sample)
	reference := withSample(t, factory, sample)

	err := f.SetValue(invalidValue{})
	assert.ErrorIs(t, err, field.ErrInvalidValue)
	assert.Contains(t, err.Error(), f.Name())

	assert.ErrorIs(t, f.SetValue(nil), field.ErrInvalidValue)
	assert.True(t, f.Equal(reference), "rejected value must not modify the field")
}

func testTruncated(t *testing.T, factory FieldFactory, sample any) {
	data := serialize(withSample(t, factory, sample)).Bytes()
	if len(data) == 0 {
		t.Skip("sample serializes to zero bytes")
	}

	for _, n := range []int{0, len(data) - 1} {
		f := factory()
		err := f.Deserialize(buffer.Wrap(data[:n]))
		assert.ErrorIs(t, err, buffer.ErrTruncated, "deserializing %d of %d bytes", n, len(data))
	}
}

func testSerializeIsReadOnly(t *testing.T, factory FieldFactory, sample any) {
	f := withSample(t, factory, sample)
	reference := withSample(t, factory, sample)

	first := serialize(f).Bytes()
	second := serialize(f).Bytes()

	assert.Equal(t, first, second)
	assert.True(t, f.Equal(reference))
}

func testEqualAndHash(t *testing.T, factory FieldFactory, sample any) {
	a := withSample(t, factory, sample)
	b := withSample(t, factory, sample)
	empty := factory()

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(empty), "sample must differ from the initial value")
	assert.False(t, a.Equal(nil))
}
