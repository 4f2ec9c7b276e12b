package field

import (
	"bytes"
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
)

// ByteSequenceField holds a raw byte sequence, either with a fixed length or with a
// length prefix on the wire.
//
// Wire format:
//   - variable length: [length int32][length bytes]
//   - fixed length:    [size bytes]
type ByteSequenceField struct {
	header
	size  int
	value *buffer.Buffer
}

// NewByteSequenceField creates a byte sequence field. A negative size selects variable length
// mode, a non-negative size selects fixed length mode with exactly that many bytes.
// The initial value is empty.
func NewByteSequenceField(kind Kind, name string, size int) *ByteSequenceField {
	return &ByteSequenceField{
		header: header{kind: kind, name: name},
		size:   size,
		value:  buffer.New(0),
	}
}

// Size returns the declared size, negative for variable length fields
func (f *ByteSequenceField) Size() int {
	return f.size
}

// IsVariable reports whether the field is length-prefixed on the wire
func (f *ByteSequenceField) IsVariable() bool {
	return f.size < 0
}

// Buffer returns a duplicate view of the value. The view shares the backing storage but has
// its own cursors, so reading from it does not disturb the field.
func (f *ByteSequenceField) Buffer() *buffer.Buffer {
	return f.value.Duplicate()
}

// SetBuffer replaces the value with the readable bytes of v.
// It fails unless v is little-endian and, for fixed length fields, holds exactly Size bytes.
func (f *ByteSequenceField) SetBuffer(v *buffer.Buffer) error {
	if v == nil {
		return f.invalid("expected buffer, got nil")
	}
	if !v.IsLittleEndian() {
		return f.invalid("expected little-endian buffer, got %s", v.Order())
	}
	if f.size >= 0 && v.ReadableBytes() != f.size {
		return f.invalid("expected %d bytes, got %d", f.size, v.ReadableBytes())
	}
	// keep a view whose readable bytes start at offset 0, detached from the caller's cursors
	f.value = buffer.Wrap(v.Bytes())
	return nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see field.Field)
// --------------------------------------------------------------------------

func (f *ByteSequenceField) Value() any {
	return f.Buffer()
}

func (f *ByteSequenceField) SetValue(v any) error {
	b, ok := v.(*buffer.Buffer)
	if !ok {
		return f.invalid("expected *buffer.Buffer, got %T", v)
	}
	return f.SetBuffer(b)
}

func (f *ByteSequenceField) Serialize(buf *buffer.Buffer) {
	n := f.value.ReadableBytes()
	if f.size < 0 {
		buf.WriteInt32(int32(n))
	}
	// explicit offset and length leave the value's cursors and marks untouched
	buf.WriteFrom(f.value, 0, n)
}

func (f *ByteSequenceField) Deserialize(buf *buffer.Buffer) error {
	n := f.size
	if n < 0 {
		var err error
		if n, err = f.readLength(buf); err != nil {
			return err
		}
	}
	view, err := buf.ReadSlice(n)
	if err != nil {
		return err
	}
	f.value = view
	return nil
}

func (f *ByteSequenceField) exchange(other Field) error {
	o, ok := other.(*ByteSequenceField)
	if !ok || f.size != o.size {
		return f.invalid("cannot exchange with %s", other)
	}
	f.value, o.value = o.value, f.value
	return nil
}

func (f *ByteSequenceField) Equal(other Field) bool {
	o, ok := other.(*ByteSequenceField)
	if !ok || !f.sameHeader(other) {
		return false
	}
	return bytes.Equal(f.value.Bytes(), o.value.Bytes())
}

func (f *ByteSequenceField) Hash() uint64 {
	d := f.digest()
	_, _ = d.Write(f.value.Bytes())
	return d.Sum64()
}

func (f *ByteSequenceField) String() string {
	return fmt.Sprintf("ByteSequenceField<%s, %s>", f.kind, f.name)
}
