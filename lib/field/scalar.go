package field

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
)

// Scalar is the set of Go types backing the fixed width kinds
type Scalar interface {
	bool | int8 | uint8 | int16 | uint16 | int32 | uint32 | int64 | uint64 | float32 | float64
}

// --------------------------------------------------------------------------
// Scalar Codecs
// --------------------------------------------------------------------------

// scalarCodec reads and writes one scalar value in the buffer's byte order
type scalarCodec[T Scalar] struct {
	write func(*buffer.Buffer, T)
	read  func(*buffer.Buffer) (T, error)
}

// scalarFactory builds the fields backed by one scalar codec
type scalarFactory interface {
	newScalar(kind Kind, name string) Field
	newList(kind Kind, name string, size int) Field
}

var scalarCodecs = map[Kind]scalarFactory{
	KindBool:    scalarCodec[bool]{(*buffer.Buffer).WriteBool, (*buffer.Buffer).ReadBool},
	KindInt8:    scalarCodec[int8]{(*buffer.Buffer).WriteInt8, (*buffer.Buffer).ReadInt8},
	KindUint8:   scalarCodec[uint8]{(*buffer.Buffer).WriteUint8, (*buffer.Buffer).ReadUint8},
	KindInt16:   scalarCodec[int16]{(*buffer.Buffer).WriteInt16, (*buffer.Buffer).ReadInt16},
	KindUint16:  scalarCodec[uint16]{(*buffer.Buffer).WriteUint16, (*buffer.Buffer).ReadUint16},
	KindInt32:   scalarCodec[int32]{(*buffer.Buffer).WriteInt32, (*buffer.Buffer).ReadInt32},
	KindUint32:  scalarCodec[uint32]{(*buffer.Buffer).WriteUint32, (*buffer.Buffer).ReadUint32},
	KindInt64:   scalarCodec[int64]{(*buffer.Buffer).WriteInt64, (*buffer.Buffer).ReadInt64},
	KindUint64:  scalarCodec[uint64]{(*buffer.Buffer).WriteUint64, (*buffer.Buffer).ReadUint64},
	KindFloat32: scalarCodec[float32]{(*buffer.Buffer).WriteFloat32, (*buffer.Buffer).ReadFloat32},
	KindFloat64: scalarCodec[float64]{(*buffer.Buffer).WriteFloat64, (*buffer.Buffer).ReadFloat64},
}

func (c scalarCodec[T]) newScalar(kind Kind, name string) Field {
	return &ScalarField[T]{
		header: header{kind: kind, name: name},
		codec:  c,
	}
}

func (c scalarCodec[T]) newList(kind Kind, name string, size int) Field {
	// a fixed array starts out as size zero values
	return &ListField[T]{
		header: header{kind: kind, name: name, isArray: true},
		size:   size,
		value:  make([]T, max(size, 0)),
		codec:  c,
	}
}

// bytesOf encodes v little-endian, used for hashing
func (c scalarCodec[T]) bytesOf(v T) []byte {
	b := buffer.New(8)
	c.write(b, v)
	return b.Bytes()
}

// factoryFor returns the codec of a scalar kind. Non-scalar kinds are a programming error.
func factoryFor(kind Kind, name string) scalarFactory {
	c, ok := scalarCodecs[kind]
	if !ok {
		panic(fmt.Sprintf("field %s: kind %s is not a scalar", name, kind))
	}
	return c
}

// --------------------------------------------------------------------------
// ScalarField
// --------------------------------------------------------------------------

// ScalarField holds one fixed width value (bool, integer or float)
type ScalarField[T Scalar] struct {
	header
	value T
	codec scalarCodec[T]
}

// NewScalarField creates a field for a scalar kind holding the zero value.
// It panics if kind is not a scalar kind.
func NewScalarField(kind Kind, name string) Field {
	return factoryFor(kind, name).newScalar(kind, name)
}

// Get returns the current value
func (f *ScalarField[T]) Get() T {
	return f.value
}

// Set replaces the current value
func (f *ScalarField[T]) Set(v T) {
	f.value = v
}

func (f *ScalarField[T]) Value() any {
	return f.value
}

func (f *ScalarField[T]) SetValue(v any) error {
	t, ok := v.(T)
	if !ok {
		return f.invalid("expected %T, got %T", f.value, v)
	}
	f.value = t
	return nil
}

func (f *ScalarField[T]) Serialize(buf *buffer.Buffer) {
	f.codec.write(buf, f.value)
}

func (f *ScalarField[T]) Deserialize(buf *buffer.Buffer) error {
	v, err := f.codec.read(buf)
	if err != nil {
		return err
	}
	f.value = v
	return nil
}

func (f *ScalarField[T]) exchange(other Field) error {
	o, ok := other.(*ScalarField[T])
	if !ok {
		return f.invalid("cannot exchange with %s", other)
	}
	f.value, o.value = o.value, f.value
	return nil
}

func (f *ScalarField[T]) Equal(other Field) bool {
	o, ok := other.(*ScalarField[T])
	return ok && f.sameHeader(other) && f.value == o.value
}

func (f *ScalarField[T]) Hash() uint64 {
	d := f.digest()
	_, _ = d.Write(f.codec.bytesOf(f.value))
	return d.Sum64()
}

func (f *ScalarField[T]) String() string {
	return fmt.Sprintf("ScalarField<%s, %s>", f.kind, f.name)
}
