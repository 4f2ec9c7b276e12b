package field

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/pkg/errors"
	"slices"
)

// ListField holds an array of scalars, either with a fixed element count or with a
// count prefix on the wire.
//
// Wire format:
//   - variable length: [count int32][count elements]
//   - fixed length:    [size elements]
type ListField[T Scalar] struct {
	header
	size  int
	value []T
	codec scalarCodec[T]
}

// NewListField creates an array field of a scalar kind. A negative size selects variable
// length mode. It panics if kind is not a scalar kind.
func NewListField(kind Kind, name string, size int) Field {
	return factoryFor(kind, name).newList(kind, name, size)
}

// Size returns the declared element count, negative for variable length arrays
func (f *ListField[T]) Size() int {
	return f.size
}

// Get returns a copy of the elements
func (f *ListField[T]) Get() []T {
	return slices.Clone(f.value)
}

func (f *ListField[T]) Value() any {
	return f.Get()
}

func (f *ListField[T]) SetValue(v any) error {
	values, ok := v.([]T)
	if !ok {
		return f.invalid("expected %T, got %T", f.value, v)
	}
	if f.size >= 0 && len(values) != f.size {
		return f.invalid("expected %d elements, got %d", f.size, len(values))
	}
	f.value = slices.Clone(values)
	return nil
}

func (f *ListField[T]) Serialize(buf *buffer.Buffer) {
	if f.size < 0 {
		buf.WriteInt32(int32(len(f.value)))
	}
	for _, v := range f.value {
		f.codec.write(buf, v)
	}
}

func (f *ListField[T]) Deserialize(buf *buffer.Buffer) error {
	n := f.size
	if n < 0 {
		var err error
		if n, err = f.readLength(buf); err != nil {
			return err
		}
	}

	// reject before allocating for a count the input cannot hold
	if width := f.kind.Size(); n*width > buf.ReadableBytes() {
		return errors.Wrapf(buffer.ErrTruncated, "field %s: %d elements need %d bytes, %d readable", f.name, n, n*width, buf.ReadableBytes())
	}

	values := make([]T, n)
	for i := range values {
		v, err := f.codec.read(buf)
		if err != nil {
			return err
		}
		values[i] = v
	}
	f.value = values
	return nil
}

func (f *ListField[T]) exchange(other Field) error {
	o, ok := other.(*ListField[T])
	if !ok || f.size != o.size {
		return f.invalid("cannot exchange with %s", other)
	}
	f.value, o.value = o.value, f.value
	return nil
}

func (f *ListField[T]) Equal(other Field) bool {
	o, ok := other.(*ListField[T])
	return ok && f.sameHeader(other) && slices.Equal(f.value, o.value)
}

func (f *ListField[T]) Hash() uint64 {
	d := f.digest()
	for _, v := range f.value {
		_, _ = d.Write(f.codec.bytesOf(v))
	}
	return d.Sum64()
}

func (f *ListField[T]) String() string {
	return fmt.Sprintf("ListField<%s[], %s>", f.kind, f.name)
}
