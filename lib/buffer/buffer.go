package buffer

import (
	"encoding/binary"
	"fmt"
	"github.com/pkg/errors"
	"math"
)

// DefaultCapacity is the initial capacity of buffers created without an explicit capacity
const DefaultCapacity = 256

// ErrTruncated is returned when a read needs more bytes than the buffer has readable
var ErrTruncated = errors.New("truncated input")

// --------------------------------------------------------------------------
// Buffer Structure
// --------------------------------------------------------------------------

// Buffer is a growable byte sequence with a read cursor and a write cursor.
// The write cursor always equals len(data): writes append, reads consume from readerIndex.
type Buffer struct {
	data         []byte
	readerIndex  int
	markedReader int
	order        binary.ByteOrder
}

// New creates an empty little-endian buffer with the given initial capacity
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data:  make([]byte, 0, capacity),
		order: binary.LittleEndian,
	}
}

// Wrap creates a little-endian buffer whose readable bytes are p. The buffer shares p's
// storage, no copy is made.
func Wrap(p []byte) *Buffer {
	return &Buffer{
		data:  p[:len(p):len(p)],
		order: binary.LittleEndian,
	}
}

// --------------------------------------------------------------------------
// Cursor and State Methods
// --------------------------------------------------------------------------

// Order returns the byte order used for multi-byte integers
func (b *Buffer) Order() binary.ByteOrder {
	return b.order
}

// IsLittleEndian reports whether the byte order of the buffer writes the least
// significant byte first. binary.NativeEndian qualifies on little-endian hosts.
func (b *Buffer) IsLittleEndian() bool {
	var p [2]byte
	b.order.PutUint16(p[:], 1)
	return p[0] == 1
}

// WithOrder returns a duplicate view of the buffer that uses the given byte order
func (b *Buffer) WithOrder(order binary.ByteOrder) *Buffer {
	d := b.Duplicate()
	d.order = order
	return d
}

// ReadableBytes returns the number of bytes between the read and the write cursor
func (b *Buffer) ReadableBytes() int {
	return len(b.data) - b.readerIndex
}

// ReaderIndex returns the position of the read cursor
func (b *Buffer) ReaderIndex() int {
	return b.readerIndex
}

// WriterIndex returns the position of the write cursor
func (b *Buffer) WriterIndex() int {
	return len(b.data)
}

// Cap returns the capacity of the backing storage
func (b *Buffer) Cap() int {
	return cap(b.data)
}

// MarkReaderIndex remembers the current read cursor
func (b *Buffer) MarkReaderIndex() {
	b.markedReader = b.readerIndex
}

// ResetReaderIndex moves the read cursor back to the last mark
func (b *Buffer) ResetReaderIndex() {
	b.readerIndex = b.markedReader
}

// Bytes returns the readable bytes without copying them.
// The returned slice aliases the buffer's storage.
func (b *Buffer) Bytes() []byte {
	return b.data[b.readerIndex:]
}

// Duplicate returns a view sharing the backing storage with independent cursors and marks.
// The view's capacity is capped at its length, so writing to it reallocates instead of
// overwriting the source buffer.
func (b *Buffer) Duplicate() *Buffer {
	return &Buffer{
		data:         b.data[:len(b.data):len(b.data)],
		readerIndex:  b.readerIndex,
		markedReader: b.markedReader,
		order:        b.order,
	}
}

// Copy returns a buffer holding a private copy of the readable bytes
func (b *Buffer) Copy() *Buffer {
	p := make([]byte, b.ReadableBytes())
	copy(p, b.Bytes())
	c := Wrap(p)
	c.order = b.order
	return c
}

// Reset empties the buffer, zeroes its previous content and restores the default byte order
func (b *Buffer) Reset() {
	clear(b.data)
	b.data = b.data[:0]
	b.readerIndex = 0
	b.markedReader = 0
	b.order = binary.LittleEndian
}

// String implements fmt.Stringer
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(ridx: %d, widx: %d, cap: %d)", b.readerIndex, len(b.data), cap(b.data))
}

// --------------------------------------------------------------------------
// Write Methods
// --------------------------------------------------------------------------

// grow extends the buffer by n bytes and returns the newly writable region
func (b *Buffer) grow(n int) []byte {
	l := len(b.data)
	if l+n > cap(b.data) {
		newCap := 2 * cap(b.data)
		if newCap < l+n {
			newCap = l + n
		}
		data := make([]byte, l, newCap)
		copy(data, b.data)
		b.data = data
	}
	b.data = b.data[:l+n]
	return b.data[l:]
}

func (b *Buffer) WriteBool(v bool) {
	if v {
		b.WriteUint8(1)
	} else {
		b.WriteUint8(0)
	}
}

func (b *Buffer) WriteInt8(v int8) {
	b.grow(1)[0] = byte(v)
}

func (b *Buffer) WriteUint8(v uint8) {
	b.grow(1)[0] = v
}

func (b *Buffer) WriteInt16(v int16) {
	b.order.PutUint16(b.grow(2), uint16(v))
}

func (b *Buffer) WriteUint16(v uint16) {
	b.order.PutUint16(b.grow(2), v)
}

func (b *Buffer) WriteInt32(v int32) {
	b.order.PutUint32(b.grow(4), uint32(v))
}

func (b *Buffer) WriteUint32(v uint32) {
	b.order.PutUint32(b.grow(4), v)
}

func (b *Buffer) WriteInt64(v int64) {
	b.order.PutUint64(b.grow(8), uint64(v))
}

func (b *Buffer) WriteUint64(v uint64) {
	b.order.PutUint64(b.grow(8), v)
}

func (b *Buffer) WriteFloat32(v float32) {
	b.order.PutUint32(b.grow(4), math.Float32bits(v))
}

func (b *Buffer) WriteFloat64(v float64) {
	b.order.PutUint64(b.grow(8), math.Float64bits(v))
}

// WriteBytes appends p verbatim
func (b *Buffer) WriteBytes(p []byte) {
	copy(b.grow(len(p)), p)
}

// WriteFrom appends length bytes of src starting at the absolute offset index.
// The cursors and marks of src are not touched.
func (b *Buffer) WriteFrom(src *Buffer, index, length int) {
	b.WriteBytes(src.data[index : index+length])
}

// --------------------------------------------------------------------------
// Read Methods
// --------------------------------------------------------------------------

// next consumes n readable bytes and returns them
func (b *Buffer) next(n int) ([]byte, error) {
	if n < 0 || n > b.ReadableBytes() {
		return nil, errors.Wrapf(ErrTruncated, "need %d bytes, %d readable", n, b.ReadableBytes())
	}
	p := b.data[b.readerIndex : b.readerIndex+n]
	b.readerIndex += n
	return p, nil
}

func (b *Buffer) ReadBool() (bool, error) {
	v, err := b.ReadUint8()
	return v != 0, err
}

func (b *Buffer) ReadInt8() (int8, error) {
	v, err := b.ReadUint8()
	return int8(v), err
}

func (b *Buffer) ReadUint8() (uint8, error) {
	p, err := b.next(1)
	if err != nil {
		return 0, err
	}
	return p[0], nil
}

func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return b.order.Uint16(p), nil
}

func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return b.order.Uint32(p), nil
}

func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return b.order.Uint64(p), nil
}

func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	return math.Float32frombits(v), err
}

func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	return math.Float64frombits(v), err
}

// ReadSlice consumes n bytes and returns them as a zero-copy view with the same byte order.
// The view stays valid only as long as the backing storage of b is not reused.
func (b *Buffer) ReadSlice(n int) (*Buffer, error) {
	p, err := b.next(n)
	if err != nil {
		return nil, err
	}
	return &Buffer{
		data:  p[:n:n],
		order: b.order,
	}, nil
}

// ReadBytes consumes n bytes and returns a private copy of them
func (b *Buffer) ReadBytes(n int) ([]byte, error) {
	p, err := b.next(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}
