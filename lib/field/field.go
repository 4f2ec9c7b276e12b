package field

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrInvalidValue is returned by SetValue when a value violates the declared shape of a field
	ErrInvalidValue = errors.New("invalid value")

	// ErrMalformed is returned by Deserialize when the input contains an impossible length
	ErrMalformed = errors.New("malformed input")
)

// --------------------------------------------------------------------------
// Field Interface
// --------------------------------------------------------------------------

// Field is a single named and typed unit of a message that can serialize itself.
//
// A field owns exactly one value. Fields are not safe for concurrent mutation.
type Field interface {
	// Kind returns the wire type of the field
	Kind() Kind

	// Name returns the declared name of the field
	Name() string

	// IsArray reports whether the field holds a repeated value
	IsArray() bool

	// Serialize writes the current value at the write cursor of buf.
	// The field itself is not modified.
	Serialize(buf *buffer.Buffer)

	// Deserialize reads a value starting at the read cursor of buf and replaces the
	// current value. It fails if buf has fewer readable bytes than required.
	Deserialize(buf *buffer.Buffer) error

	// Value returns the current value
	Value() any

	// SetValue validates v against the declared shape and replaces the current value.
	// On failure the current value is left unchanged.
	SetValue(v any) error

	// Signature returns the contribution of the field to the schema fingerprint of the
	// enclosing message. It depends only on the declared shape, never on the value.
	Signature() string

	// Equal reports whether other has the same kind, name and value
	Equal(other Field) bool

	// Hash returns a hash over kind, name and value, consistent with Equal
	Hash() uint64

	String() string
}

// exchanger is implemented by every field variant of this package
type exchanger interface {
	Field
	sameHeader(other Field) bool
	exchange(other Field) error
}

// Exchange swaps the values of two fields of the same declared shape. Both fields keep
// their identity, only the values move between them.
func Exchange(a, b Field) error {
	x, ok := a.(exchanger)
	if !ok || b == nil || !x.sameHeader(b) {
		return errors.Wrapf(ErrInvalidValue, "cannot exchange values of %v and %v", a, b)
	}
	return x.exchange(b)
}

// --------------------------------------------------------------------------
// Shared Field Header
// --------------------------------------------------------------------------

// header holds the declared properties every field variant shares
type header struct {
	kind    Kind
	name    string
	isArray bool
}

func (h *header) Kind() Kind {
	return h.kind
}

func (h *header) Name() string {
	return h.name
}

func (h *header) IsArray() bool {
	return h.isArray
}

func (h *header) Signature() string {
	return fmt.Sprintf("%s %s\n", h.kind, h.name)
}

func (h *header) sameHeader(other Field) bool {
	return other != nil && h.kind == other.Kind() && h.name == other.Name() && h.isArray == other.IsArray()
}

// digest starts a hash over the header, the caller adds the value
func (h *header) digest() *xxhash.Digest {
	d := xxhash.New()
	_, _ = d.Write([]byte{byte(h.kind)})
	_, _ = d.WriteString(h.name)
	if h.isArray {
		_, _ = d.Write([]byte{1})
	}
	return d
}

// invalid builds the error returned by SetValue, naming the field with expected and actual shape
func (h *header) invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidValue, "field %s: "+format, append([]interface{}{h.name}, args...)...)
}

// readLength reads a 4 byte length prefix and rejects negative values
func (h *header) readLength(buf *buffer.Buffer) (int, error) {
	n, err := buf.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.Wrapf(ErrMalformed, "field %s: negative length prefix %d", h.name, n)
	}
	return int(n), nil
}

// writeUint64 adds v to a hash digest in a fixed byte order
func writeUint64(d *xxhash.Digest, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, _ = d.Write(b[:])
}
