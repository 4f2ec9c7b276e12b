package field

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
)

// Nested is a message embedded as the value of a MessageField
type Nested interface {
	// TypeName returns the message type, the empty string for a nil message
	TypeName() string

	Serialize(buf *buffer.Buffer)

	// Deserialize decodes in place and leaves the message unchanged on failure
	Deserialize(buf *buffer.Buffer) error

	// Exchange swaps all values with other, a message of the same type
	Exchange(other Nested) error

	Equal(other Nested) bool
	Hash() uint64
}

// NestedFactory creates an empty nested message
type NestedFactory func() Nested

// MessageField holds a nested message. On the wire the nested message is its fields in
// declaration order, without any framing.
type MessageField struct {
	header
	typeName string
	value    Nested
}

// NewMessageField creates a field for a nested message of the given type. The initial
// value is a fresh message from factory.
func NewMessageField(typeName, name string, factory NestedFactory) *MessageField {
	return &MessageField{
		header:   header{kind: KindMessage, name: name},
		typeName: typeName,
		value:    factory(),
	}
}

// TypeName returns the declared type of the nested message
func (f *MessageField) TypeName() string {
	return f.typeName
}

// Signature uses the nested type name in place of the kind
func (f *MessageField) Signature() string {
	return fmt.Sprintf("%s %s\n", f.typeName, f.name)
}

func (f *MessageField) Value() any {
	return f.value
}

// SetValue accepts a non-nil message of the declared type. The field takes ownership of it.
func (f *MessageField) SetValue(v any) error {
	n, ok := v.(Nested)
	if !ok || n == nil {
		return f.invalid("expected %s message, got %T", f.typeName, v)
	}
	if name := n.TypeName(); name != f.typeName {
		if name == "" {
			return f.invalid("expected %s message, got nil %T", f.typeName, v)
		}
		return f.invalid("expected %s message, got %s", f.typeName, name)
	}
	f.value = n
	return nil
}

func (f *MessageField) Serialize(buf *buffer.Buffer) {
	f.value.Serialize(buf)
}

func (f *MessageField) Deserialize(buf *buffer.Buffer) error {
	return f.value.Deserialize(buf)
}

func (f *MessageField) exchange(other Field) error {
	o, ok := other.(*MessageField)
	if !ok || f.typeName != o.typeName {
		return f.invalid("cannot exchange with %s", other)
	}
	return f.value.Exchange(o.value)
}

func (f *MessageField) Equal(other Field) bool {
	o, ok := other.(*MessageField)
	return ok && f.sameHeader(other) && f.typeName == o.typeName && f.value.Equal(o.value)
}

func (f *MessageField) Hash() uint64 {
	d := f.digest()
	_, _ = d.WriteString(f.typeName)
	writeUint64(d, f.value.Hash())
	return d.Sum64()
}

func (f *MessageField) String() string {
	return fmt.Sprintf("MessageField<%s, %s>", f.typeName, f.name)
}
