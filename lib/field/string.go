package field

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/pkg/errors"
	"unicode/utf8"
)

// StringField holds a UTF-8 string.
//
// Wire format: [length int32][length bytes]
type StringField struct {
	header
	value string
}

// NewStringField creates a string field holding the empty string
func NewStringField(name string) *StringField {
	return &StringField{header: header{kind: KindString, name: name}}
}

// Get returns the current value
func (f *StringField) Get() string {
	return f.value
}

func (f *StringField) Value() any {
	return f.value
}

func (f *StringField) SetValue(v any) error {
	s, ok := v.(string)
	if !ok {
		return f.invalid("expected string, got %T", v)
	}
	if !utf8.ValidString(s) {
		return f.invalid("expected UTF-8 text, got %q", s)
	}
	f.value = s
	return nil
}

func (f *StringField) Serialize(buf *buffer.Buffer) {
	buf.WriteInt32(int32(len(f.value)))
	buf.WriteBytes([]byte(f.value))
}

func (f *StringField) Deserialize(buf *buffer.Buffer) error {
	n, err := f.readLength(buf)
	if err != nil {
		return err
	}
	p, err := buf.ReadSlice(n)
	if err != nil {
		return err
	}
	if !utf8.Valid(p.Bytes()) {
		return errors.Wrapf(ErrMalformed, "field %s: %d bytes are not UTF-8 text", f.name, n)
	}
	f.value = string(p.Bytes())
	return nil
}

func (f *StringField) exchange(other Field) error {
	o, ok := other.(*StringField)
	if !ok {
		return f.invalid("cannot exchange with %s", other)
	}
	f.value, o.value = o.value, f.value
	return nil
}

func (f *StringField) Equal(other Field) bool {
	o, ok := other.(*StringField)
	return ok && f.sameHeader(other) && f.value == o.value
}

func (f *StringField) Hash() uint64 {
	d := f.digest()
	_, _ = d.WriteString(f.value)
	return d.Sum64()
}

func (f *StringField) String() string {
	return fmt.Sprintf("StringField<%s>", f.name)
}
