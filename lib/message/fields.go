package message

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/ValentinKolb/dMsg/lib/field"
	"github.com/cespare/xxhash/v2"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"strings"
)

var mlog = logger.GetLogger("message")

// ErrUnknownField is returned when a field is accessed by a name the schema does not declare
var ErrUnknownField = errors.New("unknown field")

// Fields is the ordered set of fields of one message instance.
//
// The sequence is fixed at construction: it has one field per declared name, in
// declaration order, and never grows, shrinks or reorders. The values of the fields
// are mutable. A Fields instance must be confined to one goroutine at a time.
type Fields struct {
	schema Schema
	fields []field.Field

	// scratch receives decoded values before they are exchanged into fields, built on first use
	scratch []field.Field
}

// NewFields builds one field per declared name of schema, in declaration order, using the
// schema's factories. An inconsistent schema (missing factory or a name table pointing
// outside the field sequence) is a programming error and panics.
func NewFields(schema Schema) *Fields {
	fields, err := build(schema)
	if err != nil {
		mlog.Errorf("%v", err)
		panic(err)
	}
	return &Fields{schema: schema, fields: fields}
}

// TypeName returns the message type, the empty string for a nil message
func (m *Fields) TypeName() string {
	if m == nil {
		return ""
	}
	return m.schema.TypeName()
}

// Schema returns the schema the fields were built from
func (m *Fields) Schema() Schema {
	return m.schema
}

// Len returns the number of fields
func (m *Fields) Len() int {
	return len(m.fields)
}

// --------------------------------------------------------------------------
// Lookup
// --------------------------------------------------------------------------

// Field returns the field with the given declared name, ok is false if there is none
func (m *Fields) Field(name string) (field.Field, bool) {
	return m.resolve(name, m.schema.FieldIndexByName)
}

// SetterField returns the field a setter name refers to, ok is false if there is none
func (m *Fields) SetterField(name string) (field.Field, bool) {
	return m.resolve(name, m.schema.FieldIndexBySetterName)
}

// GetterField returns the field a getter name refers to, ok is false if there is none
func (m *Fields) GetterField(name string) (field.Field, bool) {
	return m.resolve(name, m.schema.FieldIndexByGetterName)
}

// All returns the fields in declaration order. The returned slice is a copy, the fields
// in it are the live fields of the message.
func (m *Fields) All() []field.Field {
	out := make([]field.Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// FieldValue returns the value of the field with the given declared name
func (m *Fields) FieldValue(name string) (any, error) {
	f, ok := m.Field(name)
	if !ok {
		return nil, m.unknown(name)
	}
	return f.Value(), nil
}

// SetFieldValue sets the value of the field with the given declared name. Validation
// errors of the field are returned unchanged.
func (m *Fields) SetFieldValue(name string, v any) error {
	f, ok := m.Field(name)
	if !ok {
		return m.unknown(name)
	}
	return f.SetValue(v)
}

// --------------------------------------------------------------------------
// Serialization
// --------------------------------------------------------------------------

// Serialize writes all fields in declaration order at the write cursor of buf
func (m *Fields) Serialize(buf *buffer.Buffer) {
	for _, f := range m.fields {
		f.Serialize(buf)
	}
}

// Deserialize reads all fields in declaration order from the read cursor of buf. The
// values are decoded into scratch fields and only exchanged into the message's own fields
// if every field decodes, so a failed Deserialize leaves the message unchanged. The fields
// keep their identity. The error names the field that failed.
func (m *Fields) Deserialize(buf *buffer.Buffer) error {
	return m.decode(buf, false)
}

// decode implements Deserialize. With exact set, bytes left in buf after the last field are an error.
func (m *Fields) decode(buf *buffer.Buffer, exact bool) error {
	if m.scratch == nil {
		scratch, err := build(m.schema)
		if err != nil {
			return err
		}
		m.scratch = scratch
	}

	for _, f := range m.scratch {
		if err := f.Deserialize(buf); err != nil {
			return errors.Wrapf(err, "%s.%s", m.schema.TypeName(), f.Name())
		}
	}
	if exact && buf.ReadableBytes() > 0 {
		return errors.Wrapf(field.ErrMalformed, "%s: %d trailing bytes", m.schema.TypeName(), buf.ReadableBytes())
	}

	for i, f := range m.fields {
		if err := field.Exchange(f, m.scratch[i]); err != nil {
			mlog.Errorf("%v", err)
			panic(err)
		}
	}
	return nil
}

// Exchange swaps the values of every field with other, a message of an equal schema.
// The fields of both messages keep their identity.
func (m *Fields) Exchange(other field.Nested) error {
	o, ok := other.(*Fields)
	if !ok || o == nil || !m.schema.Equal(o.schema) {
		return errors.Wrapf(field.ErrInvalidValue, "cannot exchange %s with %T", m.schema.TypeName(), other)
	}
	if o == m {
		return nil
	}
	for i := range m.fields {
		if err := field.Exchange(m.fields[i], o.fields[i]); err != nil {
			return err
		}
	}
	return nil
}

// Signatures returns the signature of every field in declaration order
func (m *Fields) Signatures() []string {
	sigs := make([]string, len(m.fields))
	for i, f := range m.fields {
		sigs[i] = f.Signature()
	}
	return sigs
}

// --------------------------------------------------------------------------
// Equality (implements field.Nested)
// --------------------------------------------------------------------------

// Equal reports whether other is built from an equal schema and holds equal values in
// every field
func (m *Fields) Equal(other field.Nested) bool {
	o, ok := other.(*Fields)
	if !ok || o == nil {
		return false
	}
	if !m.schema.Equal(o.schema) || len(m.fields) != len(o.fields) {
		return false
	}
	for i := range m.fields {
		if !m.fields[i].Equal(o.fields[i]) {
			return false
		}
	}
	return true
}

// Hash combines the schema hash with the hashes of all fields, consistent with Equal
func (m *Fields) Hash() uint64 {
	d := xxhash.New()
	writeHash(d, m.schema.Hash())
	for _, f := range m.fields {
		writeHash(d, f.Hash())
	}
	return d.Sum64()
}

func (m *Fields) String() string {
	var sb strings.Builder
	sb.WriteString(m.schema.TypeName())
	sb.WriteString("{")
	for i, f := range m.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %v", f.Name(), f.Value()))
	}
	sb.WriteString("}")
	return sb.String()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// Factory returns a factory for nested messages of this schema, for use with
// field.NewMessageField
func Factory(schema Schema) field.NestedFactory {
	return func() field.Nested {
		return NewFields(schema)
	}
}

func (m *Fields) resolve(name string, table func(string) (int, bool)) (field.Field, bool) {
	index, ok := table(name)
	if !ok {
		return nil, false
	}
	return m.fields[index], true
}

func (m *Fields) unknown(name string) error {
	return errors.Wrapf(ErrUnknownField, "%s has no field %s", m.schema.TypeName(), name)
}

// build creates one fresh field per declared name and checks the accessor tables
func build(schema Schema) ([]field.Field, error) {
	names := schema.FieldNames()
	fields := make([]field.Field, len(names))
	for i, name := range names {
		factory, ok := schema.FieldFactory(name)
		if !ok || factory == nil {
			return nil, errors.Errorf("schema %s: no factory for field %s", schema.TypeName(), name)
		}
		fields[i] = factory()
	}

	// every table entry reachable from a declared field must point into the sequence
	for _, name := range names {
		getter, setter, ok := schema.Accessors(name)
		if !ok {
			return nil, errors.Errorf("schema %s: no accessors for field %s", schema.TypeName(), name)
		}
		checks := []struct {
			table, key string
			lookup     func(string) (int, bool)
		}{
			{"field", name, schema.FieldIndexByName},
			{"getter", getter, schema.FieldIndexByGetterName},
			{"setter", setter, schema.FieldIndexBySetterName},
		}
		for _, c := range checks {
			index, ok := c.lookup(c.key)
			if !ok || index < 0 || index >= len(fields) {
				return nil, errors.Errorf("schema %s: %s %s maps to index %d of %d fields", schema.TypeName(), c.table, c.key, index, len(fields))
			}
		}
	}
	return fields, nil
}

func writeHash(d *xxhash.Digest, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, _ = d.Write(b[:])
}
