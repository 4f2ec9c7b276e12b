package message

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/field"
	"github.com/cespare/xxhash/v2"
	"maps"
	"strings"
	"unicode"
)

// FieldFactory creates a fresh field holding its initial value
type FieldFactory func() field.Field

// Schema describes one message type: its declared fields in order, a factory per field
// and the three name tables used to resolve a field by declared, setter or getter name.
type Schema interface {
	// TypeName returns the name of the message type
	TypeName() string

	// FieldNames returns the declared field names in declaration order
	FieldNames() []string

	// FieldFactory returns the factory for a declared field name
	FieldFactory(name string) (FieldFactory, bool)

	// Accessors returns the getter and setter name of a declared field
	Accessors(name string) (getter, setter string, ok bool)

	// FieldIndexByName resolves a declared field name to its index
	FieldIndexByName(name string) (int, bool)

	// FieldIndexBySetterName resolves a setter name to a field index
	FieldIndexBySetterName(name string) (int, bool)

	// FieldIndexByGetterName resolves a getter name to a field index
	FieldIndexByGetterName(name string) (int, bool)

	Equal(other Schema) bool
	Hash() uint64
}

// --------------------------------------------------------------------------
// Context (implements Schema)
// --------------------------------------------------------------------------

// Context is the Schema implementation built in code. Fields are declared once with
// AddField and the name tables are filled at declaration time, so no lookup ever
// inspects a message at runtime.
type Context struct {
	typeName   string
	names      []string
	signatures []string
	factories  map[string]FieldFactory
	accessors  map[string][2]string
	byName     map[string]int
	bySetter   map[string]int
	byGetter   map[string]int
}

// NewContext creates an empty schema for the given message type
func NewContext(typeName string) *Context {
	return &Context{
		typeName:  typeName,
		factories: make(map[string]FieldFactory),
		accessors: make(map[string][2]string),
		byName:    make(map[string]int),
		bySetter:  make(map[string]int),
		byGetter:  make(map[string]int),
	}
}

// AddField declares the next field. The accessor names are derived from the field name,
// e.g. "frame_id" is reachable as "GetFrameId" and "SetFrameId".
func (c *Context) AddField(name string, factory FieldFactory) *Context {
	camel := camelCase(name)
	return c.AddFieldWithAccessors(name, "Get"+camel, "Set"+camel, factory)
}

// AddFieldWithAccessors declares the next field with explicit getter and setter names.
// It panics if the factory is nil, if it creates a field with a different name, or if
// any of the names is already taken.
func (c *Context) AddFieldWithAccessors(name, getter, setter string, factory FieldFactory) *Context {
	if factory == nil {
		mlog.Panicf("schema %s: field %s has no factory", c.typeName, name)
	}
	if _, ok := c.byName[name]; ok {
		mlog.Panicf("schema %s: field %s declared twice", c.typeName, name)
	}
	if _, ok := c.byGetter[getter]; ok {
		mlog.Panicf("schema %s: getter %s declared twice", c.typeName, getter)
	}
	if _, ok := c.bySetter[setter]; ok {
		mlog.Panicf("schema %s: setter %s declared twice", c.typeName, setter)
	}

	// the signature is taken once from a sample field, it never depends on the value
	sample := factory()
	if sample.Name() != name {
		mlog.Panicf("schema %s: factory for field %s creates field %s", c.typeName, name, sample.Name())
	}

	index := len(c.names)
	c.names = append(c.names, name)
	c.signatures = append(c.signatures, sample.Signature())
	c.factories[name] = factory
	c.accessors[name] = [2]string{getter, setter}
	c.byName[name] = index
	c.byGetter[getter] = index
	c.bySetter[setter] = index
	return c
}

// --------------------------------------------------------------------------
// Interface Methods (docu see message.Schema)
// --------------------------------------------------------------------------

func (c *Context) TypeName() string {
	return c.typeName
}

func (c *Context) FieldNames() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

func (c *Context) FieldFactory(name string) (FieldFactory, bool) {
	factory, ok := c.factories[name]
	return factory, ok
}

func (c *Context) Accessors(name string) (string, string, bool) {
	a, ok := c.accessors[name]
	return a[0], a[1], ok
}

func (c *Context) FieldIndexByName(name string) (int, bool) {
	index, ok := c.byName[name]
	return index, ok
}

func (c *Context) FieldIndexBySetterName(name string) (int, bool) {
	index, ok := c.bySetter[name]
	return index, ok
}

func (c *Context) FieldIndexByGetterName(name string) (int, bool) {
	index, ok := c.byGetter[name]
	return index, ok
}

// Equal reports whether other declares the same type with the same fields, in the same
// order, reachable under the same accessor names
func (c *Context) Equal(other Schema) bool {
	o, ok := other.(*Context)
	if !ok || o == nil {
		return false
	}
	if c == o {
		return true
	}
	if c.typeName != o.typeName || len(c.names) != len(o.names) {
		return false
	}
	for i := range c.names {
		if c.names[i] != o.names[i] || c.signatures[i] != o.signatures[i] {
			return false
		}
	}
	return maps.Equal(c.byGetter, o.byGetter) && maps.Equal(c.bySetter, o.bySetter)
}

// Hash covers the type name and the field signatures, consistent with Equal
func (c *Context) Hash() uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(c.typeName)
	for _, sig := range c.signatures {
		_, _ = d.WriteString(sig)
	}
	return d.Sum64()
}

func (c *Context) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Context<%s>\n", c.typeName))
	for _, sig := range c.signatures {
		sb.WriteString("  ")
		sb.WriteString(sig)
	}
	return sb.String()
}

// --------------------------------------------------------------------------
// Helper Functions
// --------------------------------------------------------------------------

// camelCase turns a snake_case field name into the CamelCase part of its accessor names
func camelCase(name string) string {
	var sb strings.Builder
	upper := true
	for _, r := range name {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
