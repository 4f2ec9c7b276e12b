// Package field provides the unit of message (de)serialization: a named, typed value
// that knows how to write itself to and read itself from a buffer.Buffer.
//
// Key Components:
//
//   - Field: Interface all variants satisfy. Serialize writes the current value at the
//     write cursor, Deserialize replaces it from the read cursor, Value and SetValue
//     access it, Signature returns the declared shape as "<kind> <name>\n".
//
//   - ByteSequenceField: Raw bytes, fixed length or int32 length-prefixed. Decoding is
//     zero-copy: the decoded value is a view into the source buffer.
//
//   - ScalarField, ListField: Fixed width scalars and arrays of them.
//
//   - StringField: int32 length-prefixed UTF-8 text.
//
//   - MessageField: A nested message, serialized field by field.
//
// Errors:
//
//	SetValue fails with ErrInvalidValue on a value of the wrong type or shape and leaves the
//	field unchanged. Deserialize fails with buffer.ErrTruncated on short input and with
//	ErrMalformed on a negative length prefix; after a failed Deserialize the buffer should
//	be discarded.
//
// Thread Safety:
//
//	Fields are not safe for concurrent mutation. A message, and therefore its fields,
//	must be confined to one goroutine at a time.
package field
