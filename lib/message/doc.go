// Package message assembles fields into messages and converts whole messages to and from
// their wire format.
//
// Key Components:
//
//   - Schema, Context: The description of a message type. Context declares fields in
//     order with AddField and fills three name tables (declared name, getter name, setter
//     name) at declaration time.
//
//   - Fields: One message instance. Built from a schema with one field per declared
//     name, in declaration order. The sequence never changes after construction, the
//     values of its fields do. Lookups by name report absence with ok == false,
//     FieldValue and SetFieldValue fail with ErrUnknownField.
//
//   - Codec: Encodes a message into a pooled buffer and returns the bytes, decodes a
//     message from a byte slice. Decoding is zero-copy unless CopyOnDecode is set.
//
// Wire format:
//
//	A message is its fields serialized back to back in declaration order, without any
//	framing. Nested messages (field.MessageField) are embedded the same way.
//
// Usage:
//
//	schema := message.NewContext("Frame").
//		AddField("seq", func() field.Field { return field.NewScalarField(field.KindUint32, "seq") }).
//		AddField("data", func() field.Field { return field.NewByteSequenceField(field.KindUint8, "data", -1) })
//
//	msg := message.NewFields(schema)
//	_ = msg.SetFieldValue("seq", uint32(1))
//
//	codec := message.NewCodec(nil, common.DefaultCodecConfig())
//	payload := codec.Encode(msg)
package message
