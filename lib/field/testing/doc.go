// Package testing provides a standardised test suite for implementations of the
// field.Field interface.
//
// The suite checks the contract every variant must honour:
//   - Serialize followed by Deserialize reproduces an equal value
//   - Signature depends only on the declared shape, never on the value
//   - A rejected SetValue leaves the previous value intact
//   - Deserialize fails on truncated input
//   - Serialize does not modify the field
//
// Example usage:
//
//	// Creating a factory function for your field
//	factory := func() field.Field {
//		return NewMyField("name")
//	}
//
//	// Running the standard test suite with a non-zero sample value
//	fieldtesting.RunFieldTests(t, "MyField", factory, sampleValue)
package testing
