// Package buffer provides the byte container used as the wire-format carrier for
// message serialization, together with a pool that hands out reusable buffers.
//
// The package focuses on:
//   - A growable byte buffer with a read cursor, a write cursor and an explicit byte order
//   - Zero-copy slice and duplicate views over shared backing storage
//   - A concurrent pool that bounds allocations under sustained message traffic
//
// Key Components:
//
//   - Buffer: Growable byte sequence. Writes append at the write cursor, reads consume from
//     the read cursor. ReadSlice returns a view that shares storage with the source buffer,
//     Duplicate returns a view with its own cursors. Buffers default to little-endian.
//
//   - Pool: Issues buffers via Acquire and takes them back via Release. Every Acquire must
//     be matched by exactly one Release. A released buffer is zeroed before it can be
//     handed out again, so no data leaks between unrelated messages. Releasing a buffer
//     twice or releasing a buffer that was not acquired from the pool panics with
//     ErrPoolContractViolation.
//
// Lifetime of views:
//
//	Views returned by ReadSlice and Duplicate are only valid while the backing storage of
//	the source buffer is not reused. A view taken from a pooled buffer must be copied
//	(Buffer.Copy) before that buffer is released.
//
// Thread Safety:
//
//	Buffer is not safe for concurrent use. Pool is safe for concurrent Acquire and Release
//	calls from multiple goroutines.
package buffer
