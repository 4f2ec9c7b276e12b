// Package cmd implements the command-line interface of dMsg. It provides tools to
// benchmark the message codec and to inspect the wire format of messages.
//
// The package is organized into several subpackages:
//
//   - perf: Encode, decode and buffer pool benchmarks with optional CSV export
//   - inspect: Prints a sample schema, its field signatures and an encoded sample message
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dmsg -help for a list of all commands.
package cmd
