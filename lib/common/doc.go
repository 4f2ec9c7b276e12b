// Package common provides configuration structures and logging utilities shared across
// the message codec packages and the command line tools.
//
// Key Components:
//
//   - PoolConfig: Controls buffer allocation and retention of a buffer.Pool
//     (reuse on/off, initial capacity, idle limit, retained capacity limit).
//
//   - CodecConfig: Configuration of a message.Codec, embedding the PoolConfig of its
//     scratch buffer pool and the decode copy policy.
//
//   - Logger: Custom logging implementation plugged into the dragonboat logger
//     registry, giving all package loggers a consistent format.
package common
