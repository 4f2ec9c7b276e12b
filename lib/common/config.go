package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Buffer pool configuration struct
// --------------------------------------------------------------------------

// PoolConfig controls how a buffer pool allocates and retains buffers.
type PoolConfig struct {
	// Reuse enables recycling of released buffers. When disabled every Acquire allocates a
	// fresh buffer, the acquire/release accounting is still enforced.
	Reuse bool

	// InitialCapacity is the capacity (in bytes) of newly allocated buffers
	InitialCapacity int

	// MaxIdle is the maximum number of released buffers kept for reuse
	MaxIdle int

	// MaxRetainedCapacity is the largest buffer capacity (in bytes) that is kept for reuse.
	// Larger buffers are dropped on release to prevent memory bloat from single large messages.
	MaxRetainedCapacity int
}

// DefaultPoolConfig returns the pool configuration used when nothing else is configured
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Reuse:               true,
		InitialCapacity:     512,
		MaxIdle:             64,
		MaxRetainedCapacity: 256 * 1024,
	}
}

// String returns a formatted string representation of the pool configuration
func (c *PoolConfig) String() string {
	var sb strings.Builder
	writePoolConfig(&sb, c)
	return sb.String()
}

// --------------------------------------------------------------------------
// Codec configuration struct
// --------------------------------------------------------------------------

// CodecConfig holds all configuration parameters of a message codec.
type CodecConfig struct {
	// Pool configures the scratch buffer pool used while encoding
	Pool PoolConfig

	// CopyOnDecode makes the codec copy its input before decoding, so decoded byte
	// sequences own their storage instead of referencing the caller's data
	CopyOnDecode bool

	// Logging configuration
	LogLevel string
}

// DefaultCodecConfig returns the codec configuration used when nothing else is configured
func DefaultCodecConfig() CodecConfig {
	return CodecConfig{
		Pool:     DefaultPoolConfig(),
		LogLevel: "info",
	}
}

// String returns a formatted string representation of the configuration
func (c *CodecConfig) String() string {
	var sb strings.Builder

	addSection(&sb, "Codec")
	addField(&sb, "Copy On Decode", fmt.Sprintf("%t", c.CopyOnDecode))

	// Logging configuration
	addSection(&sb, "Logging")
	addField(&sb, "Log Level", c.LogLevel)

	writePoolConfig(&sb, &c.Pool)
	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func writePoolConfig(sb *strings.Builder, c *PoolConfig) {
	addSection(sb, "Buffer Pool")
	addField(sb, "Reuse", fmt.Sprintf("%t", c.Reuse))
	addField(sb, "Initial Capacity", fmt.Sprintf("%d bytes", c.InitialCapacity))
	addField(sb, "Max Idle", fmt.Sprintf("%d", c.MaxIdle))
	addField(sb, "Max Retained Capacity", fmt.Sprintf("%d bytes", c.MaxRetainedCapacity))
}

func addSection(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
}

func addField(sb *strings.Builder, name, value string) {
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
}
