package util

import (
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/ValentinKolb/dMsg/lib/field"
	"github.com/ValentinKolb/dMsg/lib/message"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupCodecFlags adds the codec and buffer pool flags to a command
func SetupCodecFlags(cmd *cobra.Command) {
	defaults := common.DefaultCodecConfig()

	key := "pool-reuse"
	cmd.PersistentFlags().Bool(key, defaults.Pool.Reuse, WrapString("Whether released buffers are kept for reuse. When disabled every encode allocates a fresh buffer"))

	key = "pool-initial-capacity"
	cmd.PersistentFlags().Int(key, defaults.Pool.InitialCapacity, WrapString("Capacity of newly allocated buffers (in bytes)"))

	key = "pool-max-idle"
	cmd.PersistentFlags().Int(key, defaults.Pool.MaxIdle, WrapString("Maximum number of released buffers kept for reuse"))

	key = "pool-max-retained"
	cmd.PersistentFlags().Int(key, defaults.Pool.MaxRetainedCapacity/1024, WrapString("Largest buffer capacity that is kept for reuse (in KB). Larger buffers are dropped on release"))

	key = "copy-on-decode"
	cmd.PersistentFlags().Bool(key, defaults.CopyOnDecode, WrapString("Copy the input before decoding so decoded values own their storage"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// InitConfig initializes configuration from .env files and environment variables.
// The format of the environment variables is DMSG_<flag> (e.g. DMSG_POOL_MAX_IDLE=16).
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("dmsg")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetCodecConfig reads the codec configuration from viper
func GetCodecConfig() common.CodecConfig {
	return common.CodecConfig{
		Pool: common.PoolConfig{
			Reuse:               viper.GetBool("pool-reuse"),
			InitialCapacity:     viper.GetInt("pool-initial-capacity"),
			MaxIdle:             viper.GetInt("pool-max-idle"),
			MaxRetainedCapacity: viper.GetInt("pool-max-retained") * 1024,
		},
		CopyOnDecode: viper.GetBool("copy-on-decode"),
		LogLevel:     viper.GetString("log-level"),
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// NewCodec creates the loggers and a codec with its own pool from a configuration
func NewCodec(config common.CodecConfig) (*message.Codec, error) {
	if err := common.InitLoggers(config); err != nil {
		return nil, err
	}
	return message.NewCodec(buffer.NewPool("cli", config.Pool), config), nil
}

// --------------------------------------------------------------------------
// Sample Schema
// --------------------------------------------------------------------------

// SampleSchemas returns the message types used by the perf and inspect commands: a
// "Header" type and a "Sample" type embedding it
func SampleSchemas() (header, sample *message.Context) {
	header = message.NewContext("Header").
		AddField("seq", func() field.Field { return field.NewScalarField(field.KindUint32, "seq") }).
		AddField("stamp", func() field.Field { return field.NewScalarField(field.KindInt64, "stamp") }).
		AddField("frame_id", func() field.Field { return field.NewStringField("frame_id") })

	sample = message.NewContext("Sample").
		AddField("header", func() field.Field {
			return field.NewMessageField("Header", "header", message.Factory(header))
		}).
		AddField("ranges", func() field.Field { return field.NewListField(field.KindFloat32, "ranges", -1) }).
		AddField("digest", func() field.Field { return field.NewByteSequenceField(field.KindUint8, "digest", 8) }).
		AddField("payload", func() field.Field { return field.NewByteSequenceField(field.KindUint8, "payload", -1) })
	return header, sample
}

// SampleMessage builds a "Sample" message carrying a payload of the given size (in bytes)
func SampleMessage(header, sample message.Schema, payloadSize int) (*message.Fields, error) {
	h := message.NewFields(header)
	if err := h.SetFieldValue("seq", uint32(1)); err != nil {
		return nil, err
	}
	if err := h.SetFieldValue("stamp", int64(1700000000000)); err != nil {
		return nil, err
	}
	if err := h.SetFieldValue("frame_id", "base_link"); err != nil {
		return nil, err
	}

	payload := make([]byte, payloadSize)
	for i := range payload {
		payload[i] = byte(i)
	}

	msg := message.NewFields(sample)
	values := []struct {
		name  string
		value any
	}{
		{"header", h},
		{"ranges", []float32{0.5, 1, 1.5, 2}},
		{"digest", buffer.Wrap([]byte("dmsg-v01"))},
		{"payload", buffer.Wrap(payload)},
	}
	for _, v := range values {
		if err := msg.SetFieldValue(v.name, v.value); err != nil {
			return nil, err
		}
	}
	return msg, nil
}
