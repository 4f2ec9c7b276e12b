package util

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/ValentinKolb/dMsg/lib/message"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		assert.LessOrEqual(t, len(line), Wrap)
	}
	assert.Equal(t, "short text", WrapString("  short   text "))
	assert.Equal(t, "", WrapString(""))
}

func TestGetCodecConfig_FromEnv(t *testing.T) {
	t.Setenv("DMSG_POOL_MAX_IDLE", "7")
	t.Setenv("DMSG_COPY_ON_DECODE", "true")
	InitConfig()

	cmd := &cobra.Command{Use: "test"}
	SetupCodecFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--pool-max-retained", "2"}))
	require.NoError(t, BindCommandFlags(cmd))

	conf := GetCodecConfig()
	assert.Equal(t, 7, conf.Pool.MaxIdle)
	assert.True(t, conf.CopyOnDecode)
	assert.Equal(t, 2*1024, conf.Pool.MaxRetainedCapacity)
	assert.Equal(t, common.DefaultPoolConfig().InitialCapacity, conf.Pool.InitialCapacity)
	assert.Equal(t, "info", conf.LogLevel)
}

func TestNewCodec_RejectsInvalidLogLevel(t *testing.T) {
	conf := common.DefaultCodecConfig()
	conf.LogLevel = "verbose"

	_, err := NewCodec(conf)
	assert.Error(t, err)
}

func TestSampleMessage_RoundTrip(t *testing.T) {
	header, sample := SampleSchemas()
	codec, err := NewCodec(common.DefaultCodecConfig())
	require.NoError(t, err)

	for _, size := range []int{0, 1, 4096} {
		msg, err := SampleMessage(header, sample, size)
		require.NoError(t, err)

		decoded := message.NewFields(sample)
		require.NoError(t, codec.Decode(codec.Encode(msg), decoded))
		assert.True(t, msg.Equal(decoded), "payload size %d", size)
	}
}
