package common

import (
	"bytes"
	"log"
	"testing"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(out *bytes.Buffer, level logger.LogLevel) *dMsgLogger {
	return &dMsgLogger{name: "test", level: level, logger: log.New(out, "", 0)}
}

func TestLogger_Levels(t *testing.T) {
	var out bytes.Buffer
	l := newTestLogger(&out, logger.WARNING)

	l.Infof("hidden %d", 1)
	l.Warningf("shown %d", 2)
	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "WARN  | test            | shown 2")
}

func TestLogger_PanicfLogsFirst(t *testing.T) {
	var out bytes.Buffer
	l := newTestLogger(&out, logger.ERROR)

	assert.PanicsWithValue(t, "schema Header: field seq declared twice", func() {
		l.Panicf("schema %s: field %s declared twice", "Header", "seq")
	})
	assert.Contains(t, out.String(), "PANIC | test            | schema Header: field seq declared twice")
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, logger.WARNING, level)

	_, err = ParseLogLevel("verbose")
	assert.Error(t, err)
}
