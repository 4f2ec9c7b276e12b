package message

import (
	"bytes"
	"github.com/ValentinKolb/dMsg/lib/buffer"
	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/rcrowley/go-metrics"
	"time"
)

// Metric names in the registry returned by Codec.Registry
const (
	MetricEncode       = "encode"
	MetricDecode       = "decode"
	MetricEncodedSize  = "encoded-size"
	MetricDecodeErrors = "decode-errors"
)

// Codec converts messages to and from their wire format, borrowing scratch space from
// a buffer pool.
//
// Encode serializes into a pooled buffer and returns a copy of the written bytes, so the
// pooled buffer is released before Encode returns. Decode reads directly from the
// caller's byte slice: byte sequence fields of the decoded message are views into data
// and stay valid for as long as the caller keeps data unchanged. With CopyOnDecode the
// input is copied first and the decoded message owns its storage.
//
// A Codec is safe for concurrent use, the messages passed to it are not.
type Codec struct {
	pool   *buffer.Pool
	config common.CodecConfig

	registry     metrics.Registry
	encodeTimer  metrics.Timer
	decodeTimer  metrics.Timer
	encodedSize  metrics.Histogram
	decodeErrors metrics.Counter
}

// NewCodec creates a codec. If pool is nil a pool is created from config.Pool.
func NewCodec(pool *buffer.Pool, config common.CodecConfig) *Codec {
	if pool == nil {
		pool = buffer.NewPool("codec", config.Pool)
	}

	c := &Codec{
		pool:         pool,
		config:       config,
		registry:     metrics.NewRegistry(),
		encodeTimer:  metrics.NewTimer(),
		decodeTimer:  metrics.NewTimer(),
		encodedSize:  metrics.NewHistogram(metrics.NewExpDecaySample(1028, 0.015)),
		decodeErrors: metrics.NewCounter(),
	}
	_ = c.registry.Register(MetricEncode, c.encodeTimer)
	_ = c.registry.Register(MetricDecode, c.decodeTimer)
	_ = c.registry.Register(MetricEncodedSize, c.encodedSize)
	_ = c.registry.Register(MetricDecodeErrors, c.decodeErrors)
	return c
}

// Encode returns the wire format of msg
func (c *Codec) Encode(msg *Fields) []byte {
	start := time.Now()

	buf := c.pool.Acquire()
	defer c.pool.Release(buf)

	msg.Serialize(buf)
	out := bytes.Clone(buf.Bytes())

	c.encodedSize.Update(int64(len(out)))
	c.encodeTimer.UpdateSince(start)
	return out
}

// EncodeTo appends the wire format of msg to buf and returns the number of bytes written
func (c *Codec) EncodeTo(buf *buffer.Buffer, msg *Fields) int {
	start := time.Now()
	before := buf.WriterIndex()

	msg.Serialize(buf)
	n := buf.WriterIndex() - before

	c.encodedSize.Update(int64(n))
	c.encodeTimer.UpdateSince(start)
	return n
}

// Decode replaces the values of msg with the message encoded in data. data must contain
// exactly one message, trailing bytes are rejected with field.ErrMalformed. On failure msg
// is left unchanged.
func (c *Codec) Decode(data []byte, msg *Fields) error {
	start := time.Now()
	defer c.decodeTimer.UpdateSince(start)

	if c.config.CopyOnDecode {
		data = bytes.Clone(data)
	}

	if err := msg.decode(buffer.Wrap(data), true); err != nil {
		c.decodeErrors.Inc(1)
		mlog.Debugf("decoding %s from %d bytes failed: %v", msg.schema.TypeName(), len(data), err)
		return err
	}
	return nil
}

// Pool returns the pool the codec borrows buffers from
func (c *Codec) Pool() *buffer.Pool {
	return c.pool
}

// Config returns the codec configuration
func (c *Codec) Config() common.CodecConfig {
	return c.config
}

// Registry returns the metrics registry of the codec
func (c *Codec) Registry() metrics.Registry {
	return c.registry
}
