package buffer

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPoolConfigs is a map of configuration name to pool configuration
var testPoolConfigs = map[string]common.PoolConfig{
	"Reuse":   common.DefaultPoolConfig(),
	"NoReuse": {Reuse: false, InitialCapacity: 64},
	"Tiny":    {Reuse: true, InitialCapacity: 8, MaxIdle: 2, MaxRetainedCapacity: 64},
}

func TestPool_AcquireReturnsFreshBuffer(t *testing.T) {
	for name, conf := range testPoolConfigs {
		t.Run(name, func(t *testing.T) {
			pool := NewPool(name, conf)

			buf := pool.Acquire()
			assert.Equal(t, 0, buf.ReadableBytes())
			assert.Equal(t, 0, buf.ReaderIndex())
			assert.True(t, buf.IsLittleEndian())

			buf.WriteBytes([]byte("secret payload"))
			pool.Release(buf)

			again := pool.Acquire()
			defer pool.Release(again)
			assert.Equal(t, 0, again.ReadableBytes())
			assert.True(t, again.IsLittleEndian())
			assert.NotContains(t, string(again.data[:cap(again.data)]), "secret")
		})
	}
}

func TestPool_Discipline(t *testing.T) {
	for name, conf := range testPoolConfigs {
		t.Run(name, func(t *testing.T) {
			pool := NewPool(name, conf)
			const n = 10

			buffers := make([]*Buffer, n)
			for i := range buffers {
				buffers[i] = pool.Acquire()
			}
			assert.Equal(t, n, pool.InUse())

			// no buffer is handed out twice
			seen := make(map[*Buffer]bool)
			for _, b := range buffers {
				assert.False(t, seen[b])
				seen[b] = true
			}

			for _, b := range buffers {
				pool.Release(b)
			}
			assert.Equal(t, 0, pool.InUse())
			assert.LessOrEqual(t, pool.Idle(), conf.MaxIdle)
			if !conf.Reuse {
				assert.Equal(t, 0, pool.Idle())
			}
		})
	}
}

func TestPool_Reuse(t *testing.T) {
	pool := NewPool("reuse", common.DefaultPoolConfig())

	first := pool.Acquire()
	pool.Release(first)
	second := pool.Acquire()
	defer pool.Release(second)

	assert.Same(t, first, second)
}

func TestPool_NoReuseAlwaysAllocates(t *testing.T) {
	pool := NewPool("no-reuse", common.PoolConfig{Reuse: false})

	first := pool.Acquire()
	pool.Release(first)
	second := pool.Acquire()
	defer pool.Release(second)

	assert.NotSame(t, first, second)
	assert.Equal(t, DefaultCapacity, second.Cap())
}

func TestPool_DropsOversizedBuffers(t *testing.T) {
	pool := NewPool("tiny", testPoolConfigs["Tiny"])

	buf := pool.Acquire()
	buf.WriteBytes(make([]byte, 1024))
	pool.Release(buf)

	assert.Equal(t, 0, pool.Idle())
	assert.Equal(t, int64(1), pool.CapacityHistogram().Count())
}

func TestPool_DoubleReleasePanics(t *testing.T) {
	pool := NewPool("double", common.DefaultPoolConfig())

	buf := pool.Acquire()
	pool.Release(buf)

	assertContractViolation(t, func() { pool.Release(buf) })
	assert.Equal(t, 0, pool.InUse())
}

func TestPool_ForeignReleasePanics(t *testing.T) {
	pool := NewPool("owner", common.DefaultPoolConfig())
	other := NewPool("other", common.DefaultPoolConfig())

	foreign := other.Acquire()
	defer other.Release(foreign)

	assertContractViolation(t, func() { pool.Release(foreign) })
	assertContractViolation(t, func() { pool.Release(New(0)) })
	assertContractViolation(t, func() { pool.Release(nil) })

	// a view of an acquired buffer is not the acquired buffer
	own := pool.Acquire()
	assertContractViolation(t, func() { pool.Release(own.Duplicate()) })
	pool.Release(own)
}

func TestPool_ConcurrentAcquireRelease(t *testing.T) {
	pool := NewPool("concurrent", common.PoolConfig{Reuse: true, InitialCapacity: 32, MaxIdle: 8, MaxRetainedCapacity: 4096})

	const workers = 16
	const iterations = 500

	var mu sync.Mutex
	inFlight := make(map[*Buffer]bool)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				buf := pool.Acquire()

				mu.Lock()
				if inFlight[buf] {
					t.Errorf("buffer %p acquired twice", buf)
				}
				inFlight[buf] = true
				mu.Unlock()

				if buf.ReadableBytes() != 0 {
					t.Errorf("worker %d got a non-empty buffer", id)
				}
				buf.WriteUint32(uint32(id))
				buf.WriteUint32(uint32(i))

				mu.Lock()
				delete(inFlight, buf)
				mu.Unlock()

				pool.Release(buf)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 0, pool.InUse())
	assert.LessOrEqual(t, pool.Idle(), 8)
	assert.Equal(t, int64(workers*iterations), pool.CapacityHistogram().Count())
}

func TestPool_Metrics(t *testing.T) {
	pool := NewPool("metrics", common.DefaultPoolConfig())

	a := pool.Acquire()
	b := pool.Acquire()
	pool.Release(a)

	var out bytes.Buffer
	pool.Metrics().WritePrometheus(&out)
	text := out.String()

	assert.Contains(t, text, `dmsg_buffer_pool_acquired_total{pool="metrics"} 2`)
	assert.Contains(t, text, `dmsg_buffer_pool_released_total{pool="metrics"} 1`)
	assert.Contains(t, text, `dmsg_buffer_pool_in_use{pool="metrics"} 1`)
	assert.True(t, strings.Contains(text, `dmsg_buffer_pool_allocated_total{pool="metrics"} 2`))

	pool.Release(b)
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func assertContractViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error")
		assert.ErrorIs(t, err, ErrPoolContractViolation)
	}()
	fn()
}
