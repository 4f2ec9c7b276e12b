package buffer

import (
	"fmt"
	"github.com/ValentinKolb/dMsg/lib/common"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
)

var plog = logger.GetLogger("buffer")

// ErrPoolContractViolation is the panic value for a double release or the release
// of a buffer that was not acquired from the pool
var ErrPoolContractViolation = errors.New("buffer pool contract violation")

// --------------------------------------------------------------------------
// Pool Structure
// --------------------------------------------------------------------------

// Pool issues and reclaims buffers for serializing and deserializing messages.
//
// By contract, every buffer returned by Acquire must be returned using Release exactly once,
// and must not be used afterwards.
type Pool struct {
	name     string
	config   common.PoolConfig
	acquired *xsync.MapOf[*Buffer, struct{}]

	mu   sync.Mutex // Protects free
	free []*Buffer

	capacities *CapacityHistogram

	// metrics
	set         *metrics.Set
	acquires    *metrics.Counter
	releases    *metrics.Counter
	allocations *metrics.Counter
	discards    *metrics.Counter
}

// NewPool creates a buffer pool. The name is used for logging and as metrics label.
func NewPool(name string, config common.PoolConfig) *Pool {
	if config.InitialCapacity <= 0 {
		config.InitialCapacity = DefaultCapacity
	}

	p := &Pool{
		name:       name,
		config:     config,
		acquired:   xsync.NewMapOf[*Buffer, struct{}](),
		capacities: NewCapacityHistogram(),
		set:        metrics.NewSet(),
	}
	if config.Reuse && config.MaxIdle > 0 {
		p.free = make([]*Buffer, 0, config.MaxIdle)
	}

	p.acquires = p.set.NewCounter(p.metricName("acquired_total"))
	p.releases = p.set.NewCounter(p.metricName("released_total"))
	p.allocations = p.set.NewCounter(p.metricName("allocated_total"))
	p.discards = p.set.NewCounter(p.metricName("discarded_total"))
	p.set.NewGauge(p.metricName("in_use"), func() float64 {
		return float64(p.InUse())
	})
	p.set.NewGauge(p.metricName("idle"), func() float64 {
		return float64(p.Idle())
	})

	return p
}

// --------------------------------------------------------------------------
// Pool Methods
// --------------------------------------------------------------------------

// Acquire returns an empty little-endian buffer. It never blocks: if no released buffer
// is available, a new one is allocated.
// Acquired buffers must be returned using Release.
//
// Thread-safe: This method is safe for concurrent use
func (p *Pool) Acquire() *Buffer {
	var buf *Buffer

	p.mu.Lock()
	if n := len(p.free); n > 0 {
		buf = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if buf == nil {
		buf = New(p.config.InitialCapacity)
		p.allocations.Inc()
	}

	if _, loaded := p.acquired.LoadOrStore(buf, struct{}{}); loaded {
		p.violation("buffer %p handed out twice", buf)
	}
	p.acquires.Inc()
	return buf
}

// Release returns a previously acquired buffer. The buffer's content is zeroed before
// it becomes eligible for reuse. Releasing a buffer twice or releasing a buffer that was
// not acquired from this pool panics with ErrPoolContractViolation.
//
// Thread-safe: This method is safe for concurrent use
func (p *Pool) Release(buf *Buffer) {
	if buf == nil {
		p.violation("release of nil buffer")
	}
	if _, ok := p.acquired.LoadAndDelete(buf); !ok {
		p.violation("release of buffer %p that is not acquired from this pool", buf)
	}
	p.releases.Inc()
	p.capacities.AddSample(buf.Cap())

	buf.Reset()

	if !p.config.Reuse {
		return
	}
	if p.config.MaxRetainedCapacity > 0 && buf.Cap() > p.config.MaxRetainedCapacity {
		plog.Debugf("pool %s: dropping buffer with capacity %d (limit %d)", p.name, buf.Cap(), p.config.MaxRetainedCapacity)
		p.discards.Inc()
		return
	}

	p.mu.Lock()
	if len(p.free) < p.config.MaxIdle {
		p.free = append(p.free, buf)
		buf = nil
	}
	p.mu.Unlock()

	if buf != nil {
		p.discards.Inc()
	}
}

// InUse returns the number of buffers currently acquired
func (p *Pool) InUse() int {
	return p.acquired.Size()
}

// Idle returns the number of released buffers waiting for reuse
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Metrics returns the metric set of the pool, which can be exported with WritePrometheus
func (p *Pool) Metrics() *metrics.Set {
	return p.set
}

// CapacityHistogram returns the distribution of buffer capacities seen on release
func (p *Pool) CapacityHistogram() *CapacityHistogram {
	return p.capacities
}

// Config returns the configuration of the pool
func (p *Pool) Config() common.PoolConfig {
	return p.config
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (p *Pool) metricName(metric string) string {
	return fmt.Sprintf(`dmsg_buffer_pool_%s{pool=%q}`, metric, p.name)
}

// violation logs and panics, misuse of the pool is a programming error
func (p *Pool) violation(format string, args ...interface{}) {
	err := errors.Wrapf(ErrPoolContractViolation, "pool %s: "+format, append([]interface{}{p.name}, args...)...)
	plog.Errorf("%v", err)
	panic(err)
}
