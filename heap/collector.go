package heap

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("metamodel.heap")

// ---------------------------------------------------------------------------
// Collector: mark/sweep over Ref.Trace
// ---------------------------------------------------------------------------

// Stats holds the results of a single collection.
type Stats struct {
	Marked    int
	Swept     int
	Live      int
	Duration  time.Duration
	Timestamp time.Time
}

// RootFunc returns the current root set. It is called with the world lock
// held.
type RootFunc func() []Ref

// Collector marks everything reachable from a root set by calling Trace on
// each reached value, then sweeps tracked records that were not reached.
//
// The collector knows nothing about object layout. Every owning reference
// it follows is reported by the value's own Trace.
type Collector struct {
	heap     *Heap
	roots    RootFunc
	interval time.Duration
	enabled  atomic.Bool

	mu  sync.Mutex
	run *backgroundRun // nil while stopped

	collections atomic.Uint64
	last        atomic.Pointer[Stats]
}

// backgroundRun is one Start/Stop cycle of periodic collection.
type backgroundRun struct {
	quit chan struct{}
	done chan struct{}
}

// DefaultInterval is the default period for background collection.
const DefaultInterval = 30 * time.Second

// NewCollector creates a collector over h. roots may be nil when only
// Collect is used with explicit roots.
func NewCollector(h *Heap, roots RootFunc, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = DefaultInterval
	}
	c := &Collector{
		heap:     h,
		roots:    roots,
		interval: interval,
	}
	c.enabled.Store(true)
	return c
}

// Start launches periodic collection from the RootFunc. It does nothing if
// a run is already active.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.run != nil {
		return
	}
	run := &backgroundRun{quit: make(chan struct{}), done: make(chan struct{})}
	c.run = run
	go c.background(run)
}

// Stop ends the active run, if any, and returns once its goroutine has
// exited. A collection already in progress completes first.
func (c *Collector) Stop() {
	c.mu.Lock()
	run := c.run
	c.run = nil
	c.mu.Unlock()

	if run == nil {
		return
	}
	close(run.quit)
	<-run.done
}

// SetEnabled pauses or resumes periodic collections. The background
// goroutine keeps ticking while paused. Collect is unaffected.
func (c *Collector) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// IsEnabled reports whether periodic collections run.
func (c *Collector) IsEnabled() bool {
	return c.enabled.Load()
}

// Interval returns the period of background collection.
func (c *Collector) Interval() time.Duration {
	return c.interval
}

// SweepCount returns how many collections have completed, explicit and
// periodic alike.
func (c *Collector) SweepCount() uint64 {
	return c.collections.Load()
}

// LastStats returns the statistics of the latest collection, or nil
// before the first one.
func (c *Collector) LastStats() *Stats {
	return c.last.Load()
}

// Collect runs one collection from the given roots, or from the
// collector's RootFunc when roots is nil.
func (c *Collector) Collect(roots []Ref) *Stats {
	c.heap.world.Lock()
	defer c.heap.world.Unlock()

	if roots == nil && c.roots != nil {
		roots = c.roots()
	}
	return c.collect(roots)
}

func (c *Collector) background(run *backgroundRun) {
	defer close(run.done)

	tick := time.NewTicker(c.interval)
	defer tick.Stop()

	for {
		select {
		case <-run.quit:
			return
		case <-tick.C:
			if c.IsEnabled() {
				c.Collect(nil)
			}
		}
	}
}

// collect must be called with the world lock held.
func (c *Collector) collect(roots []Ref) *Stats {
	start := time.Now()
	stats := &Stats{Timestamp: start}

	live := Mark(roots)
	stats.Marked = len(live)
	stats.Swept = c.heap.sweep(live)
	stats.Live = c.heap.Len()
	stats.Duration = time.Since(start)

	c.collections.Add(1)
	c.last.Store(stats)

	log.Debugf("collection: marked=%d swept=%d live=%d in %s",
		stats.Marked, stats.Swept, stats.Live, stats.Duration)
	return stats
}

// Mark returns the set of values reachable from roots. It panics on a
// reachable ref that is not comparable.
func Mark(roots []Ref) map[Ref]struct{} {
	marked := make(map[Ref]struct{})
	var work []Ref

	visit := func(ref Ref) {
		if ref == nil {
			return
		}
		mustBeComparable("Mark", ref)
		if _, ok := marked[ref]; ok {
			return
		}
		marked[ref] = struct{}{}
		work = append(work, ref)
	}

	for _, r := range roots {
		visit(r)
	}
	for len(work) > 0 {
		ref := work[len(work)-1]
		work = work[:len(work)-1]
		ref.Trace(visit)
	}
	return marked
}
