package heap

import (
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"
)

// node is a minimal heap record for collector tests.
type node struct {
	name string
	kids []Ref
}

func (n *node) Trace(visit Visitor) {
	for _, k := range n.kids {
		visit(k)
	}
}

func (n *node) Kind() string   { return "node" }
func (n *node) String() string { return n.name }

func newNode(h *Heap, name string, kids ...Ref) *node {
	n := &node{name: name, kids: kids}
	Track(h, n)
	return n
}

func TestMarkReachesEverything(t *testing.T) {
	leaf := &node{name: "leaf"}
	mid := &node{name: "mid", kids: []Ref{leaf, Int(1)}}
	root := &node{name: "root", kids: []Ref{mid, leaf}}

	live := Mark([]Ref{root, nil})
	for _, r := range []Ref{root, mid, leaf, Int(1)} {
		if _, ok := live[r]; !ok {
			t.Errorf("%v should be marked", r)
		}
	}
	if len(live) != 4 {
		t.Errorf("marked %d, want 4", len(live))
	}
}

func TestMarkHandlesCycles(t *testing.T) {
	a := &node{name: "a"}
	b := &node{name: "b", kids: []Ref{a}}
	a.kids = []Ref{b, a}

	live := Mark([]Ref{a})
	if len(live) != 2 {
		t.Errorf("marked %d, want 2", len(live))
	}
}

func TestCollectSweepsUnreachable(t *testing.T) {
	h := New()
	leaf := newNode(h, "leaf")
	root := newNode(h, "root", leaf)
	garbage := newNode(h, "garbage", leaf)
	cycleA := newNode(h, "cycleA")
	cycleB := newNode(h, "cycleB", cycleA)
	cycleA.kids = []Ref{cycleB}

	c := NewCollector(h, func() []Ref { return []Ref{root} }, 0)
	stats := c.Collect(nil)

	if stats.Swept != 3 {
		t.Errorf("Swept = %d, want 3", stats.Swept)
	}
	if stats.Live != 2 || h.Len() != 2 {
		t.Errorf("Live = %d, heap len = %d; want 2", stats.Live, h.Len())
	}
	if !h.Tracked(root) || !h.Tracked(leaf) {
		t.Error("reachable nodes should survive")
	}
	for _, n := range []*node{garbage, cycleA, cycleB} {
		if h.Tracked(n) {
			t.Errorf("%s should be swept", n.name)
		}
	}
	if c.SweepCount() != 1 || c.LastStats() != stats {
		t.Error("collector should record the collection")
	}
}

func TestCollectExplicitRoots(t *testing.T) {
	h := New()
	a := newNode(h, "a")
	b := newNode(h, "b")

	c := NewCollector(h, func() []Ref { return []Ref{a} }, 0)
	c.Collect([]Ref{b})
	if h.Tracked(a) || !h.Tracked(b) {
		t.Error("explicit roots should replace the RootFunc")
	}
}

func TestCollectIsIdempotent(t *testing.T) {
	h := New()
	root := newNode(h, "root", newNode(h, "kid"))
	c := NewCollector(h, nil, 0)

	c.Collect([]Ref{root})
	stats := c.Collect([]Ref{root})
	if stats.Swept != 0 || stats.Live != 2 {
		t.Errorf("second collection swept %d, live %d; want 0, 2", stats.Swept, stats.Live)
	}
}

func TestCollectorDefaults(t *testing.T) {
	c := NewCollector(New(), nil, 0)
	if c.Interval() != DefaultInterval {
		t.Errorf("Interval() = %s, want %s", c.Interval(), DefaultInterval)
	}
	if !c.IsEnabled() {
		t.Error("collector should start enabled")
	}
	if c.LastStats() != nil {
		t.Error("LastStats should be nil before any collection")
	}
	c.Stop() // never started
}

func TestCollectorBackground(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New()
	root := newNode(h, "root")
	newNode(h, "garbage")

	c := NewCollector(h, func() []Ref { return []Ref{root} }, 5*time.Millisecond)
	c.Start()
	c.Start() // second start is a no-op

	deadline := time.Now().Add(2 * time.Second)
	for c.SweepCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	c.Stop()
	c.Stop()

	if c.SweepCount() == 0 {
		t.Fatal("background collector never ran")
	}
	if h.Len() != 1 {
		t.Errorf("heap len = %d, want 1", h.Len())
	}
}

func TestCollectorDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New()
	newNode(h, "garbage")
	c := NewCollector(h, func() []Ref { return nil }, time.Millisecond)
	c.SetEnabled(false)
	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	if c.SweepCount() != 0 || h.Len() != 1 {
		t.Errorf("disabled collector swept (count=%d, len=%d)", c.SweepCount(), h.Len())
	}
}

func TestDoExcludesCollection(t *testing.T) {
	h := New()
	c := NewCollector(h, func() []Ref { return nil }, 0)

	done := make(chan struct{})
	h.Do(func() {
		go func() {
			c.Collect(nil)
			close(done)
		}()
		// Allocated inside the mutator section; the collector is blocked
		// until Do returns, so this record is swept afterwards, not during.
		newNode(h, "temp")
		select {
		case <-done:
			t.Error("collection ran inside a mutator section")
		case <-time.After(10 * time.Millisecond):
		}
	})
	<-done
	if h.Len() != 0 {
		t.Errorf("heap len = %d, want 0", h.Len())
	}
}

// refList is a Ref whose dynamic type cannot be a map key.
type refList []Ref

func (l refList) Trace(visit Visitor) {
	for _, r := range l {
		visit(r)
	}
}

func expectPanic(t *testing.T, want string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		msg, _ := r.(string)
		if !strings.Contains(msg, want) {
			t.Errorf("panic = %v, want it to mention %q", r, want)
		}
	}()
	fn()
}

func TestNonComparableRefsRejected(t *testing.T) {
	list := refList{Int(1)}

	expectPanic(t, "heap.Track: heap.refList is not comparable", func() {
		New().Track(list)
	})
	expectPanic(t, "heap.Mark: heap.refList is not comparable", func() {
		Mark([]Ref{&node{name: "root", kids: []Ref{list}}})
	})
	expectPanic(t, "heap.TakeSnapshot: heap.refList is not comparable", func() {
		TakeSnapshot([]Ref{list})
	})
}
