package gc_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/gc"
	"github.com/ember-lang/ember/internal/value"
)

// node is a minimal value.Object + value.Referencer the collector can
// walk, standing in for a real heap object (String/Table/...) so these
// tests exercise gc.Collector in isolation from internal/objects.
type node struct {
	value.Header
	children []*node
	closed   bool
}

func newNode() *node {
	n := &node{}
	n.Header = value.NewHeader(value.KindTable)
	return n
}

func (n *node) GCReferences(mark func(value.Value)) {
	for _, c := range n.children {
		mark(value.FromObject(c))
	}
}

func (n *node) Close() error {
	n.closed = true
	return nil
}

// fakeRoots lets each test control exactly what the collector sees as
// reachable from the root set.
type fakeRoots struct {
	roots []*node
}

func (r *fakeRoots) ScanRoots(mark func(value.Value)) {
	for _, n := range r.roots {
		mark(value.FromObject(n))
	}
}

func newCollectorWithRoots(roots ...*node) (*gc.Collector, *fakeRoots) {
	fr := &fakeRoots{roots: roots}
	c := gc.New(fr, nil)
	return c, fr
}

func TestSweepFreesUnreachableObjects(t *testing.T) {
	reachable := newNode()
	unreachable := newNode()
	c, _ := newCollectorWithRoots(reachable)
	c.Register(reachable)
	c.Register(unreachable)

	c.Collect()

	if unreachable.Marked() {
		t.Fatal("unreachable object still marked after sweep")
	}
	if !unreachable.closed {
		t.Fatal("an io.Closer unreachable object was not closed during sweep")
	}
	if c.LastSwept != 1 {
		t.Fatalf("LastSwept = %d, want 1", c.LastSwept)
	}
}

func TestMarkTracesThroughReferences(t *testing.T) {
	child := newNode()
	parent := newNode()
	parent.children = []*node{child}
	c, _ := newCollectorWithRoots(parent)
	c.Register(parent)
	c.Register(child)

	c.Collect()

	if c.LastSwept != 0 {
		t.Fatalf("LastSwept = %d, want 0 (child reachable transitively through parent)", c.LastSwept)
	}
}

func TestProtectKeepsObjectAliveAcrossCollect(t *testing.T) {
	protected := newNode()
	c, _ := newCollectorWithRoots() // no roots at all
	c.Register(protected)
	c.Protect(protected)

	c.Collect()

	if c.LastSwept != 0 {
		t.Fatal("a protected object was swept despite having no root path")
	}

	c.Unprotect(protected)
	c.Collect()
	if c.LastSwept != 1 {
		t.Fatalf("LastSwept after Unprotect = %d, want 1", c.LastSwept)
	}
}

func TestProtectIsRefCounted(t *testing.T) {
	protected := newNode()
	c, _ := newCollectorWithRoots()
	c.Register(protected)
	c.Protect(protected)
	c.Protect(protected)
	c.Unprotect(protected)

	c.Collect()
	if c.LastSwept != 0 {
		t.Fatal("object swept after only one of two Protect calls was balanced by Unprotect")
	}
}

func TestShouldCollectCrossesThreshold(t *testing.T) {
	c, _ := newCollectorWithRoots()
	c.SetTuning(1, 2)
	if c.ShouldCollect() {
		t.Fatal("ShouldCollect true with zero bytes allocated")
	}
	c.Register(newNode())
	if !c.ShouldCollect() {
		t.Fatal("ShouldCollect false after crossing a 1-byte initial limit")
	}
}

func TestSetTuningIgnoresZeroValues(t *testing.T) {
	c, _ := newCollectorWithRoots()
	c.SetTuning(500, 0)
	if c.NextGC != 500 {
		t.Fatalf("NextGC = %d, want 500", c.NextGC)
	}
	c.SetTuning(0, 9) // zero initialLimit must leave NextGC's prior override alone
	if c.NextGC != 500 {
		t.Fatalf("NextGC after zero-valued SetTuning = %d, want unchanged 500", c.NextGC)
	}
}

type fakeWeak struct {
	released []value.Object
}

func (w *fakeWeak) ReleaseIfDead(o value.Object) {
	w.released = append(w.released, o)
}

func TestSweepNotifiesWeakTable(t *testing.T) {
	unreachable := newNode()
	weak := &fakeWeak{}
	c := gc.New(&fakeRoots{}, weak)
	c.Register(unreachable)

	c.Collect()

	if len(weak.released) != 1 || weak.released[0] != unreachable {
		t.Fatalf("weak table was not notified of the swept object: %v", weak.released)
	}
}
