// Package gc implements the tri-color mark-and-sweep collector
// (component I). It depends only on internal/value: objects are walked
// purely through value.Object, value.Referencer, and the standard
// io.Closer interface, so this package has no idea internal/objects
// exists.
package gc

import (
	"io"

	"github.com/ember-lang/ember/internal/value"
)

// InitialGCLimit is the floor for next_gc, matching the original
// implementation's constant.
const InitialGCLimit = 1024 * 1024

// GrowthFactor multiplies bytes_allocated to get the next collection
// threshold after a sweep.
const GrowthFactor = 2

// WeakTable lets the collector clear an interner-style weak reference
// to an object the instant it's about to be freed. internal/intern
// implements this.
type WeakTable interface {
	ReleaseIfDead(o value.Object)
}

// RootScanner is implemented by the VM: ScanRoots must call mark for
// every Value directly reachable as a root (stack slots, frame
// closures wrapped as Values, open-upvalue nodes wrapped as Values,
// and the globals table wrapped as a Value). Objects held through
// Protect, including the compiler's in-progress CodeBlocks, are marked
// by the Collector itself and need not be reported here.
type RootScanner interface {
	ScanRoots(mark func(value.Value))
}

// Collector owns the master allocation list and drives collection.
// RootScanner and WeakTable are supplied at construction because a
// Collector is 1:1 with a VM for its whole lifetime.
type Collector struct {
	roots  RootScanner
	weak   WeakTable
	head   value.Object
	gray   []value.Object
	protect map[value.Object]int

	BytesAllocated uint64
	NextGC         uint64

	initialLimit  uint64
	growthFactor  uint64

	// LastSwept/LastFreedBytes record the outcome of the most recent
	// collection, surfaced for diagnostics/tests.
	LastSwept      int
	LastFreedBytes uint64
}

func New(roots RootScanner, weak WeakTable) *Collector {
	return &Collector{
		roots:        roots,
		weak:         weak,
		protect:      make(map[value.Object]int),
		NextGC:       InitialGCLimit,
		initialLimit: InitialGCLimit,
		growthFactor: GrowthFactor,
	}
}

// SetTuning overrides the collection thresholds, used by cmd/ember when
// an ember.yaml supplies initial_gc_limit/gc_growth_factor. Zero values
// leave the corresponding default untouched.
func (c *Collector) SetTuning(initialLimit uint64, growthFactor uint64) {
	if initialLimit > 0 {
		c.initialLimit = initialLimit
		c.NextGC = initialLimit
	}
	if growthFactor > 0 {
		c.growthFactor = growthFactor
	}
}

// Register links a freshly allocated object into the master list and
// accounts its size. internal/vm calls it exactly once per allocation,
// right after that allocation's collection check (collectIfNeeded), so
// o is never swept by the check that preceded it and is on the list
// for every later cycle.
func (c *Collector) Register(o value.Object) {
	o.SetNext(c.head)
	c.head = o
	c.BytesAllocated += estimateSize(o)
}

// ShouldCollect reports whether bytes_allocated has crossed next_gc,
// the trigger make<T> checks before constructing a new object.
func (c *Collector) ShouldCollect() bool {
	return c.BytesAllocated >= c.NextGC
}

// Protect adds o to the explicit gc-protect root set. Protection is
// reference-counted, so nested protect/unprotect pairs on the same
// object compose correctly: o stays protected until every Protect has
// been matched by an Unprotect.
func (c *Collector) Protect(o value.Object) {
	if o == nil {
		return
	}
	c.protect[o]++
}

func (c *Collector) Unprotect(o value.Object) {
	if o == nil {
		return
	}
	if n, ok := c.protect[o]; ok {
		if n <= 1 {
			delete(c.protect, o)
		} else {
			c.protect[o] = n - 1
		}
	}
}

// Collect runs one full stop-the-world mark-and-sweep cycle.
func (c *Collector) Collect() {
	c.mark()
	c.trace()
	c.sweep()
	c.NextGC = c.BytesAllocated * c.growthFactor
	if c.NextGC < c.initialLimit {
		c.NextGC = c.initialLimit
	}
}

func (c *Collector) mark() {
	c.gray = c.gray[:0]
	markFn := func(v value.Value) {
		if v.IsObject() {
			c.markObject(v.AsObject())
		}
	}
	c.roots.ScanRoots(markFn)
	for o := range c.protect {
		c.markObject(o)
	}
}

func (c *Collector) markObject(o value.Object) {
	if o == nil || o.Marked() {
		return
	}
	o.SetMarked(true)
	c.gray = append(c.gray, o)
}

// trace drains the gray worklist, blackening each object by walking its
// outgoing references (if it implements value.Referencer) and marking
// anything unmarked found along the way.
func (c *Collector) trace() {
	for len(c.gray) > 0 {
		o := c.gray[len(c.gray)-1]
		c.gray = c.gray[:len(c.gray)-1]
		if ref, ok := o.(value.Referencer); ok {
			ref.GCReferences(func(v value.Value) {
				if v.IsObject() {
					c.markObject(v.AsObject())
				}
			})
		}
	}
}

// sweep walks the master list, unlinking and destroying every unmarked
// object, and resets the mark bit on every object that survives.
func (c *Collector) sweep() {
	var prev value.Object
	cur := c.head
	swept := 0
	var freed uint64
	for cur != nil {
		next := cur.Next()
		if cur.Marked() {
			cur.SetMarked(false)
			prev = cur
			cur = next
			continue
		}
		// unreachable: unlink, release any weak reference, close any
		// host resource, and drop it.
		if prev == nil {
			c.head = next
		} else {
			prev.SetNext(next)
		}
		if c.weak != nil {
			c.weak.ReleaseIfDead(cur)
		}
		if closer, ok := cur.(io.Closer); ok {
			_ = closer.Close()
		}
		swept++
		freed += estimateSize(cur)
		cur = next
	}
	c.LastSwept = swept
	c.LastFreedBytes = freed
	if freed > c.BytesAllocated {
		c.BytesAllocated = 0
	} else {
		c.BytesAllocated -= freed
	}
}

// estimateSize is a coarse per-object accounting figure: the collector
// doesn't need exact byte counts to be correct, only monotonic ones
// that make the growth-factor heuristic behave sensibly.
func estimateSize(o value.Object) uint64 {
	switch o.Kind() {
	case value.KindString:
		return 64
	case value.KindTable:
		return 96
	case value.KindCodeBlock:
		return 128
	case value.KindClosure:
		return 48
	case value.KindUpvalue:
		return 32
	case value.KindCClosure:
		return 32
	default:
		return 48
	}
}
