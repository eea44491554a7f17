// Package intern implements content-addressed string deduplication
// (component C). It is a weak table: entries do not keep their String
// alive by themselves (see internal/gc's sweep phase, which clears an
// entry the moment its String is collected), so intern never grows
// without bound just because code concatenates many transient strings.
package intern

import (
	"bytes"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

type bucket struct {
	str  *objects.String
	used bool
}

// Interner probes by (byte-content, length); on hit it returns the
// existing String, on miss it allocates one via the supplied factory
// and inserts it.
type Interner struct {
	buckets []bucket
	count   int
}

func New() *Interner {
	return &Interner{buckets: make([]bucket, 64)}
}

// Intern returns the canonical *objects.String for bytes, allocating a
// new one (via alloc) only on a miss. alloc lets the caller route the
// allocation through the VM's make<T> (so it counts against
// bytes_allocated and can trigger a collection).
func (in *Interner) Intern(bytes_ []byte, alloc func(b []byte, hash uint32) *objects.String) *objects.String {
	hash := objects.Hash32(bytes_)
	if idx, ok := in.find(bytes_, hash); ok {
		return in.buckets[idx].str
	}
	if float64(in.count+1) > float64(len(in.buckets))*0.7 {
		in.grow()
	}
	s := alloc(bytes_, hash)
	idx := in.slotFor(bytes_, hash)
	in.buckets[idx] = bucket{str: s, used: true}
	in.count++
	return s
}

func (in *Interner) find(b []byte, hash uint32) (int, bool) {
	if len(in.buckets) == 0 {
		return 0, false
	}
	mask := uint32(len(in.buckets) - 1)
	idx := hash & mask
	for i := 0; i < len(in.buckets); i++ {
		e := &in.buckets[idx]
		if !e.used {
			return 0, false
		}
		if e.str != nil && bytes.Equal(e.str.Bytes, b) {
			return int(idx), true
		}
		idx = (idx + 1) & mask
	}
	return 0, false
}

func (in *Interner) slotFor(b []byte, hash uint32) int {
	mask := uint32(len(in.buckets) - 1)
	idx := hash & mask
	for {
		e := &in.buckets[idx]
		if !e.used || e.str == nil {
			return int(idx)
		}
		idx = (idx + 1) & mask
	}
}

func (in *Interner) grow() {
	old := in.buckets
	in.buckets = make([]bucket, len(old)*2)
	in.count = 0
	for _, e := range old {
		if e.used && e.str != nil {
			idx := in.slotFor(e.str.Bytes, e.str.Hash)
			in.buckets[idx] = bucket{str: e.str, used: true}
			in.count++
		}
	}
}

// ReleaseIfDead clears the slot for o, if o is a *objects.String
// currently interned, without freeing anything itself; called by the
// GC's sweep phase for every object it is about to reclaim, so that
// the interner's reference turns into a true weak reference. Takes
// value.Object (not *objects.String) so internal/gc can call it without
// importing internal/objects.
func (in *Interner) ReleaseIfDead(o value.Object) {
	s, ok := o.(*objects.String)
	if !ok {
		return
	}
	idx, ok := in.find(s.Bytes, s.Hash)
	if !ok {
		return
	}
	in.buckets[idx].str = nil
	in.count--
}

// Each walks every live interned string. It exists for diagnostics
// only: per root rule 5 the interner itself is never scanned as a root,
// so this must not be wired into the GC's mark phase.
func (in *Interner) Each(fn func(s *objects.String)) {
	for _, e := range in.buckets {
		if e.used && e.str != nil {
			fn(e.str)
		}
	}
}
