// Package table implements the open-addressed Value→Value hash map
// used both for language-level Table objects and, indirectly, for
// global variables (component D). A key mapping to Nil means "absent":
// inserting Nil at a key deletes it, exactly as the invariant requires.
package table

import "github.com/ember-lang/ember/internal/value"

const loadFactorMax = 0.75

type entry struct {
	key      value.Value
	val      value.Value
	present  bool // false both for never-used slots and for tombstones
	occupied bool // true once a slot has ever held an entry (tombstone marker)
}

// Table is a linear-probing open-addressing hash table keyed by
// value.Value, using value.Value.HashKey for bucket placement.
type Table struct {
	entries []entry
	count   int // live entries, excludes tombstones
}

func New() *Table {
	return &Table{entries: make([]entry, 8)}
}

func (t *Table) Len() int { return t.count }

// Get returns the stored value, or Nil if absent. The key must not be
// Nil; that is the caller's (objects.Table's) responsibility to check,
// since this low-level table has no notion of "runtime error".
func (t *Table) Get(key value.Value) value.Value {
	if len(t.entries) == 0 {
		return value.Nil()
	}
	idx, found := t.find(key)
	if !found {
		return value.Nil()
	}
	return t.entries[idx].val
}

// Set stores v at key; storing Nil deletes the entry.
func (t *Table) Set(key value.Value, v value.Value) {
	if v.IsNil() {
		t.delete(key)
		return
	}
	if float64(t.count+1) > float64(len(t.entries))*loadFactorMax {
		t.grow()
	}
	idx := t.slotFor(key)
	e := &t.entries[idx]
	wasNew := !e.present
	e.key = key
	e.val = v
	e.present = true
	e.occupied = true
	if wasNew {
		t.count++
	}
}

func (t *Table) delete(key value.Value) {
	idx, found := t.find(key)
	if !found {
		return
	}
	t.entries[idx].present = false
	// entries[idx].occupied stays true: it's now a tombstone, so probes
	// for other keys keep walking past it instead of stopping short.
	t.count--
}

// find locates the slot currently holding key, if any.
func (t *Table) find(key value.Value) (int, bool) {
	if len(t.entries) == 0 {
		return 0, false
	}
	mask := uint64(len(t.entries) - 1)
	idx := key.HashKey() & mask
	for {
		e := &t.entries[idx]
		if !e.occupied {
			return 0, false
		}
		if e.present && value.Equal(e.key, key) {
			return int(idx), true
		}
		idx = (idx + 1) & mask
	}
}

// slotFor locates the slot key should occupy: either its existing slot,
// or the first tombstone/empty slot found while probing, reusing
// tombstones to keep probe sequences short.
func (t *Table) slotFor(key value.Value) int {
	mask := uint64(len(t.entries) - 1)
	idx := key.HashKey() & mask
	var firstTombstone = -1
	for {
		e := &t.entries[idx]
		if !e.occupied {
			if firstTombstone != -1 {
				return firstTombstone
			}
			return int(idx)
		}
		if e.present && value.Equal(e.key, key) {
			return int(idx)
		}
		if !e.present && firstTombstone == -1 {
			firstTombstone = int(idx)
		}
		idx = (idx + 1) & mask
	}
}

func (t *Table) grow() {
	old := t.entries
	t.entries = make([]entry, len(old)*2)
	t.count = 0
	for _, e := range old {
		if e.present {
			t.Set(e.key, e.val)
		}
	}
}

// Each calls fn for every live key/value pair, in unspecified order. The
// GC's mark phase uses this to walk a table's outgoing references.
func (t *Table) Each(fn func(key, val value.Value)) {
	for _, e := range t.entries {
		if e.present {
			fn(e.key, e.val)
		}
	}
}
