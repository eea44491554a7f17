package objects

import (
	"fmt"

	"github.com/ember-lang/ember/internal/table"
	"github.com/ember-lang/ember/internal/value"
)

// Table is the language's hash map. Get/Set reject Nil keys with an
// error, matching the "nil as table key" runtime-error rule; storing
// Nil as a value is equivalent to deletion (the underlying table.Table
// already implements that half of the rule).
type Table struct {
	value.Header
	entries *table.Table

	// Proto is the table's metaproto for prototype-style dispatch,
	// installed by the setproto(tbl, proto) stdlib function.
	Proto *Table
}

func NewTable() *Table {
	t := &Table{entries: table.New()}
	t.Header = value.NewHeader(value.KindTable)
	return t
}

// Get looks up key in t's own entries first; a miss (indistinguishable
// from a key explicitly set to Nil, since storing Nil is deletion) falls
// through to Proto, recursively, giving setproto's metaproto dispatch
// an actual effect on lookups instead of just on the GC walk.
func (t *Table) Get(key value.Value) (value.Value, error) {
	if key.IsNil() {
		return value.Nil(), fmt.Errorf("table index is nil")
	}
	v := t.entries.Get(key)
	if v.IsNil() && t.Proto != nil {
		return t.Proto.Get(key)
	}
	return v, nil
}

func (t *Table) Set(key value.Value, v value.Value) error {
	if key.IsNil() {
		return fmt.Errorf("table index is nil")
	}
	t.entries.Set(key, v)
	return nil
}

func (t *Table) Len() int { return t.entries.Len() }

func (t *Table) Each(fn func(key, val value.Value)) { t.entries.Each(fn) }

// GCReferences marks every live key and value plus the metaproto, if
// any.
func (t *Table) GCReferences(mark func(value.Value)) {
	t.entries.Each(func(k, v value.Value) {
		mark(k)
		mark(v)
	})
	if t.Proto != nil {
		mark(value.FromObject(t.Proto))
	}
}
