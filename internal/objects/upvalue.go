package objects

import "github.com/ember-lang/ember/internal/value"

// Upvalue is a captured variable slot. While open, Slot points into the
// live value stack and reads/writes through the upvalue mutate the
// stack directly. Once closed, Slot is retargeted to point at the
// upvalue's own embedded Closed cell, so Get/Set never need to branch
// on open-vs-closed; open tracks which state we're in for the GC (an
// open upvalue's referent is already covered by the root scan of the
// value stack; a closed one must be marked explicitly) and for the
// VM's open-upvalue list membership.
//
// Open upvalues form an intrusive singly-linked list sorted by
// ascending slot address, rooted at the VM's open-upvalue head; OpenNext
// threads that list. This is deliberately a different field from the
// embedded Header's GC-list Next to keep the two intrusive lists (GC
// allocation list vs. open-upvalue list) independent.
type Upvalue struct {
	value.Header
	Slot     *value.Value
	Closed   value.Value
	open     bool
	OpenNext *Upvalue
}

func NewOpenUpvalue(slot *value.Value) *Upvalue {
	u := &Upvalue{Slot: slot, open: true}
	u.Header = value.NewHeader(value.KindUpvalue)
	return u
}

func (u *Upvalue) IsOpen() bool { return u.open }

// StackSlot returns the stack address this upvalue is currently
// watching while open; used by capture/close_upto to compare addresses.
func (u *Upvalue) StackSlot() *value.Value { return u.Slot }

func (u *Upvalue) Get() value.Value { return *u.Slot }
func (u *Upvalue) Set(v value.Value) { *u.Slot = v }

// Close copies the current slot value into the owned cell and
// retargets Slot to that cell, transitioning the upvalue from open to
// closed.
func (u *Upvalue) Close() {
	u.Closed = *u.Slot
	u.Slot = &u.Closed
	u.open = false
	u.OpenNext = nil
}

// GCReferences marks the closed value only. While open, the referent
// lives on the value stack and is already covered by root rule 1; the
// mark phase must not double-mark it through the upvalue too.
func (u *Upvalue) GCReferences(mark func(value.Value)) {
	if !u.open {
		mark(u.Closed)
	}
}
