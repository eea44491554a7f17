package vm

import (
	"unsafe"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

func addr(slot *value.Value) uintptr { return uintptr(unsafe.Pointer(slot)) }

// captureUpvalue walks the ascending-by-address open-upvalue list,
// reusing an existing node for this exact slot, or inserting a new one
// in sorted position.
func (vm *VM) captureUpvalue(slot *value.Value) *objects.Upvalue {
	var prev *objects.Upvalue
	cur := vm.openUpvalues
	for cur != nil && addr(cur.StackSlot()) < addr(slot) {
		prev = cur
		cur = cur.OpenNext
	}
	if cur != nil && cur.StackSlot() == slot {
		return cur
	}

	created := objects.NewOpenUpvalue(slot)
	vm.collectIfNeeded()
	vm.gc.Register(created)
	created.OpenNext = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.OpenNext = created
	}
	return created
}

// closeUpto closes every open upvalue at or above the stack slot index
// `limit` (its value copied into its own cell, its Slot retargeted) and
// unlinks it from the open list. Since slot addresses increase with
// stack depth, the open upvalues at-or-above limit form a suffix of the
// ascending-sorted list, so the walk starts at the head, skips anything
// below limit, and closes everything from the first match onward.
func (vm *VM) closeUpto(limit int) {
	limitAddr := addr(&vm.stack[limit])
	cur := vm.openUpvalues
	var prev *objects.Upvalue
	for cur != nil {
		if addr(cur.StackSlot()) < limitAddr {
			prev = cur
			cur = cur.OpenNext
			continue
		}
		next := cur.OpenNext
		cur.Close()
		if prev == nil {
			vm.openUpvalues = next
		} else {
			prev.OpenNext = next
		}
		cur = next
	}
}
