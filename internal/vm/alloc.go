package vm

import (
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// collectIfNeeded is the first half of make<T>: at the top of every
// allocation, if bytes_allocated has crossed next_gc, a full collection
// runs before the new object is created.
func (vm *VM) collectIfNeeded() {
	if vm.gc.ShouldCollect() {
		vm.gc.Collect()
	}
}

func (vm *VM) NewStringBytes(b []byte, hash uint32) *objects.String {
	vm.collectIfNeeded()
	s := objects.NewString(b, hash)
	vm.gc.Register(s)
	return s
}

func (vm *VM) newTableRaw() *objects.Table {
	vm.collectIfNeeded()
	t := objects.NewTable()
	vm.gc.Register(t)
	return t
}

func (vm *VM) NewTable() *objects.Table { return vm.newTableRaw() }

func (vm *VM) NewCodeBlock(name *objects.String) *objects.CodeBlock {
	vm.collectIfNeeded()
	cb := objects.NewCodeBlock(name)
	vm.gc.Register(cb)
	return cb
}

func (vm *VM) NewClosure(proto *objects.CodeBlock) *objects.Closure {
	vm.collectIfNeeded()
	c := objects.NewClosure(proto)
	vm.gc.Register(c)
	return c
}

func (vm *VM) NewCClosure(name string, fn objects.HostFunc) *objects.CClosure {
	vm.collectIfNeeded()
	c := objects.NewCClosure(name, fn)
	vm.gc.Register(c)
	return c
}

func (vm *VM) NewUserData(tag string, data interface{}) *objects.UserData {
	vm.collectIfNeeded()
	u := objects.NewUserData(tag, data)
	vm.gc.Register(u)
	return u
}

// Intern funnels string construction through the interner (component C):
// on a hit it returns the existing String; on a miss it allocates a new
// one via the VM's make<T>, so interning participates in GC accounting
// exactly like any other allocation.
func (vm *VM) Intern(s string) *objects.String {
	return vm.interner.Intern([]byte(s), func(b []byte, hash uint32) *objects.String {
		owned := make([]byte, len(b))
		copy(owned, b)
		return vm.NewStringBytes(owned, hash)
	})
}

// Protect/Unprotect expose the gc-protect root set to callers —
// primarily the compiler and stdlib host functions — that need to hold
// a local reference to a freshly allocated object across a further
// allocation before it becomes reachable any other way.
func (vm *VM) Protect(o value.Object)   { vm.gc.Protect(o) }
func (vm *VM) Unprotect(o value.Object) { vm.gc.Unprotect(o) }
