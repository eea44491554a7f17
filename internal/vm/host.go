package vm

import (
	"io"

	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// The VM implements objects.Host so CClosures can be invoked without
// internal/objects (or internal/stdlib, which builds CClosures) ever
// importing internal/vm.
var _ objects.Host = (*VM)(nil)

func (vm *VM) Argc() int { return vm.hostArgc }

func (vm *VM) Arg(i int) value.Value {
	if i < 0 || i >= vm.hostArgc {
		return value.Nil()
	}
	return vm.stack[vm.hostArgBase+i]
}

func (vm *VM) Push(v value.Value) { vm.push(v) }
func (vm *VM) Pop() value.Value   { return vm.pop() }

// NewCClosure and NewUserData (alloc.go) already match objects.Host's
// signatures, so the VM satisfies the interface without redeclaring
// them here.

func (vm *VM) Stdout() io.Writer { return vm.out }

// RequireFunc loads and evaluates a module file, returning its final
// value. internal/stdlib's require() builtin calls this indirectly via
// Host.Require; the driver (cmd/ember) wires an implementation that
// compiles+runs a source file with this same VM so globals/GC state are
// shared across modules.
type RequireFunc func(vm *VM, path string) (value.Value, error)

// SetRequireFunc installs the module loader. internal/compiler and
// internal/vm never need to import each other this way: cmd/ember wires
// the real implementation once at startup.
func (vm *VM) SetRequireFunc(fn RequireFunc) { vm.requireFn = fn }

func (vm *VM) Require(path string) (value.Value, error) {
	if vm.requireFn == nil {
		return value.Nil(), vm.runtimeError("require is not available in this embedding")
	}
	return vm.requireFn(vm, path)
}
