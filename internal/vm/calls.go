package vm

import (
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// call dispatches call_func's callee: a Closure pushes a new CallFrame;
// a CClosure is invoked directly; anything else is a type error.
func (vm *VM) call(callee value.Value, argc int) error {
	if !callee.IsObject() {
		return vm.runtimeError("attempt to call a %s value", callee.TypeName())
	}
	switch o := callee.AsObject().(type) {
	case *objects.Closure:
		return vm.callClosure(o, argc)
	case *objects.CClosure:
		return vm.callCClosure(o, argc)
	default:
		return vm.runtimeError("attempt to call a %s value", callee.TypeName())
	}
}

// callClosure implements the calling convention and arity normalization:
// pad with Nil if A < P, discard excess from the top if A > P, then set
// base so base[0] is the callee and base[1..N] are arguments.
func (vm *VM) callClosure(cl *objects.Closure, argc int) error {
	params := cl.Proto.NumParams
	for argc < params {
		vm.push(value.Nil())
		argc++
	}
	for argc > params {
		vm.pop()
		argc--
	}
	if vm.frameCount >= FramesMax {
		return vm.runtimeError("stack overflow")
	}
	base := vm.sp - argc - 1
	vm.frames[vm.frameCount] = CallFrame{Closure: cl, Base: base, IP: 0}
	vm.frameCount++
	return nil
}

// callCClosure invokes a host function with its argument window set,
// then tears down the callee+arguments and pushes the single result.
func (vm *VM) callCClosure(cc *objects.CClosure, argc int) error {
	base := vm.sp - argc - 1
	savedBase, savedArgc := vm.hostArgBase, vm.hostArgc
	vm.hostArgBase, vm.hostArgc = base+1, argc

	result, err := cc.Fn(vm, argc)

	vm.hostArgBase, vm.hostArgc = savedBase, savedArgc
	if err != nil {
		return err
	}
	vm.sp = base
	vm.push(result)
	return nil
}
