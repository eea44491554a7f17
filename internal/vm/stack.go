package vm

import "github.com/ember-lang/ember/internal/value"

func (vm *VM) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		panic(vm.runtimeError("stack overflow"))
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

// peek returns the value `dist` slots below the top without popping;
// peek(0) is the top of stack.
func (vm *VM) peek(dist int) value.Value {
	return vm.stack[vm.sp-1-dist]
}

func (vm *VM) setTop(v value.Value) {
	vm.stack[vm.sp-1] = v
}
