package vm

import (
	"fmt"
	"strings"
)

// RuntimeError carries a message plus the innermost-first stack trace
// formatted at the moment the error occurred.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, line := range e.Trace {
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// runtimeError builds a *RuntimeError from the current frame stack,
// innermost frame first, using each frame's current line at
// lines[ip-1].
func (vm *VM) runtimeError(format string, args ...interface{}) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	trace := make([]string, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		line := uint32(0)
		idx := f.IP - 1
		if f.Closure != nil && idx >= 0 && idx < len(f.Closure.Proto.Block.Lines) {
			line = f.Closure.Proto.Block.Lines[idx]
		}
		name := "<toplevel>"
		if f.Closure != nil {
			name = f.Closure.Proto.DisplayName()
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", line, name))
	}
	return &RuntimeError{Message: msg, Trace: trace}
}

// RuntimeErrorf implements objects.Host for host functions.
func (vm *VM) RuntimeErrorf(format string, args ...interface{}) error {
	return vm.runtimeError(format, args...)
}

// raise formats the error, invokes the error hook, and returns it for
// Run to propagate.
func (vm *VM) raise(err *RuntimeError) error {
	if vm.OnError != nil {
		vm.OnError(vm, err.Error())
	}
	return err
}
