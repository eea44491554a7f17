// Package vm implements call frames, the upvalue chain, and the
// fetch-decode-dispatch interpreter loop (components F, G, H). It is
// the one package that ties value, objects, bytecode, table, intern,
// and gc together.
package vm

import (
	"io"
	"os"

	"github.com/ember-lang/ember/internal/gc"
	"github.com/ember-lang/ember/internal/intern"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/stdlib"
	"github.com/ember-lang/ember/internal/value"
)

// ErrorHook is a pluggable error callback, invoked once per
// unrecoverable runtime error with a pre-formatted, multi-line message.
type ErrorHook func(vm *VM, message string)

// VM owns the value stack, frame stack, open-upvalue list, global
// table, interner, and GC — exclusively; nothing outside the VM mutates
// them, so no synchronization is required.
type VM struct {
	stack []value.Value
	sp    int

	frames     [FramesMax]CallFrame
	frameCount int

	openUpvalues *objects.Upvalue

	Globals *objects.Table

	interner *intern.Interner
	gc       *gc.Collector

	OnError ErrorHook
	out     io.Writer

	// hostArgBase/hostArgc delimit the argument window visible to the
	// currently executing CClosure via Host.Arg/Host.Argc. Saved and
	// restored around each call so a host function calling back into
	// the VM (e.g. require()) nests correctly.
	hostArgBase int
	hostArgc    int

	requireFn RequireFunc
}

func New() *VM {
	m := &VM{
		stack: make([]value.Value, StackMax),
		out:   os.Stdout,
	}
	m.interner = intern.New()
	m.gc = gc.New(m, m.interner)
	m.Globals = m.newTableRaw()
	m.OnError = defaultErrorHook
	stdlib.Install(m.Globals, m)
	return m
}

func defaultErrorHook(_ *VM, message string) {
	io.WriteString(os.Stderr, message)
	io.WriteString(os.Stderr, "\n")
}

func (vm *VM) SetOutput(w io.Writer) { vm.out = w }

// SetGCTuning forwards to the collector; cmd/ember calls this once at
// startup from a loaded RuntimeConfig.
func (vm *VM) SetGCTuning(initialLimit, growthFactor uint64) {
	vm.gc.SetTuning(initialLimit, growthFactor)
}

// ScanRoots implements gc.RootScanner: the value stack, every live
// frame's closure, every open upvalue, and the globals table.
// Compiler-protected objects (root rule 6) are not scanned here: the
// compiler holds them through Protect/Unprotect, and the collector marks
// that gc-protect set itself, including while require() compiles a
// module in the middle of a run.
func (vm *VM) ScanRoots(mark func(value.Value)) {
	for i := 0; i < vm.sp; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		if vm.frames[i].Closure != nil {
			mark(value.FromObject(vm.frames[i].Closure))
		}
	}
	for uv := vm.openUpvalues; uv != nil; uv = uv.OpenNext {
		mark(value.FromObject(uv))
	}
	if vm.Globals != nil {
		mark(value.FromObject(vm.Globals))
	}
}
