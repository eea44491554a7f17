package vm

import "github.com/ember-lang/ember/internal/objects"

// FramesMax bounds call depth; StackPerFrame is the nominal per-frame
// stack budget the design doc quotes (256), and StackMax sizes the
// backing array once so that pointers into it (used by open upvalues)
// never move.
const (
	FramesMax     = 256
	StackPerFrame = 256
	StackMax      = FramesMax * StackPerFrame
)

// CallFrame is a window into the shared value stack: base indexes the
// callee's own slot (base[0] == callee, base[1..N] == arguments), and
// IP is this frame's own instruction pointer, saved/restored across
// calls by virtue of CallFrame being a value type in the frame array.
type CallFrame struct {
	Closure *objects.Closure
	Base    int
	IP      int
}
