package objects

import (
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/value"
)

// CodeBlock is a function prototype: the compiler emits one per
// function literal. It is immutable once emitted and may back many
// Closures with different upvalue bindings.
type CodeBlock struct {
	value.Header
	Name         *String
	NumParams    int
	NumUpvalues  int
	MaxStackSize int
	Block        *bytecode.Block
}

func NewCodeBlock(name *String) *CodeBlock {
	cb := &CodeBlock{Name: name, Block: bytecode.NewBlock()}
	cb.Header = value.NewHeader(value.KindCodeBlock)
	return cb
}

// GCReferences walks the codeblock's outgoing references: its name and
// every value.Value in its constant pool (which may themselves be
// Object values, e.g. nested function prototypes or string literals).
func (cb *CodeBlock) GCReferences(mark func(value.Value)) {
	if cb.Name != nil {
		mark(value.FromObject(cb.Name))
	}
	for _, c := range cb.Block.Constants {
		mark(c)
	}
}

func (cb *CodeBlock) DisplayName() string {
	if cb.Name == nil {
		return "<anonymous>"
	}
	return cb.Name.Text()
}
