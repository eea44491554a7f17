package objects

import "github.com/ember-lang/ember/internal/value"

// Closure pairs a CodeBlock with a fixed-size array of Upvalue
// references. The same CodeBlock may back many Closures with different
// upvalue bindings; once make_func fills Upvals, its length never
// changes.
type Closure struct {
	value.Header
	Proto  *CodeBlock
	Upvals []*Upvalue
}

func NewClosure(proto *CodeBlock) *Closure {
	c := &Closure{Proto: proto, Upvals: make([]*Upvalue, proto.NumUpvalues)}
	c.Header = value.NewHeader(value.KindClosure)
	return c
}

// GCReferences walks the closure's prototype and every upvalue it
// captured.
func (c *Closure) GCReferences(mark func(value.Value)) {
	if c.Proto != nil {
		mark(value.FromObject(c.Proto))
	}
	for _, uv := range c.Upvals {
		if uv != nil {
			mark(value.FromObject(uv))
		}
	}
}
