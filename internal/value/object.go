package value

import "unsafe"

// Kind identifies the concrete layout of a heap Object.
type Kind uint8

const (
	KindString Kind = iota
	KindCodeBlock
	KindClosure
	KindCClosure
	KindUpvalue
	KindTable
	KindUserData
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindCodeBlock:
		return "codeblock"
	case KindClosure:
		return "closure"
	case KindCClosure:
		return "cclosure"
	case KindUpvalue:
		return "upvalue"
	case KindTable:
		return "table"
	case KindUserData:
		return "userdata"
	default:
		return "object"
	}
}

// Object is satisfied by every heap-allocated type. The GC walks objects
// purely through this interface, never through concrete types, so the
// mark-sweep collector in internal/gc has no dependency on internal/objects.
type Object interface {
	Kind() Kind
	Marked() bool
	SetMarked(bool)
	Next() Object
	SetNext(Object)
	HashCode() uint64
}

// Header is embedded (not pointer-embedded) by every concrete object type
// and supplies the bookkeeping fields every object needs for the GC's
// intrusive allocation list: the kind tag, the mark bit, and the next
// pointer. Embedding this as the first field means &Header{} and the
// address of the owning struct coincide, so the default HashCode below
// is a legitimate identity hash.
type Header struct {
	kind    Kind
	marked  bool
	next    Object
}

func NewHeader(k Kind) Header {
	return Header{kind: k}
}

func (h *Header) Kind() Kind       { return h.kind }
func (h *Header) Marked() bool     { return h.marked }
func (h *Header) SetMarked(m bool) { h.marked = m }
func (h *Header) Next() Object     { return h.next }
func (h *Header) SetNext(o Object) { h.next = o }

// HashCode is the default identity hash: the address of the header,
// which (since Header is always embedded as the first field) is also
// the address of the owning object. Types with content-addressed
// identity, namely String, override this.
func (h *Header) HashCode() uint64 { return uint64(uintptr(unsafe.Pointer(h))) }

// Referencer is implemented by any Object that holds outgoing
// references to other Values: the GC's mark phase type-asserts to this
// interface to blacken an object's children, without internal/gc ever
// needing to import internal/objects and learn its concrete types.
type Referencer interface {
	GCReferences(mark func(Value))
}
