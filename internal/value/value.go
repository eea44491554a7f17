// Package value defines the VM's uniform tagged Value type and the
// Object interface every heap allocation implements. It sits at the
// bottom of the dependency graph (component A in the design doc) so
// that the bytecode, table, interner, and gc packages can all depend
// on it without depending on each other.
package value

import "math"

// Type is the tag of a Value's active variant.
type Type uint8

const (
	TNumber Type = iota
	TBool
	TNil
	TUndefined
	TObject
)

func (t Type) String() string {
	switch t {
	case TNumber:
		return "number"
	case TBool:
		return "bool"
	case TNil:
		return "nil"
	case TUndefined:
		return "undefined"
	case TObject:
		return "object"
	default:
		return "?"
	}
}

// Value is the VM's tagged union. Scalars are bit-copied;
// Object values hold an owning reference into the GC heap and are
// never nil when Type == TObject.
type Value struct {
	Type Type
	num  float64
	b    bool
	obj  Object
}

func Number(n float64) Value  { return Value{Type: TNumber, num: n} }
func Bool(b bool) Value       { return Value{Type: TBool, b: b} }
func Nil() Value              { return Value{Type: TNil} }
func Undefined() Value        { return Value{Type: TUndefined} }
func FromObject(o Object) Value {
	if o == nil {
		panic("value: FromObject called with nil Object")
	}
	return Value{Type: TObject, obj: o}
}

func (v Value) IsNumber() bool    { return v.Type == TNumber }
func (v Value) IsBool() bool      { return v.Type == TBool }
func (v Value) IsNil() bool       { return v.Type == TNil }
func (v Value) IsUndefined() bool { return v.Type == TUndefined }
func (v Value) IsObject() bool    { return v.Type == TObject }

// IsObjectKind reports whether v is an Object of the given Kind. Used
// throughout the interpreter for e.g. "is this a string", "is this a
// table" checks without importing internal/objects.
func (v Value) IsObjectKind(k Kind) bool {
	return v.Type == TObject && v.obj.Kind() == k
}

func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsBool() bool      { return v.b }
func (v Value) AsObject() Object  { return v.obj }

// Truthy implements the language's truthiness rule: false and nil are
// falsy, everything else (including 0 and "") is truthy.
func (v Value) Truthy() bool {
	switch v.Type {
	case TNil:
		return false
	case TBool:
		return v.b
	default:
		return true
	}
}

// Equal implements Value equality per the data model: numbers by IEEE
// equality, bool/nil by variant, objects by identity (which, thanks to
// interning, makes string equality pointer equality too). Undefined
// never compares equal to anything, including itself.
func Equal(a, b Value) bool {
	if a.Type == TUndefined || b.Type == TUndefined {
		return false
	}
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case TNumber:
		return a.num == b.num
	case TBool:
		return a.b == b.b
	case TNil:
		return true
	case TObject:
		return a.obj == b.obj
	default:
		return false
	}
}

// HashKey computes the hash used by internal/table for this value as a
// map key, per the rules in the design doc: numbers hash their bit
// pattern, bool/nil use fixed distinct constants, objects use their own
// HashCode (identity, except String which overrides with content hash).
func (v Value) HashKey() uint64 {
	switch v.Type {
	case TNumber:
		return math.Float64bits(v.num)
	case TBool:
		if v.b {
			return 0x9e3779b97f4a7c15
		}
		return 0xff51afd7ed558ccd
	case TNil:
		return 0xc6a4a7935bd1e995
	case TObject:
		return v.obj.HashCode()
	default:
		return 0
	}
}

func (v Value) TypeName() string {
	if v.Type == TObject {
		return v.obj.Kind().String()
	}
	return v.Type.String()
}
