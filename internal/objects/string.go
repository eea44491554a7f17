// Package objects implements every concrete heap-allocated type the VM
// can create: String, CodeBlock, Closure, CClosure, Upvalue, Table, and
// UserData (component B). Each embeds value.Header and so satisfies
// value.Object without the GC ever knowing about these concrete types.
package objects

import "github.com/ember-lang/ember/internal/value"

// String is an immutable, interned byte sequence with a precomputed
// content hash. Two distinct String instances with identical bytes must
// never coexist; internal/intern is the only place new Strings come
// from in the running VM.
type String struct {
	value.Header
	Bytes []byte
	Hash  uint32
}

func NewString(bytes []byte, hash uint32) *String {
	s := &String{Bytes: bytes, Hash: hash}
	s.Header = value.NewHeader(value.KindString)
	return s
}

func (s *String) Text() string { return string(s.Bytes) }
func (s *String) Len() int     { return len(s.Bytes) }

// HashCode overrides the identity hash from value.Header: strings hash
// by content so that interning keeps equal keys colliding to the same
// table bucket.
func (s *String) HashCode() uint64 { return uint64(s.Hash) }

// Hash32 is the FNV-1a variant used both by the interner when probing
// for an existing string and by String.Hash once a new one is created.
func Hash32(bytes []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	h := uint32(offset32)
	for _, b := range bytes {
		h ^= uint32(b)
		h *= prime32
	}
	return h
}
