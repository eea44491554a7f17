package bytecode_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/value"
)

func TestEmitU16RoundTrip(t *testing.T) {
	b := bytecode.NewBlock()
	off := b.Len()
	b.EmitU16(0x1234, 1)
	if got := b.ReadU16(off); got != 0x1234 {
		t.Fatalf("ReadU16 = %#x, want %#x", got, 0x1234)
	}
}

func TestPatchU16OverwritesPlaceholder(t *testing.T) {
	b := bytecode.NewBlock()
	off := b.Len()
	b.EmitU16(0xffff, 1)
	b.PatchU16(off, 7)
	if got := b.ReadU16(off); got != 7 {
		t.Fatalf("ReadU16 after patch = %d, want 7", got)
	}
}

func TestAddConstantIndexing(t *testing.T) {
	b := bytecode.NewBlock()
	k0 := b.AddConstant(value.Number(1))
	k1 := b.AddConstant(value.Number(2))
	if k0 != 0 || k1 != 1 {
		t.Fatalf("constant indices = %d, %d, want 0, 1", k0, k1)
	}
	if len(b.Constants) != 2 {
		t.Fatalf("constant pool has %d entries, want 2", len(b.Constants))
	}
}

func TestAddConstantOverflowPanics(t *testing.T) {
	b := bytecode.NewBlock()
	for i := 0; i < bytecode.MaxConstants; i++ {
		b.AddConstant(value.Number(float64(i)))
	}
	defer func() {
		if recover() == nil {
			t.Fatal("AddConstant beyond MaxConstants did not panic")
		}
	}()
	b.AddConstant(value.Number(999))
}

func TestLinesTrackCodeLength(t *testing.T) {
	b := bytecode.NewBlock()
	b.EmitOp(bytecode.OpLoadNil, 5)
	b.EmitOp(bytecode.OpPop, 6)
	if len(b.Code) != len(b.Lines) {
		t.Fatalf("code/lines length mismatch: %d vs %d", len(b.Code), len(b.Lines))
	}
	if b.Lines[0] != 5 || b.Lines[1] != 6 {
		t.Fatalf("lines = %v, want [5 6]", b.Lines)
	}
}

func TestOpStringKnownAndUnknown(t *testing.T) {
	if bytecode.OpAdd.String() != "add" {
		t.Fatalf("OpAdd.String() = %q, want %q", bytecode.OpAdd.String(), "add")
	}
	if got := bytecode.Op(255).String(); got != "unknown_op" {
		t.Fatalf("unknown opcode String() = %q, want %q", got, "unknown_op")
	}
}
