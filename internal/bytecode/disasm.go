package bytecode

import (
	"fmt"
	"strings"
)

// Disassemble renders a Block as human-readable text, one instruction
// per line, for debugging and tests. The compiler and interpreter never
// call this; it exists purely as a debug pretty-printer.
func Disassemble(b *Block, name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	offset := 0
	for offset < len(b.Code) {
		offset = disassembleInstruction(&sb, b, offset)
	}
	return sb.String()
}

func disassembleInstruction(sb *strings.Builder, b *Block, offset int) int {
	fmt.Fprintf(sb, "%04d ", offset)
	if offset > 0 && b.Lines[offset] == b.Lines[offset-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(sb, "%4d ", b.Lines[offset])
	}

	op := Op(b.Code[offset])
	switch op {
	case OpLoadConst, OpTableSet, OpTableGet, OpTableGetNoPop:
		return byteOperandInstruction(sb, op, b, offset)
	case OpGetVar, OpSetVar, OpGetUpval, OpSetUpval, OpCallFunc:
		return byteOperandInstruction(sb, op, b, offset)
	case OpJmp, OpJmpIfTrueOrPop, OpJmpIfFalseOrPop, OpPopJmpIfFalse:
		return jumpInstruction(sb, op, b, offset)
	case OpMakeFunc:
		return makeFuncInstruction(sb, b, offset)
	default:
		fmt.Fprintf(sb, "%s\n", op)
		return offset + 1
	}
}

func byteOperandInstruction(sb *strings.Builder, op Op, b *Block, offset int) int {
	idx := b.Code[offset+1]
	fmt.Fprintf(sb, "%-20s %4d\n", op, idx)
	return offset + 2
}

func jumpInstruction(sb *strings.Builder, op Op, b *Block, offset int) int {
	d := int16(b.ReadU16(offset + 1))
	fmt.Fprintf(sb, "%-20s -> %04d\n", op, offset+3+int(d))
	return offset + 3
}

func makeFuncInstruction(sb *strings.Builder, b *Block, offset int) int {
	k := b.Code[offset+1]
	u := int(b.Code[offset+2])
	fmt.Fprintf(sb, "%-20s %4d (upvals: %d)\n", OpMakeFunc, k, u)
	pos := offset + 3
	for i := 0; i < u; i++ {
		isLocal := b.Code[pos]
		idx := b.Code[pos+1]
		fmt.Fprintf(sb, "      |                     local=%d idx=%d\n", isLocal, idx)
		pos += 2
	}
	return pos
}
