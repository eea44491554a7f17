package compiler_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/compiler"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

// fakeIntern/fakeNewCodeBlock let compiler tests run without a real VM
// or interner: the compiler only needs *objects.String identities and
// fresh *objects.CodeBlock values, never content-addressed interning.
// fakeProtect/fakeUnprotect are no-ops since these tests never trigger
// a real collection mid-compile.
func fakeIntern(s string) *objects.String {
	return objects.NewString([]byte(s), objects.Hash32([]byte(s)))
}

func fakeNewCodeBlock(name *objects.String) *objects.CodeBlock {
	return objects.NewCodeBlock(name)
}

func fakeProtect(value.Object)   {}
func fakeUnprotect(value.Object) {}

func mustParse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, err := compiler.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}
	return stmts
}

func mustCompile(t *testing.T, src string) *objects.CodeBlock {
	t.Helper()
	stmts := mustParse(t, src)
	proto, err := compiler.Compile(stmts, "test", fakeIntern, fakeNewCodeBlock, fakeProtect, fakeUnprotect)
	if err != nil {
		t.Fatalf("Compile(%q) error: %v", src, err)
	}
	return proto
}

func TestParseLetAndReturn(t *testing.T) {
	stmts := mustParse(t, "let x = 1\nreturn x")
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	let, ok := stmts[0].(*ast.LetStmt)
	if !ok {
		t.Fatalf("stmts[0] is %T, want *ast.LetStmt", stmts[0])
	}
	if let.Name != "x" {
		t.Errorf("let name = %q, want %q", let.Name, "x")
	}
	if _, ok := stmts[1].(*ast.ReturnStmt); !ok {
		t.Fatalf("stmts[1] is %T, want *ast.ReturnStmt", stmts[1])
	}
}

func TestParseErrorOnUnclosedParen(t *testing.T) {
	_, err := compiler.Parse("let x = (1 + 2")
	if err == nil {
		t.Fatal("expected a parse error for an unclosed '('")
	}
}

func TestCompileEmitsImplicitTrailingReturn(t *testing.T) {
	proto := mustCompile(t, "let x = 1")
	code := proto.Block.Code
	if len(code) < 2 {
		t.Fatalf("block too short: %v", code)
	}
	if bytecode.Op(code[len(code)-2]) != bytecode.OpLoadNil {
		t.Errorf("second-to-last op = %v, want load_nil", bytecode.Op(code[len(code)-2]))
	}
	if bytecode.Op(code[len(code)-1]) != bytecode.OpReturnVal {
		t.Errorf("last op = %v, want return_val", bytecode.Op(code[len(code)-1]))
	}
}

func TestCompileTopLevelSeedsEnvUpvalue(t *testing.T) {
	proto := mustCompile(t, "x = 1")
	if proto.NumUpvalues < 1 {
		t.Fatalf("NumUpvalues = %d, want at least 1 (the implicit environment upvalue)", proto.NumUpvalues)
	}
}

func TestCompileGlobalAssignUsesUpvalAndTableSet(t *testing.T) {
	proto := mustCompile(t, "x = 1")
	code := proto.Block.Code
	foundGetUpval := false
	foundTableSet := false
	for i := 0; i < len(code); i++ {
		switch bytecode.Op(code[i]) {
		case bytecode.OpGetUpval:
			foundGetUpval = true
			i++
		case bytecode.OpTableSet:
			foundTableSet = true
			i++
		case bytecode.OpLoadConst:
			i++
		}
	}
	if !foundGetUpval {
		t.Error("compiling a bare global assignment never emitted get_upval")
	}
	if !foundTableSet {
		t.Error("compiling a bare global assignment never emitted table_set")
	}
}

func TestCompileFunctionLiteralEmitsMakeFunc(t *testing.T) {
	proto := mustCompile(t, "let f = fn(a, b) { return a + b }")
	found := false
	for _, b := range proto.Block.Code {
		if bytecode.Op(b) == bytecode.OpMakeFunc {
			found = true
		}
	}
	if !found {
		t.Error("compiling a function literal never emitted make_func")
	}
	if len(proto.Block.Constants) == 0 {
		t.Fatal("no constants recorded for the function literal's CodeBlock")
	}
}

func TestCompileProtectsCodeBlocksAcrossTheirOwnCompilation(t *testing.T) {
	// A CodeBlock (top-level or nested) is allocated before anything
	// references it and stays unreferenced until it's either returned
	// (top-level) or wired into the enclosing function's constant pool
	// (nested) — it must be held in the gc-protect set for that whole
	// span, or a collection triggered while compiling its body could
	// reclaim it. This records the order of protect/unprotect calls
	// relative to each CodeBlock's creation and verifies every one is
	// protected immediately after it is created and that every protect
	// is balanced by an unprotect before Compile returns.
	var order []string
	protectedCount := map[*objects.CodeBlock]int{}

	protect := func(o value.Object) {
		cb, ok := o.(*objects.CodeBlock)
		if !ok {
			return
		}
		protectedCount[cb]++
		order = append(order, "protect")
	}
	unprotect := func(o value.Object) {
		cb, ok := o.(*objects.CodeBlock)
		if !ok {
			return
		}
		protectedCount[cb]--
		order = append(order, "unprotect")
	}
	newCodeBlock := func(name *objects.String) *objects.CodeBlock {
		cb := fakeNewCodeBlock(name)
		if protectedCount[cb] != 0 {
			t.Fatalf("newly allocated CodeBlock already has a protect count of %d", protectedCount[cb])
		}
		order = append(order, "alloc")
		return cb
	}

	stmts, err := compiler.Parse("let f = fn(a, b) { return a + b }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	_, cerr := compiler.Compile(stmts, "test", fakeIntern, newCodeBlock, protect, unprotect)
	if cerr != nil {
		t.Fatalf("compile error: %v", cerr)
	}

	// Two CodeBlocks are allocated (top-level + the fn literal), each
	// must be protected immediately and unprotected exactly once.
	wantAllocs, gotAllocs := 2, 0
	for _, ev := range order {
		if ev == "alloc" {
			gotAllocs++
		}
	}
	if gotAllocs != wantAllocs {
		t.Fatalf("expected %d CodeBlock allocations, saw %d (order=%v)", wantAllocs, gotAllocs, order)
	}
	for cb, count := range protectedCount {
		if count != 0 {
			t.Fatalf("CodeBlock %p left with protect count %d after Compile returned", cb, count)
		}
	}
	if order[0] != "alloc" || order[1] != "protect" {
		t.Fatalf("first CodeBlock was not protected immediately after allocation: order=%v", order)
	}
	for i, ev := range order {
		if ev == "alloc" && (i+1 >= len(order) || order[i+1] != "protect") {
			t.Fatalf("CodeBlock allocated at event %d was not protected immediately: order=%v", i, order)
		}
	}
}

func TestCompileWhileLoopProducesValidBackwardJump(t *testing.T) {
	// A regression guard on the hand-patched backward jump in whileStmt:
	// if the offset arithmetic were wrong, this jump would target outside
	// [0, len(code)], which a disassembler-style walk below would catch.
	proto := mustCompile(t, "let i = 0\nwhile i < 3 { i = i + 1 }")
	code := proto.Block.Code
	for off := 0; off < len(code); {
		op := bytecode.Op(code[off])
		off++
		switch op {
		case bytecode.OpJmp, bytecode.OpJmpIfTrueOrPop, bytecode.OpJmpIfFalseOrPop, bytecode.OpPopJmpIfFalse:
			d := int16(proto.Block.ReadU16(off))
			target := off + 2 + int(d)
			if target < 0 || target > len(code) {
				t.Fatalf("jump at %d targets %d, out of bounds [0,%d]", off-1, target, len(code))
			}
			off += 2
		case bytecode.OpLoadConst, bytecode.OpGetVar, bytecode.OpSetVar, bytecode.OpGetUpval,
			bytecode.OpSetUpval, bytecode.OpTableSet, bytecode.OpTableGet, bytecode.OpTableGetNoPop,
			bytecode.OpCallFunc:
			off++
		case bytecode.OpMakeFunc:
			off++ // K
			u := int(code[off])
			off++
			off += u * 2
		}
	}
}
