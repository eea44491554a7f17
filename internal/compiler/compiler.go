// Package compiler lowers ast.Stmt/ast.Expr into a bytecode.Block,
// doing local/upvalue resolution and jump backpatching.
package compiler

import (
	"fmt"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/objects"
	"github.com/ember-lang/ember/internal/value"
)

const envUpvalName = "\x00env" // never a legal identifier, so it can't collide

type local struct {
	name    string
	depth   int
	slot    int
	capture bool
}

type upvalRef struct {
	index   uint8
	isLocal bool
	name    string
}

// fn is one function's compilation state; compState wraps the top-level
// one and nests a fresh fn per function literal, linked via enclosing.
type fn struct {
	proto     *objects.CodeBlock
	block     *bytecode.Block
	enclosing *fn

	locals     []local
	scopeDepth int
	slotCount  int
	maxSlots   int

	upvalues []upvalRef

	err  error
	line uint32
}

// Compile lowers a parsed top-level statement list into a CodeBlock.
// The returned block's first upvalue is always the environment table,
// supplied by the caller (vm.Run binds it); nested functions chain to
// it through the normal upvalue-resolution path using envUpvalName.
//
// protect/unprotect must be the VM's gc-protect root set: top.proto is
// not reachable from anywhere until Compile returns it, so it is held
// there across every allocation the rest of the compile performs.
func Compile(stmts []ast.Stmt, name string, intern func(string) *objects.String, newCodeBlock func(*objects.String) *objects.CodeBlock, protect func(value.Object), unprotect func(value.Object)) (*objects.CodeBlock, error) {
	// base[0] is always the callee (internal/vm/calls.go's callClosure
	// sets base := sp - argc - 1), so slot 0 is reserved for it and
	// every param/local starts at slot 1.
	top := &fn{slotCount: 1, maxSlots: 1}
	top.proto = newCodeBlock(intern(name))
	protect(top.proto)
	defer unprotect(top.proto)
	top.block = top.proto.Block
	top.upvalues = append(top.upvalues, upvalRef{index: 0, isLocal: false, name: envUpvalName})

	c := &compState{intern: intern, newCodeBlock: newCodeBlock, protect: protect, unprotect: unprotect}
	c.cur = top

	for _, s := range stmts {
		c.statement(s)
	}
	c.emit(bytecode.OpLoadNil, top.line)
	c.emit(bytecode.OpReturnVal, top.line)

	top.proto.NumParams = 0
	top.proto.NumUpvalues = len(top.upvalues)
	top.proto.MaxStackSize = top.maxSlots
	if c.err != nil {
		return nil, c.err
	}
	return top.proto, nil
}

type compState struct {
	cur          *fn
	intern       func(string) *objects.String
	newCodeBlock func(*objects.String) *objects.CodeBlock
	protect      func(value.Object)
	unprotect    func(value.Object)
	err          error
}

func (c *compState) fail(line uint32, format string, args ...interface{}) {
	if c.err == nil {
		c.err = fmt.Errorf("line %d: %s", line, fmt.Sprintf(format, args...))
	}
}

func (c *compState) emit(op bytecode.Op, line uint32) int {
	return c.cur.block.EmitOp(op, line)
}

func (c *compState) emitByte(b byte, line uint32) {
	c.cur.block.Emit(b, line)
}

func (c *compState) emitJump(op bytecode.Op, line uint32) int {
	c.emit(op, line)
	off := c.cur.block.Len()
	c.cur.block.EmitU16(0xffff, line)
	return off
}

func (c *compState) patchJump(offset int) {
	jump := c.cur.block.Len() - offset - 2
	if jump > 0xffff {
		c.fail(c.cur.line, "jump too far")
		return
	}
	c.cur.block.PatchU16(offset, uint16(jump))
}

func (c *compState) addConstant(v value.Value) byte {
	if len(c.cur.block.Constants) >= bytecode.MaxConstants {
		c.fail(c.cur.line, "too many constants in one function")
		return 0
	}
	return c.cur.block.AddConstant(v)
}

func (c *compState) pushSlot() int {
	s := c.cur.slotCount
	c.cur.slotCount++
	if c.cur.slotCount > c.cur.maxSlots {
		c.cur.maxSlots = c.cur.slotCount
	}
	return s
}

// ---- scope ----

func (c *compState) beginScope() { c.cur.scopeDepth++ }

func (c *compState) endScope(line uint32) {
	f := c.cur
	f.scopeDepth--
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].depth > f.scopeDepth {
		last := f.locals[len(f.locals)-1]
		if last.capture {
			c.emit(bytecode.OpCloseUpval, line)
		} else {
			c.emit(bytecode.OpPop, line)
		}
		f.locals = f.locals[:len(f.locals)-1]
		f.slotCount--
	}
}

func (c *compState) addLocal(name string, line uint32) int {
	slot := c.pushSlot()
	c.cur.locals = append(c.cur.locals, local{name: name, depth: c.cur.scopeDepth, slot: slot})
	return slot
}

func resolveLocal(f *fn, name string) (slot int, idx int) {
	for i := len(f.locals) - 1; i >= 0; i-- {
		if f.locals[i].name == name {
			return f.locals[i].slot, i
		}
	}
	return -1, -1
}

func addUpvalue(f *fn, index uint8, isLocal bool, name string) int {
	for i, u := range f.upvalues {
		if u.index == index && u.isLocal == isLocal {
			return i
		}
	}
	f.upvalues = append(f.upvalues, upvalRef{index: index, isLocal: isLocal, name: name})
	return len(f.upvalues) - 1
}

// resolveUpvalue chases a free variable up the enclosing chain: a local
// in the immediately enclosing function captures directly; a name found
// further up chains through an upvalue-of-an-upvalue link.
func resolveUpvalue(f *fn, name string) int {
	if f.enclosing == nil {
		return -1
	}
	if slot, idx := resolveLocal(f.enclosing, name); slot != -1 {
		f.enclosing.locals[idx].capture = true
		return addUpvalue(f, uint8(slot), true, name)
	}
	if up := resolveUpvalue(f.enclosing, name); up != -1 {
		return addUpvalue(f, uint8(up), false, name)
	}
	return -1
}

// resolveEnv returns this function's upvalue index for the captured
// environment table, walking the enclosing chain and threading the
// capture the same way any other free variable would be threaded — the
// language's globals are just the fields of that one table, reached
// through a normal (if implicit) upvalue the way Lua 5.2+ threads _ENV.
func resolveEnv(f *fn) int {
	for i, u := range f.upvalues {
		if u.name == envUpvalName {
			return i
		}
	}
	if f.enclosing == nil {
		// Only the top-level function reaches this; it was seeded
		// with upvalue 0 == env in Compile.
		return 0
	}
	parentIdx := resolveEnv(f.enclosing)
	return addUpvalue(f, uint8(parentIdx), false, envUpvalName)
}
