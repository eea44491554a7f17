package compiler

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/bytecode"
	"github.com/ember-lang/ember/internal/value"
)

// expression lowers e, leaving exactly one value on the stack.
func (c *compState) expression(e ast.Expr) {
	switch n := e.(type) {
	case *ast.NumberLit:
		c.loadConst(value.Number(n.Value), n.Line())
	case *ast.StringLit:
		c.loadConst(value.FromObject(c.intern(n.Value)), n.Line())
	case *ast.BoolLit:
		c.loadConst(value.Bool(n.Value), n.Line())
	case *ast.NilLit:
		c.emit(bytecode.OpLoadNil, n.Line())
	case *ast.Ident:
		c.readVar(n.Name, n.Line())
	case *ast.Unary:
		c.unary(n)
	case *ast.Binary:
		c.binary(n)
	case *ast.Logical:
		c.logical(n)
	case *ast.Call:
		c.call(n)
	case *ast.FuncLit:
		c.funcLit(n)
	case *ast.Index:
		c.index(n)
	case *ast.TableLit:
		c.tableLit(n)
	case *ast.Assign:
		c.assign(n)
	default:
		c.fail(e.Line(), "unsupported expression node")
	}
}

func (c *compState) loadConst(v value.Value, line uint32) {
	k := c.addConstant(v)
	c.emit(bytecode.OpLoadConst, line)
	c.emitByte(k, line)
}

// readVar resolves name as a local, an upvalue, or (falling through)
// a field of the captured environment table.
func (c *compState) readVar(name string, line uint32) {
	if slot, idx := resolveLocal(c.cur, name); slot != -1 {
		_ = idx
		c.emit(bytecode.OpGetVar, line)
		c.emitByte(byte(slot), line)
		return
	}
	if up := resolveUpvalue(c.cur, name); up != -1 {
		c.emit(bytecode.OpGetUpval, line)
		c.emitByte(byte(up), line)
		return
	}
	c.readGlobal(name, line)
}

func (c *compState) readGlobal(name string, line uint32) {
	envIdx := resolveEnv(c.cur)
	c.emit(bytecode.OpGetUpval, line)
	c.emitByte(byte(envIdx), line)
	k := c.addConstant(value.FromObject(c.intern(name)))
	c.emit(bytecode.OpTableGet, line)
	c.emitByte(k, line)
}

func (c *compState) unary(n *ast.Unary) {
	c.expression(n.X)
	switch n.Op {
	case "-":
		c.emit(bytecode.OpNegate, n.Line())
	case "!":
		c.emit(bytecode.OpLNot, n.Line())
	}
}

func (c *compState) binary(n *ast.Binary) {
	c.expression(n.L)
	c.expression(n.R)
	line := n.Line()
	switch n.Op {
	case "+":
		c.emit(bytecode.OpAdd, line)
	case "-":
		c.emit(bytecode.OpSub, line)
	case "*":
		c.emit(bytecode.OpMul, line)
	case "/":
		c.emit(bytecode.OpDiv, line)
	case "%":
		c.emit(bytecode.OpMod, line)
	case "<<":
		c.emit(bytecode.OpLShift, line)
	case ">>":
		c.emit(bytecode.OpRShift, line)
	case "&":
		c.emit(bytecode.OpBAnd, line)
	case "|":
		c.emit(bytecode.OpBOr, line)
	case "==":
		c.emit(bytecode.OpEq, line)
	case "!=":
		c.emit(bytecode.OpNeq, line)
	case "<":
		c.emit(bytecode.OpLt, line)
	case ">":
		c.emit(bytecode.OpGt, line)
	case "<=":
		c.emit(bytecode.OpLte, line)
	case ">=":
		c.emit(bytecode.OpGte, line)
	case "..":
		c.emit(bytecode.OpConcat, line)
	default:
		c.fail(line, "unknown binary operator %q", n.Op)
	}
}

// logical lowers && and || to the short-circuit jump opcodes rather
// than evaluating both sides unconditionally.
func (c *compState) logical(n *ast.Logical) {
	c.expression(n.L)
	line := n.Line()
	var jmp int
	if n.Op == "&&" {
		jmp = c.emitJump(bytecode.OpJmpIfFalseOrPop, line)
	} else {
		jmp = c.emitJump(bytecode.OpJmpIfTrueOrPop, line)
	}
	c.expression(n.R)
	c.patchJump(jmp)
}

func (c *compState) call(n *ast.Call) {
	c.expression(n.Callee)
	for _, a := range n.Args {
		c.expression(a)
	}
	if len(n.Args) > 255 {
		c.fail(n.Line(), "too many arguments")
	}
	c.emit(bytecode.OpCallFunc, n.Line())
	c.emitByte(byte(len(n.Args)), n.Line())
}

// index lowers a read of obj[key] / obj.field. A literal string key
// compiles through the constant-indexed table_get opcode; anything
// else falls back to the generic index opcode.
func (c *compState) index(n *ast.Index) {
	c.expression(n.Obj)
	if lit, ok := n.Key.(*ast.StringLit); ok {
		k := c.addConstant(value.FromObject(c.intern(lit.Value)))
		c.emit(bytecode.OpTableGet, n.Line())
		c.emitByte(k, n.Line())
		return
	}
	c.expression(n.Key)
	c.emit(bytecode.OpIndex, n.Line())
}

func (c *compState) tableLit(n *ast.TableLit) {
	c.emit(bytecode.OpNewTable, n.Line())
	for _, entry := range n.Entries {
		c.expression(entry.Key)
		c.expression(entry.Value)
		c.emit(bytecode.OpTableAddField, n.Line())
	}
}

// assign lowers target = value. Ident targets (local, upvalue, or
// global) use the dedicated set opcodes, each of which leaves the
// assigned value on the stack so the assignment itself is a usable
// expression. A computed obj[key] target has no such opcode (there is
// no "set by runtime key, keep value, drop table" instruction), so its
// result is the table rather than the assigned value — a minor,
// deliberate simplification that only matters if the assignment's
// result is itself consumed, which the field-assign form (obj.key = v)
// never needs to rely on.
func (c *compState) assign(n *ast.Assign) {
	line := n.Line()
	switch t := n.Target.(type) {
	case *ast.Ident:
		if slot, _ := resolveLocal(c.cur, t.Name); slot != -1 {
			c.expression(n.Value)
			c.emit(bytecode.OpSetVar, line)
			c.emitByte(byte(slot), line)
			return
		}
		if up := resolveUpvalue(c.cur, t.Name); up != -1 {
			c.expression(n.Value)
			c.emit(bytecode.OpSetUpval, line)
			c.emitByte(byte(up), line)
			return
		}
		envIdx := resolveEnv(c.cur)
		c.emit(bytecode.OpGetUpval, line)
		c.emitByte(byte(envIdx), line)
		c.expression(n.Value)
		k := c.addConstant(value.FromObject(c.intern(t.Name)))
		c.emit(bytecode.OpTableSet, line)
		c.emitByte(k, line)
	case *ast.Index:
		if lit, ok := t.Key.(*ast.StringLit); ok {
			c.expression(t.Obj)
			c.expression(n.Value)
			k := c.addConstant(value.FromObject(c.intern(lit.Value)))
			c.emit(bytecode.OpTableSet, line)
			c.emitByte(k, line)
			return
		}
		c.expression(t.Obj)
		c.expression(t.Key)
		c.expression(n.Value)
		c.emit(bytecode.OpTableAddField, line)
	default:
		c.fail(line, "invalid assignment target")
	}
}

// funcLit compiles a nested function body in a fresh fn state, then
// emits make_func in the enclosing function referencing the new
// CodeBlock constant plus its resolved is_local/index upvalue
// descriptor pairs.
func (c *compState) funcLit(n *ast.FuncLit) {
	// Slot 0 is reserved for the callee itself (see Compile), so every
	// function literal's parameters start at slot 1 too.
	child := &fn{enclosing: c.cur, slotCount: 1, maxSlots: 1}
	child.proto = c.newCodeBlock(c.intern(n.Name))
	c.protect(child.proto)
	defer c.unprotect(child.proto)
	child.block = child.proto.Block
	child.proto.NumParams = len(n.Params)

	parent := c.cur
	c.cur = child
	c.beginScope()
	for _, p := range n.Params {
		c.addLocal(p, n.Line())
	}
	for _, s := range n.Body {
		c.statement(s)
	}
	c.emit(bytecode.OpLoadNil, n.Line())
	c.emit(bytecode.OpReturnVal, n.Line())
	child.proto.NumUpvalues = len(child.upvalues)
	child.proto.MaxStackSize = child.maxSlots
	c.cur = parent

	k := c.addConstant(value.FromObject(child.proto))
	c.emit(bytecode.OpMakeFunc, n.Line())
	c.emitByte(k, n.Line())
	c.emitByte(byte(len(child.upvalues)), n.Line())
	for _, u := range child.upvalues {
		if u.isLocal {
			c.emitByte(1, n.Line())
		} else {
			c.emitByte(0, n.Line())
		}
		c.emitByte(u.index, n.Line())
	}
}
