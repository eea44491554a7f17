package compiler

import (
	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/bytecode"
)

func (c *compState) statement(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.LetStmt:
		c.expression(n.Value)
		c.addLocal(n.Name, n.Line())
	case *ast.ExprStmt:
		c.expression(n.X)
		c.emit(bytecode.OpPop, n.Line())
	case *ast.ReturnStmt:
		if n.Value == nil {
			c.emit(bytecode.OpLoadNil, n.Line())
		} else {
			c.expression(n.Value)
		}
		c.emit(bytecode.OpReturnVal, n.Line())
	case *ast.IfStmt:
		c.ifStmt(n)
	case *ast.WhileStmt:
		c.whileStmt(n)
	default:
		c.fail(s.Line(), "unsupported statement node")
	}
}

func (c *compState) ifStmt(n *ast.IfStmt) {
	c.expression(n.Cond)
	line := n.Line()
	elseJump := c.emitJump(bytecode.OpPopJmpIfFalse, line)

	c.beginScope()
	for _, st := range n.Then {
		c.statement(st)
	}
	c.endScope(line)

	if n.Else == nil {
		c.patchJump(elseJump)
		return
	}

	endJump := c.emitJump(bytecode.OpJmp, line)
	c.patchJump(elseJump)

	c.beginScope()
	for _, st := range n.Else {
		c.statement(st)
	}
	c.endScope(line)

	c.patchJump(endJump)
}

func (c *compState) whileStmt(n *ast.WhileStmt) {
	line := n.Line()
	loopStart := c.cur.block.Len()
	c.expression(n.Cond)
	exitJump := c.emitJump(bytecode.OpPopJmpIfFalse, line)

	c.beginScope()
	for _, st := range n.Body {
		c.statement(st)
	}
	c.endScope(line)

	backJump := c.emitJump(bytecode.OpJmp, line)
	// back edge: offset is relative to the byte after the 2-byte
	// operand, same convention emitJump/patchJump use for forward jumps.
	back := loopStart - (backJump + 2)
	c.cur.block.PatchU16(backJump, uint16(int16(back)))

	c.patchJump(exitJump)
}
