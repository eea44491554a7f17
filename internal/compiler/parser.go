package compiler

import (
	"fmt"

	"github.com/ember-lang/ember/internal/ast"
	"github.com/ember-lang/ember/internal/lexer"
)

// parser is a Pratt/recursive-descent parser over the lexer's token
// stream, using precedence-climbing for expressions and a small
// recursive-descent grammar for statements.
type parser struct {
	lx   *lexer.Lexer
	tok  lexer.Token
	peek lexer.Token
	err  error
}

func newParser(src string) *parser {
	p := &parser{lx: lexer.New(src)}
	p.tok = p.lx.Next()
	p.peek = p.lx.Next()
	return p
}

func (p *parser) advance() {
	p.tok = p.peek
	p.peek = p.lx.Next()
}

func (p *parser) expect(k lexer.Kind, what string) lexer.Token {
	if p.tok.Kind != k && p.err == nil {
		p.err = fmt.Errorf("line %d: expected %s", p.tok.Line, what)
	}
	t := p.tok
	p.advance()
	return t
}

// Parse produces the top-level statement list for a source file.
func Parse(src string) ([]ast.Stmt, error) {
	p := newParser(src)
	var stmts []ast.Stmt
	for p.tok.Kind != lexer.EOF && p.err == nil {
		stmts = append(stmts, p.statement())
	}
	return stmts, p.err
}

func (p *parser) block() []ast.Stmt {
	p.expect(lexer.LBrace, "'{'")
	var stmts []ast.Stmt
	for p.tok.Kind != lexer.RBrace && p.tok.Kind != lexer.EOF && p.err == nil {
		stmts = append(stmts, p.statement())
	}
	p.expect(lexer.RBrace, "'}'")
	return stmts
}

func (p *parser) statement() ast.Stmt {
	line := p.tok.Line
	switch p.tok.Kind {
	case lexer.Let:
		p.advance()
		name := p.expect(lexer.Ident, "identifier").Text
		p.expect(lexer.Eq, "'='")
		v := p.expression()
		p.optSemi()
		return ast.NewLetStmt(line, name, v)
	case lexer.Return:
		p.advance()
		if p.tok.Kind == lexer.Semi || p.tok.Kind == lexer.RBrace {
			p.optSemi()
			return ast.NewReturnStmt(line, nil)
		}
		v := p.expression()
		p.optSemi()
		return ast.NewReturnStmt(line, v)
	case lexer.If:
		return p.ifStatement()
	case lexer.While:
		p.advance()
		cond := p.expression()
		body := p.block()
		return ast.NewWhileStmt(line, cond, body)
	case lexer.Fn:
		// `fn name(...) { ... }` at statement position desugars to
		// `let name = fn(...) { ... }`, matching the function
		// literal's own naming for trace display.
		p.advance()
		name := p.expect(lexer.Ident, "function name").Text
		fnExpr := p.funcLitTail(line, name)
		return ast.NewLetStmt(line, name, fnExpr)
	default:
		x := p.expression()
		p.optSemi()
		return ast.NewExprStmt(line, x)
	}
}

func (p *parser) optSemi() {
	if p.tok.Kind == lexer.Semi {
		p.advance()
	}
}

func (p *parser) ifStatement() ast.Stmt {
	line := p.tok.Line
	p.advance()
	cond := p.expression()
	then := p.block()
	var els []ast.Stmt
	if p.tok.Kind == lexer.Else {
		p.advance()
		if p.tok.Kind == lexer.If {
			els = []ast.Stmt{p.ifStatement()}
		} else {
			els = p.block()
		}
	}
	return ast.NewIfStmt(line, cond, then, els)
}

// ---- expressions, precedence-climbing ----

type prec int

const (
	precNone prec = iota
	precAssign
	precOr
	precAnd
	precEq
	precCompare
	precBitwise
	precShift
	precAdd
	precMul
	precUnary
	precCall
	precPrimary
)

func binOpPrec(k lexer.Kind) (prec, string) {
	switch k {
	case lexer.OrOr:
		return precOr, "||"
	case lexer.AndAnd:
		return precAnd, "&&"
	case lexer.EqEq:
		return precEq, "=="
	case lexer.NotEq:
		return precEq, "!="
	case lexer.Lt:
		return precCompare, "<"
	case lexer.Gt:
		return precCompare, ">"
	case lexer.Lte:
		return precCompare, "<="
	case lexer.Gte:
		return precCompare, ">="
	case lexer.Amp:
		return precBitwise, "&"
	case lexer.Pipe:
		return precBitwise, "|"
	case lexer.LShift:
		return precShift, "<<"
	case lexer.RShift:
		return precShift, ">>"
	case lexer.Plus:
		return precAdd, "+"
	case lexer.Minus:
		return precAdd, "-"
	case lexer.DotDot:
		return precAdd, ".."
	case lexer.Star:
		return precMul, "*"
	case lexer.Slash:
		return precMul, "/"
	case lexer.Percent:
		return precMul, "%"
	}
	return precNone, ""
}

func (p *parser) expression() ast.Expr {
	return p.assignment()
}

func (p *parser) assignment() ast.Expr {
	line := p.tok.Line
	lhs := p.binary(precOr)
	if p.tok.Kind == lexer.Eq {
		p.advance()
		rhs := p.assignment()
		return ast.NewAssign(line, lhs, rhs)
	}
	return lhs
}

func (p *parser) binary(min prec) ast.Expr {
	left := p.unary()
	for {
		opPrec, opText := binOpPrec(p.tok.Kind)
		if opPrec == precNone || opPrec < min {
			return left
		}
		line := p.tok.Line
		p.advance()
		right := p.binary(opPrec + 1)
		if opText == "&&" || opText == "||" {
			left = ast.NewLogical(line, opText, left, right)
		} else {
			left = ast.NewBinary(line, opText, left, right)
		}
	}
}

func (p *parser) unary() ast.Expr {
	line := p.tok.Line
	switch p.tok.Kind {
	case lexer.Minus:
		p.advance()
		return ast.NewUnary(line, "-", p.unary())
	case lexer.Bang:
		p.advance()
		return ast.NewUnary(line, "!", p.unary())
	}
	return p.callOrIndex()
}

func (p *parser) callOrIndex() ast.Expr {
	x := p.primary()
	for {
		line := p.tok.Line
		switch p.tok.Kind {
		case lexer.LParen:
			p.advance()
			var args []ast.Expr
			for p.tok.Kind != lexer.RParen && p.err == nil {
				args = append(args, p.expression())
				if p.tok.Kind == lexer.Comma {
					p.advance()
				}
			}
			p.expect(lexer.RParen, "')'")
			x = ast.NewCall(line, x, args)
		case lexer.Dot:
			p.advance()
			name := p.expect(lexer.Ident, "field name").Text
			x = ast.NewIndex(line, x, ast.NewStringLit(line, name))
		case lexer.LBracket:
			p.advance()
			key := p.expression()
			p.expect(lexer.RBracket, "']'")
			x = ast.NewIndex(line, x, key)
		default:
			return x
		}
	}
}

func (p *parser) primary() ast.Expr {
	line := p.tok.Line
	switch p.tok.Kind {
	case lexer.Number:
		v := p.tok.Num
		p.advance()
		return ast.NewNumberLit(line, v)
	case lexer.String:
		s := p.tok.Text
		p.advance()
		return ast.NewStringLit(line, s)
	case lexer.True:
		p.advance()
		return ast.NewBoolLit(line, true)
	case lexer.False:
		p.advance()
		return ast.NewBoolLit(line, false)
	case lexer.Nil:
		p.advance()
		return ast.NewNilLit(line)
	case lexer.Ident:
		name := p.tok.Text
		p.advance()
		return ast.NewIdent(line, name)
	case lexer.Fn:
		p.advance()
		return p.funcLitTail(line, "")
	case lexer.LParen:
		p.advance()
		x := p.expression()
		p.expect(lexer.RParen, "')'")
		return x
	case lexer.LBrace:
		return p.tableLit(line)
	default:
		if p.err == nil {
			p.err = fmt.Errorf("line %d: unexpected token", line)
		}
		p.advance()
		return ast.NewNilLit(line)
	}
}

func (p *parser) funcLitTail(line uint32, name string) *ast.FuncLit {
	p.expect(lexer.LParen, "'('")
	var params []string
	for p.tok.Kind != lexer.RParen && p.err == nil {
		params = append(params, p.expect(lexer.Ident, "parameter name").Text)
		if p.tok.Kind == lexer.Comma {
			p.advance()
		}
	}
	p.expect(lexer.RParen, "')'")
	body := p.block()
	return ast.NewFuncLit(line, name, params, body)
}

// tableLit parses `{ }`, `{ 1, 2, 3 }`, or `{ key: value, ... }`. Mixed
// positional/keyed entries are allowed, matching the VM's treatment of
// tables as plain hash maps with no array/hash split.
func (p *parser) tableLit(line uint32) *ast.TableLit {
	p.advance() // '{'
	var entries []ast.TableEntry
	nextIndex := 1.0
	for p.tok.Kind != lexer.RBrace && p.tok.Kind != lexer.EOF && p.err == nil {
		if p.tok.Kind == lexer.Ident && p.peek.Kind == lexer.Colon {
			key := p.tok.Text
			kl := p.tok.Line
			p.advance()
			p.expect(lexer.Colon, "':'")
			val := p.expression()
			entries = append(entries, ast.TableEntry{Key: ast.NewStringLit(kl, key), Value: val})
		} else if p.tok.Kind == lexer.LBracket {
			p.advance()
			key := p.expression()
			p.expect(lexer.RBracket, "']'")
			p.expect(lexer.Colon, "':'")
			val := p.expression()
			entries = append(entries, ast.TableEntry{Key: key, Value: val})
		} else {
			val := p.expression()
			entries = append(entries, ast.TableEntry{Key: ast.NewNumberLit(line, nextIndex), Value: val})
			nextIndex++
		}
		if p.tok.Kind == lexer.Comma {
			p.advance()
		}
	}
	p.expect(lexer.RBrace, "'}'")
	return ast.NewTableLit(line, entries)
}
