package lexer_test

import (
	"testing"

	"github.com/ember-lang/ember/internal/lexer"
)

func allTokens(src string) []lexer.Token {
	lx := lexer.New(src)
	var toks []lexer.Token
	for {
		tok := lx.Next()
		toks = append(toks, tok)
		if tok.Kind == lexer.EOF {
			return toks
		}
	}
}

func kinds(toks []lexer.Token) []lexer.Kind {
	ks := make([]lexer.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestKeywordsAndIdentifiers(t *testing.T) {
	toks := allTokens("let x fn while")
	got := kinds(toks)
	want := []lexer.Kind{lexer.Let, lexer.Ident, lexer.Fn, lexer.While, lexer.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %v, want %v", i, got[i], want[i])
		}
	}
	if toks[1].Text != "x" {
		t.Errorf("identifier text = %q, want %q", toks[1].Text, "x")
	}
}

func TestNumberLiteral(t *testing.T) {
	toks := allTokens("12.5")
	if toks[0].Kind != lexer.Number {
		t.Fatalf("kind = %v, want Number", toks[0].Kind)
	}
	if toks[0].Num != 12.5 {
		t.Fatalf("Num = %v, want 12.5", toks[0].Num)
	}
}

func TestStringLiteralWithEscapes(t *testing.T) {
	toks := allTokens(`"a\nb\tc\"d\\e"`)
	if toks[0].Kind != lexer.String {
		t.Fatalf("kind = %v, want String", toks[0].Kind)
	}
	want := "a\nb\tc\"d\\e"
	if toks[0].Text != want {
		t.Fatalf("Text = %q, want %q", toks[0].Text, want)
	}
}

func TestTwoCharOperatorsDisambiguatedFromOneChar(t *testing.T) {
	cases := []struct {
		src  string
		kind lexer.Kind
	}{
		{"==", lexer.EqEq}, {"=", lexer.Eq},
		{"!=", lexer.NotEq}, {"!", lexer.Bang},
		{"<=", lexer.Lte}, {"<", lexer.Lt}, {"<<", lexer.LShift},
		{">=", lexer.Gte}, {">", lexer.Gt}, {">>", lexer.RShift},
		{"&&", lexer.AndAnd}, {"&", lexer.Amp},
		{"||", lexer.OrOr}, {"|", lexer.Pipe},
		{"..", lexer.DotDot}, {".", lexer.Dot},
	}
	for _, c := range cases {
		toks := allTokens(c.src)
		if toks[0].Kind != c.kind {
			t.Errorf("lexing %q: kind = %v, want %v", c.src, toks[0].Kind, c.kind)
		}
	}
}

func TestColonToken(t *testing.T) {
	toks := allTokens("{k: 1}")
	got := kinds(toks)
	want := []lexer.Kind{lexer.LBrace, lexer.Ident, lexer.Colon, lexer.Number, lexer.RBrace, lexer.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLineCommentsSkipped(t *testing.T) {
	toks := allTokens("let x // this is a comment\nlet y")
	got := kinds(toks)
	want := []lexer.Kind{lexer.Let, lexer.Ident, lexer.Let, lexer.Ident, lexer.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLineNumbersAdvanceAcrossNewlines(t *testing.T) {
	toks := allTokens("let\nx\n=\n1")
	if toks[0].Line != 1 {
		t.Errorf("'let' line = %d, want 1", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("'x' line = %d, want 2", toks[1].Line)
	}
	if toks[3].Line != 4 {
		t.Errorf("'1' line = %d, want 4", toks[3].Line)
	}
}
