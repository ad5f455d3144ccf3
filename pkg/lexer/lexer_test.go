package lexer

import "testing"

func TestNextTokenStatement(t *testing.T) {
	input := "int x = 5 + y\n"

	tests := []struct {
		wantType    TokenType
		wantLiteral string
	}{
		{TokenIntT, "int"},
		{TokenIdent, "x"},
		{TokenAssign, "="},
		{TokenInt, "5"},
		{TokenPlus, "+"},
		{TokenIdent, "y"},
		{TokenNewLine, "\n"},
		{TokenEOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.wantType {
			t.Fatalf("token %d: wrong type, want %d got %d (%q)",
				i, tt.wantType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.wantLiteral {
			t.Fatalf("token %d: wrong literal, want %q got %q",
				i, tt.wantLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAndOperators(t *testing.T) {
	input := "func main begin if x == 0 then end while i <= 10 do -> << >>"

	want := []TokenType{
		TokenFunc, TokenIdent, TokenBegin, TokenIf, TokenIdent,
		TokenEq, TokenInt, TokenThen, TokenEnd, TokenWhile, TokenIdent,
		TokenLe, TokenInt, TokenDo, TokenArrow, TokenShl, TokenShr,
		TokenEOF,
	}

	l := New(input)
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w {
			t.Fatalf("token %d: want %d got %d (%q)", i, w, tok.Type, tok.Literal)
		}
	}
}

func TestStringAndCharLiterals(t *testing.T) {
	l := New(`puts("hello world") 'a'`)

	toks := []Token{}
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			break
		}
	}

	if toks[2].Type != TokenString || toks[2].Literal != "hello world" {
		t.Errorf("string literal: %+v", toks[2])
	}
	if toks[4].Type != TokenChar || toks[4].Literal != "a" {
		t.Errorf("char literal: %+v", toks[4])
	}
}

func TestFloatLiteral(t *testing.T) {
	l := New("3.14 42")

	tok := l.NextToken()
	if tok.Type != TokenFloat || tok.Literal != "3.14" {
		t.Errorf("float: %+v", tok)
	}
	tok = l.NextToken()
	if tok.Type != TokenInt || tok.Literal != "42" {
		t.Errorf("int: %+v", tok)
	}
}

func TestCommentsSkipped(t *testing.T) {
	l := New("x # a comment\ny")

	if tok := l.NextToken(); tok.Literal != "x" {
		t.Fatalf("want x, got %q", tok.Literal)
	}
	if tok := l.NextToken(); tok.Type != TokenNewLine {
		t.Fatalf("comment should end at the newline, got %q", tok.Literal)
	}
	if tok := l.NextToken(); tok.Literal != "y" {
		t.Fatalf("want y, got %q", tok.Literal)
	}
}

func TestLineTracking(t *testing.T) {
	l := New("a\nb")

	a := l.NextToken()
	l.NextToken() // newline
	b := l.NextToken()

	if a.Line != 1 {
		t.Errorf("a on line %d", a.Line)
	}
	if b.Line != 2 {
		t.Errorf("b on line %d", b.Line)
	}
}

func TestTypeTokens(t *testing.T) {
	types := []string{"byte", "ubyte", "short", "ushort", "int", "uint",
		"int64", "uint64", "float", "double", "char", "str"}
	for _, name := range types {
		if !LookupIdent(name).IsType() {
			t.Errorf("%s should lex as a type keyword", name)
		}
	}
	if LookupIdent("main").IsType() {
		t.Error("main is not a type")
	}
}
