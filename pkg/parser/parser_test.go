package parser

import (
	"testing"

	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/lexer"
)

func parse(t *testing.T, input string) *ast.Tree {
	t.Helper()
	p := New(lexer.New(input))
	tree := p.ParseTree("test")
	if len(p.Errors()) > 0 {
		t.Fatalf("parse errors: %v", p.Errors())
	}
	return tree
}

func TestParseEmptyFunc(t *testing.T) {
	tree := parse(t, "func main begin\nend\n")

	if len(tree.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(tree.Functions))
	}
	fn := tree.Functions[0]
	if fn.Name != "main" || fn.IsExtern {
		t.Errorf("function: %+v", fn)
	}
	if len(fn.Statements) != 1 || fn.Statements[0].StmtType != ast.End {
		t.Errorf("body should be a single end: %+v", fn.Statements)
	}
}

func TestParseVarDec(t *testing.T) {
	tree := parse(t, "func main begin\nint x = 2 + 3 * 4\nend\n")

	stmt := tree.Functions[0].Statements[0]
	if stmt.StmtType != ast.VarDec || stmt.Name != "x" {
		t.Fatalf("statement: %+v", stmt)
	}
	if stmt.Modifiers[0].ModType != ast.Int {
		t.Errorf("modifier: %+v", stmt.Modifiers)
	}

	// Flat token list in source order, no precedence.
	wantTypes := []ast.ArgType{ast.IntL, ast.OpAdd, ast.IntL, ast.OpMul, ast.IntL}
	if len(stmt.Args) != len(wantTypes) {
		t.Fatalf("args: %+v", stmt.Args)
	}
	for i, w := range wantTypes {
		if stmt.Args[i].ArgType != w {
			t.Errorf("arg %d: want %d got %d", i, w, stmt.Args[i].ArgType)
		}
	}
	if stmt.Args[4].U64Val != 4 {
		t.Errorf("last operand: %+v", stmt.Args[4])
	}
}

func TestParseArrayDec(t *testing.T) {
	tree := parse(t, "func main begin\nint arr = array(10)\nend\n")

	stmt := tree.Functions[0].Statements[0]
	if stmt.Modifiers[0].ModType != ast.IntDynArray {
		t.Errorf("allocation should promote the type: %+v", stmt.Modifiers)
	}
	if stmt.Args[0].ArgType != ast.Array {
		t.Fatalf("args: %+v", stmt.Args)
	}
	if stmt.Args[0].SubArgs[0].U64Val != 10 {
		t.Errorf("size: %+v", stmt.Args[0].SubArgs)
	}
}

func TestParseArrayAssign(t *testing.T) {
	tree := parse(t, "func main begin\narr[3] = 9\nend\n")

	stmt := tree.Functions[0].Statements[0]
	if stmt.StmtType != ast.ArrayAssign || stmt.Name != "arr" {
		t.Fatalf("statement: %+v", stmt)
	}
	if len(stmt.SubArgs) != 1 || stmt.SubArgs[0].U64Val != 3 {
		t.Errorf("index: %+v", stmt.SubArgs)
	}
	if len(stmt.Args) != 1 || stmt.Args[0].U64Val != 9 {
		t.Errorf("value: %+v", stmt.Args)
	}
}

func TestParseIfChain(t *testing.T) {
	input := `func main begin
int x = 1
if x == 0 then
x = 1
elif x > 5 then
x = 2
else
x = 3
end
end
`
	tree := parse(t, input)

	var types []ast.StmtType
	for _, s := range tree.Functions[0].Statements {
		types = append(types, s.StmtType)
	}
	want := []ast.StmtType{ast.VarDec, ast.If, ast.VarAssign, ast.Elif,
		ast.VarAssign, ast.Else, ast.VarAssign, ast.End, ast.End}
	if len(types) != len(want) {
		t.Fatalf("statements: %v", types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("stmt %d: want %d got %d", i, want[i], types[i])
		}
	}

	cond := tree.Functions[0].Statements[1]
	if len(cond.Args) != 3 || cond.Args[1].ArgType != ast.OpEq {
		t.Errorf("condition: %+v", cond.Args)
	}
}

func TestParseWhile(t *testing.T) {
	input := `func main begin
int i = 0
while i < 10 do
i = i + 1
end
end
`
	tree := parse(t, input)

	stmts := tree.Functions[0].Statements
	if stmts[1].StmtType != ast.While {
		t.Fatalf("statements: %+v", stmts)
	}
	if stmts[1].Args[1].ArgType != ast.OpLt {
		t.Errorf("condition: %+v", stmts[1].Args)
	}
}

func TestParseFuncWithParamsAndReturn(t *testing.T) {
	input := `func add(int a, int b) -> int begin
return a + b
end
`
	tree := parse(t, input)

	fn := tree.Functions[0]
	if len(fn.Args) != 2 || fn.Args[0].Name != "a" || fn.Args[1].Name != "b" {
		t.Fatalf("params: %+v", fn.Args)
	}
	if len(fn.Modifiers) != 1 || fn.Modifiers[0].ModType != ast.Int {
		t.Errorf("return type: %+v", fn.Modifiers)
	}

	ret := fn.Statements[0]
	if ret.StmtType != ast.Return || len(ret.Args) != 3 {
		t.Errorf("return: %+v", ret)
	}
}

func TestParseExternAndCall(t *testing.T) {
	input := `extern func puts(str s)
func main begin
puts("hi")
end
`
	tree := parse(t, input)

	if len(tree.Functions) != 2 {
		t.Fatalf("functions: %d", len(tree.Functions))
	}
	if !tree.Functions[0].IsExtern {
		t.Error("puts should be extern")
	}

	call := tree.Functions[1].Statements[0]
	if call.StmtType != ast.FuncCall || call.Name != "puts" {
		t.Fatalf("call: %+v", call)
	}
	if call.Args[0].ArgType != ast.StringL || call.Args[0].StrVal != "hi" {
		t.Errorf("call arg: %+v", call.Args)
	}
}

func TestParseConst(t *testing.T) {
	tree := parse(t, "const int LIMIT = 42\nfunc main begin\nend\n")

	if len(tree.Constants) != 1 {
		t.Fatalf("constants: %+v", tree.Constants)
	}
	c := tree.Constants[0]
	if c.Name != "LIMIT" || c.DataType.ModType != ast.Int || c.Value.U64Val != 42 {
		t.Errorf("const: %+v", c)
	}
}

func TestParseModule(t *testing.T) {
	tree := parse(t, "module demo\nfunc main begin\nend\n")
	if tree.Module != "demo" {
		t.Errorf("module: %q", tree.Module)
	}
}

func TestParseErrorReported(t *testing.T) {
	p := New(lexer.New("func main begin\nint = 5\nend\n"))
	p.ParseTree("test")
	if len(p.Errors()) == 0 {
		t.Error("expected a parse error")
	}
}

func TestParseExitAndFlow(t *testing.T) {
	input := `func main begin
while 1 == 1 do
break
continue
end
exit(2)
end
`
	tree := parse(t, input)

	stmts := tree.Functions[0].Statements
	var types []ast.StmtType
	for _, s := range stmts {
		types = append(types, s.StmtType)
	}
	want := []ast.StmtType{ast.While, ast.Break, ast.Continue, ast.End,
		ast.ExitStmt, ast.End}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("stmt %d: want %d got %d", i, want[i], types[i])
		}
	}

	exit := stmts[4]
	if len(exit.Args) != 1 || exit.Args[0].U64Val != 2 {
		t.Errorf("exit arg: %+v", exit.Args)
	}
}
