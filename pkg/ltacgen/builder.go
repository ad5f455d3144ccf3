package ltacgen

import (
	"fmt"
	"math"
	"strconv"

	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

// Var is a symbol-table entry. Pos is the variable's stack offset,
// positive and growing downward; the emitter negates it.
type Var struct {
	Pos      int
	DataType DataType
	IsParam  bool
}

// Builder lowers an AST into an LTAC file. One builder translates one
// unit; the symbol table resets per function.
type Builder struct {
	file *ltac.File
	errs *diag.Reporter

	strPos int
	fltPos int
	lblPos int

	functions    map[string]DataType
	globalConsts map[string]ltac.Arg

	currentFunc string
	currentType DataType

	vars     map[string]Var
	stackPos int

	blocks []blockFrame
}

// New creates a builder for a unit with the given file name. The
// reporter collects semantic diagnostics; it is borrowed, not owned.
func New(name string, errs *diag.Reporter) *Builder {
	return &Builder{
		file:         ltac.NewFile(name),
		errs:         errs,
		functions:    make(map[string]DataType),
		globalConsts: make(map[string]ltac.Arg),
		vars:         make(map[string]Var),
	}
}

// Build translates the tree. On failure the collected diagnostics are
// flushed and no IR is returned.
func (b *Builder) Build(tree *ast.Tree) (*ltac.File, error) {
	b.buildGlobalConstants(tree)
	b.buildFunctions(tree)

	if b.errs.HasErrors() {
		b.errs.Flush()
		return nil, fmt.Errorf("lowering failed with %d errors", b.errs.Count())
	}
	return b.file, nil
}

func (b *Builder) push(instr ltac.Instr) {
	b.file.Code = append(b.file.Code, instr)
}

func (b *Builder) buildGlobalConstants(tree *ast.Tree) {
	for _, c := range tree.Constants {
		if _, ok := b.globalConsts[c.Name]; ok {
			b.errs.Report(diag.DuplicateSymbol, c.LineNo,
				"constant %s is already defined", c.Name)
			continue
		}
		dt := astToDataType(c.DataType)
		if c.Value.ArgType != ast.IntL || dt.IsFloat() || dt == Str {
			b.errs.Report(diag.TypeMismatch, c.LineNo,
				"constant %s requires an integer literal", c.Name)
			continue
		}
		b.globalConsts[c.Name] = literalForType(dt, c.Value.U64Val)
	}
}

// buildFunctions makes two passes: the first collects names and return
// types so calls can resolve forward references, the second lowers
// each body.
func (b *Builder) buildFunctions(tree *ast.Tree) {
	for _, fn := range tree.Functions {
		if _, ok := b.functions[fn.Name]; ok {
			b.errs.Report(diag.DuplicateSymbol, 0,
				"function %s is already defined", fn.Name)
			continue
		}
		fnType := Void
		if len(fn.Modifiers) > 0 {
			fnType = astToDataType(fn.Modifiers[0])
		}
		b.functions[fn.Name] = fnType
	}

	for _, fn := range tree.Functions {
		if fn.IsExtern {
			ext := ltac.NewInstr(ltac.Extern)
			ext.Name = fn.Name
			b.push(ext)
			continue
		}
		b.buildFunc(&fn)
	}
}

func (b *Builder) buildFunc(fn *ast.Func) {
	b.currentFunc = fn.Name
	b.currentType = b.functions[fn.Name]

	fc := ltac.NewInstr(ltac.Func)
	fc.Name = fn.Name

	// The Func instruction is inserted here once the frame size is
	// known; everything the body emits lands after this position.
	pos := len(b.file.Code)

	argPos := 1
	fltArgPos := 1
	for _, arg := range fn.Args {
		argPos, fltArgPos = b.buildVarDec(&arg, argPos, fltArgPos)
	}

	b.buildBlock(fn.Statements)

	// A body that emitted nothing left endFunc looking at the previous
	// function's Ret; this function still needs its own.
	if len(b.file.Code) == pos {
		if b.currentType != Void {
			b.errs.Report(diag.MissingReturn, 0,
				"expected return in function %s", b.currentFunc)
		}
		b.push(ltac.NewInstr(ltac.Ret))
	}

	if len(b.vars) > 0 {
		stackSize := 0
		for stackSize < b.stackPos+1 {
			stackSize += 16
		}
		fc.Arg1Val = stackSize
		fc.Arg2Val = b.stackPos // local high-water mark, used by Arm
	}

	b.file.Code = append(b.file.Code, ltac.Instr{})
	copy(b.file.Code[pos+1:], b.file.Code[pos:])
	b.file.Code[pos] = fc

	b.stackPos = 0
	b.vars = make(map[string]Var)
	b.blocks = b.blocks[:0]
}

func (b *Builder) buildBlock(statements []ast.Stmt) {
	for i := range statements {
		line := &statements[i]
		switch line.StmtType {
		case ast.VarDec:
			b.buildVarDec(line, 0, 0)
		case ast.VarAssign:
			b.buildVarAssign(line)
		case ast.ArrayAssign:
			b.buildArrayAssign(line)
		case ast.If, ast.Elif, ast.Else:
			b.buildCond(line)
		case ast.While:
			b.buildWhile(line)
		case ast.Break:
			b.buildBreak(line)
		case ast.Continue:
			b.buildContinue(line)
		case ast.FuncCall:
			b.buildFuncCall(line)
		case ast.Return:
			b.buildReturn(line)
		case ast.ExitStmt:
			b.buildExit(line)
		case ast.End:
			b.buildEnd()
		}
	}
}

// buildString interns a string literal and returns its data label.
func (b *Builder) buildString(val string) string {
	name := "STR" + strconv.Itoa(b.strPos)
	b.strPos++

	b.file.Data = append(b.file.Data, ltac.Data{
		Type: ltac.StringL,
		Name: name,
		Val:  val,
	})
	return name
}

// buildFloat interns a float literal and returns its data label. The
// value is stored as its bit pattern so the assembler reproduces the
// exact IEEE-754 bytes.
func (b *Builder) buildFloat(v float64, isDouble, negateNext bool) string {
	name := "FLT" + strconv.Itoa(b.fltPos)
	b.fltPos++

	if negateNext {
		v = -v
	}

	var val string
	dataType := ltac.FloatL
	if isDouble {
		dataType = ltac.DoubleL
		val = strconv.FormatUint(math.Float64bits(v), 10)
	} else {
		val = strconv.FormatUint(uint64(math.Float32bits(float32(v))), 10)
	}

	b.file.Data = append(b.file.Data, ltac.Data{
		Type: dataType,
		Name: name,
		Val:  val,
	})
	return name
}
