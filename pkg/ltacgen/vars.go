package ltacgen

import (
	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildVarDec lowers a variable declaration, advancing the stack
// position by the variable's width. For parameters (argNo > 0) it
// emits the argument-load instruction instead of an initialiser; the
// returned counters track the next integer and float argument slots.
func (b *Builder) buildVarDec(line *ast.Stmt, argNo, fltArgNo int) (int, int) {
	name := line.Name
	if len(line.Modifiers) == 0 {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"declaration of %s has no type", name)
		return argNo, fltArgNo
	}
	dataType := astToDataType(line.Modifiers[0])

	if _, ok := b.vars[name]; ok {
		b.errs.Report(diag.DuplicateSymbol, line.LineNo,
			"variable %s is already declared", name)
		return argNo, fltArgNo
	}

	b.stackPos += dataType.Width()
	v := Var{
		Pos:      b.stackPos,
		DataType: dataType,
		IsParam:  argNo > 0,
	}
	b.vars[name] = v

	if v.IsParam {
		ld := ltac.NewInstr(ldargForType(dataType))
		ld.Arg1 = ltac.Mem(v.Pos)
		if dataType.IsFloat() {
			ld.Arg2Val = fltArgNo
			fltArgNo++
		} else {
			ld.Arg2Val = argNo
			argNo++
		}
		b.push(ld)
		return argNo, fltArgNo
	}

	b.buildVarAssign(line)
	return argNo, fltArgNo
}

// buildVarAssign lowers an assignment to a scalar or array variable.
func (b *Builder) buildVarAssign(line *ast.Stmt) {
	v, ok := b.vars[line.Name]
	if !ok {
		b.errs.Report(diag.UnknownIdentifier, line.LineNo,
			"unknown variable %s", line.Name)
		return
	}

	if v.DataType.IsArray() {
		if len(line.Args) == 1 && line.Args[0].ArgType == ast.Array {
			b.buildArrayAlloc(line, v)
			return
		}
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"array %s can only be assigned an allocation", line.Name)
		return
	}

	dest := ltac.Mem(v.Pos)
	if len(line.Args) == 1 {
		b.buildSingleAssign(line, dest, v.DataType)
	} else {
		b.buildExprAssign(line, dest, v.DataType)
	}
}

// buildSingleAssign stores one operand directly, with no intermediate
// register when the operand allows it.
func (b *Builder) buildSingleAssign(line *ast.Stmt, dest ltac.Arg, dt DataType) {
	instr := ltac.NewInstr(movForType(dt))
	instr.Arg1 = dest
	instr.Arg2 = b.operandArg(&line.Args[0], dt, 0, line.LineNo, &b.file.Code)
	b.push(instr)
}

// buildExprAssign flattens a pre-ordered operand/operator list through
// virtual register 0, then stores the accumulator.
func (b *Builder) buildExprAssign(line *ast.Stmt, dest ltac.Arg, dt DataType) {
	b.lowerExpr(line.Args, dt, line.LineNo, &b.file.Code)

	store := ltac.NewInstr(movForType(dt))
	store.Arg1 = dest
	store.Arg2 = regForType(dt, 0)
	b.push(store)
}

// lowerExpr walks the flat expression list: first operand moves into
// register 0, then each operator/operand pair applies in order. The
// result is left in register 0 of the type's register class.
func (b *Builder) lowerExpr(args []ast.Arg, dt DataType, lineNo int, code *[]ltac.Instr) {
	instr := ltac.NewInstr(movForType(dt))
	instr.Arg1 = regForType(dt, 0)

	for i := range args {
		arg := &args[i]
		if arg.ArgType.IsOperator() {
			op, ok := opForType(dt, arg.ArgType)
			if !ok {
				b.errs.Report(diag.UnsupportedOperation, lineNo,
					"operator has no variant for this type")
				return
			}
			instr = ltac.NewInstr(op)
			instr.Arg1 = regForType(dt, 0)
			continue
		}
		instr.Arg2 = b.operandArg(arg, dt, 1, lineNo, code)
		*code = append(*code, instr)
	}
}

// operandArg resolves one expression operand into an LTAC argument,
// emitting any loads or calls it needs into code. scratch is the
// virtual register to stage array-element reads through.
func (b *Builder) operandArg(arg *ast.Arg, dt DataType, scratch, lineNo int, code *[]ltac.Instr) ltac.Arg {
	switch arg.ArgType {
	case ast.IntL:
		if dt == Str {
			b.errs.Report(diag.TypeMismatch, lineNo,
				"cannot assign an integer literal to a string")
			return ltac.Arg{}
		}
		if dt.IsFloat() {
			name := b.buildFloat(float64(arg.U64Val), dt == Double, false)
			if dt == Double {
				return ltac.F64(name)
			}
			return ltac.F32(name)
		}
		return literalForType(dt, arg.U64Val)

	case ast.ByteL:
		return literalForType(dt, uint64(arg.U8Val))

	case ast.ShortL:
		return literalForType(dt, uint64(arg.U16Val))

	case ast.CharL:
		return ltac.Byte(int8(arg.CharVal))

	case ast.FloatL:
		if !dt.IsFloat() {
			b.errs.Report(diag.TypeMismatch, lineNo,
				"cannot assign a float literal to an integer")
			return ltac.Arg{}
		}
		name := b.buildFloat(arg.F64Val, dt == Double, false)
		if dt == Double {
			return ltac.F64(name)
		}
		return ltac.F32(name)

	case ast.StringL:
		if dt != Str {
			b.errs.Report(diag.TypeMismatch, lineNo,
				"cannot assign a string literal to %s", typeName(dt))
			return ltac.Arg{}
		}
		return ltac.PtrLcl(b.buildString(arg.StrVal))

	case ast.Id:
		return b.identArg(arg, scratch, lineNo, code)
	}

	b.errs.Report(diag.UnsupportedOperation, lineNo,
		"unsupported operand in expression")
	return ltac.Arg{}
}

// identArg resolves an identifier operand: local variable (possibly
// indexed), then global constant, then function call.
func (b *Builder) identArg(arg *ast.Arg, scratch, lineNo int, code *[]ltac.Instr) ltac.Arg {
	if v, ok := b.vars[arg.StrVal]; ok {
		if len(arg.SubArgs) == 0 {
			return ltac.Mem(v.Pos)
		}
		return b.indexedLoad(arg, v, scratch, lineNo, code)
	}

	if c, ok := b.globalConsts[arg.StrVal]; ok {
		return c
	}

	if fnType, ok := b.functions[arg.StrVal]; ok {
		call := ast.NewStmt(ast.FuncCall)
		call.Name = arg.StrVal
		call.Args = arg.SubArgs
		call.LineNo = lineNo
		b.buildFuncCall(&call)
		return retRegForType(fnType)
	}

	b.errs.Report(diag.UnknownIdentifier, lineNo,
		"unknown variable or function %s", arg.StrVal)
	return ltac.Arg{}
}

// indexedLoad reads one array element into the scratch register and
// returns that register as the operand.
func (b *Builder) indexedLoad(arg *ast.Arg, v Var, scratch, lineNo int, code *[]ltac.Instr) ltac.Arg {
	elem := v.DataType.Elem()
	size := elem.Width()

	idx := b.indexFor(&arg.SubArgs[len(arg.SubArgs)-1], size, lineNo)

	ld := ltac.NewInstr(movForType(elem))
	ld.Arg1 = regForType(elem, scratch)
	ld.Arg2 = ltac.MemOffset(v.Pos, idx)
	*code = append(*code, ld)

	return regForType(elem, scratch)
}

// indexFor builds the sum-typed index for an array access.
func (b *Builder) indexFor(idx *ast.Arg, size, lineNo int) ltac.Index {
	switch idx.ArgType {
	case ast.IntL:
		return ltac.IndexImm{Offset: int(idx.U64Val) * size}
	case ast.Id:
		v, ok := b.vars[idx.StrVal]
		if !ok {
			b.errs.Report(diag.UnknownIdentifier, lineNo,
				"unknown index variable %s", idx.StrVal)
			return ltac.IndexImm{}
		}
		return ltac.IndexMem{Pos: v.Pos, Size: size}
	}
	b.errs.Report(diag.UnsupportedOperation, lineNo,
		"unsupported array index expression")
	return ltac.IndexImm{}
}

func typeName(d DataType) string {
	switch d {
	case Byte:
		return "byte"
	case UByte:
		return "ubyte"
	case Short:
		return "short"
	case UShort:
		return "ushort"
	case Int:
		return "int"
	case UInt:
		return "uint"
	case Int64:
		return "int64"
	case UInt64:
		return "uint64"
	case Float:
		return "float"
	case Double:
		return "double"
	case Char:
		return "char"
	case Str:
		return "str"
	case Void:
		return "void"
	}
	if d.IsArray() {
		return typeName(d.Elem()) + "[]"
	}
	return "?"
}
