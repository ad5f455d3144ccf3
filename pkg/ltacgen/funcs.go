package ltacgen

import (
	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildFuncCall lowers a call statement: one PushArg per argument in
// source order carrying its 1-based position, then the call itself.
// The built-in syscall uses the kernel argument registers instead.
func (b *Builder) buildFuncCall(line *ast.Stmt) {
	argOp := ltac.PushArg
	callOp := ltac.Call

	switch line.Name {
	case "syscall":
		argOp = ltac.KPushArg
		callOp = ltac.Syscall
	case "malloc":
		callOp = ltac.Malloc
	case "free":
		callOp = ltac.Free
	case "exit":
		b.buildExit(line)
		return
	default:
		if _, ok := b.functions[line.Name]; !ok {
			b.errs.Report(diag.UnknownIdentifier, line.LineNo,
				"call to unknown function %s", line.Name)
			return
		}
	}

	argNo := 1
	for i := range line.Args {
		arg := &line.Args[i]
		push := ltac.NewInstr(argOp)
		push.Arg2Val = argNo

		switch arg.ArgType {
		case ast.IntL:
			push.Arg1 = ltac.I32(int32(arg.U64Val))

		case ast.FloatL:
			name := b.buildFloat(arg.F64Val, true, false)
			push.Arg1 = ltac.F64(name)

		case ast.StringL:
			push.Arg1 = ltac.PtrLcl(b.buildString(arg.StrVal))

		case ast.CharL:
			push.Arg1 = ltac.Byte(int8(arg.CharVal))

		case ast.Id:
			if v, ok := b.vars[arg.StrVal]; ok {
				if v.DataType.IsArray() || v.DataType == Str {
					push.Arg1 = ltac.Ptr(v.Pos)
				} else {
					push.Arg1 = ltac.Mem(v.Pos)
				}
			} else if c, ok := b.globalConsts[arg.StrVal]; ok {
				push.Arg1 = c
			} else {
				b.errs.Report(diag.UnknownIdentifier, line.LineNo,
					"unknown argument %s in call to %s", arg.StrVal, line.Name)
				continue
			}

		default:
			b.errs.Report(diag.UnsupportedOperation, line.LineNo,
				"unsupported argument in call to %s", line.Name)
			continue
		}

		b.push(push)
		argNo++
	}

	call := ltac.NewInstr(callOp)
	call.Name = line.Name
	b.push(call)
}

// buildReturn lowers a return statement. A value moves into the
// return register of the function's type; void functions take none.
func (b *Builder) buildReturn(line *ast.Stmt) {
	if len(line.Args) > 0 && b.currentType == Void {
		b.errs.Report(diag.TypeMismatch, line.LineNo,
			"cannot return a value from void function %s", b.currentFunc)
		return
	}
	if len(line.Args) == 0 && b.currentType != Void {
		b.errs.Report(diag.MissingReturn, line.LineNo,
			"function %s must return a value", b.currentFunc)
		return
	}

	b.freeArrays()

	if len(line.Args) == 1 {
		mov := ltac.NewInstr(movForType(b.currentType))
		mov.Arg1 = retRegForType(b.currentType)
		mov.Arg2 = b.operandArg(&line.Args[0], b.currentType, 0,
			line.LineNo, &b.file.Code)
		b.push(mov)
	} else if len(line.Args) > 1 {
		b.lowerExpr(line.Args, b.currentType, line.LineNo, &b.file.Code)
		mov := ltac.NewInstr(movForType(b.currentType))
		mov.Arg1 = retRegForType(b.currentType)
		mov.Arg2 = regForType(b.currentType, 0)
		b.push(mov)
	}

	b.push(ltac.NewInstr(ltac.Ret))
}

// buildExit lowers the exit intrinsic; the target decides between a
// system call and a library call.
func (b *Builder) buildExit(line *ast.Stmt) {
	instr := ltac.NewInstr(ltac.Exit)
	if len(line.Args) > 0 {
		arg := &line.Args[0]
		switch arg.ArgType {
		case ast.IntL:
			instr.Arg1 = ltac.I32(int32(arg.U64Val))
		case ast.Id:
			if v, ok := b.vars[arg.StrVal]; ok {
				instr.Arg1 = ltac.Mem(v.Pos)
			} else {
				b.errs.Report(diag.UnknownIdentifier, line.LineNo,
					"unknown variable %s", arg.StrVal)
			}
		}
	} else {
		instr.Arg1 = ltac.I32(0)
	}
	b.push(instr)
}
