package ltacgen

import (
	"strconv"

	"github.com/raymyers/lila-cc/pkg/ast"
	"github.com/raymyers/lila-cc/pkg/diag"
	"github.com/raymyers/lila-cc/pkg/ltac"
)

type blockKind int

const (
	blockIf blockKind = iota
	blockElse
	blockWhile
)

// blockFrame is one open control-flow construct. For if-chains,
// nextLabel is the pending elif/else target and endLabel the end of
// the whole chain. For while loops, cmpLabel is the continue target,
// endLabel the break target, and tail buffers the comparison block
// that must emit after the body.
type blockFrame struct {
	kind      blockKind
	nextLabel string
	endLabel  string
	cmpLabel  string
	tail      []ltac.Instr
}

// newLabel allocates a code label. The counter is monotonic per file,
// so labels are globally unique within it.
func (b *Builder) newLabel() string {
	name := "L" + strconv.Itoa(b.lblPos)
	b.lblPos++
	return name
}

func (b *Builder) pushLabel(name string) {
	lbl := ltac.NewInstr(ltac.Label)
	lbl.Name = name
	b.push(lbl)
}

func (b *Builder) pushBr(name string) {
	br := ltac.NewInstr(ltac.Br)
	br.Name = name
	b.push(br)
}

// invertedBranchOp maps a comparison operator to the branch taken when
// the condition FAILS, so an if-guard jumps over its then-body.
// TODO: decide whether <= and >= should invert to Bg/Bl (current) or
// re-check equality on the taken path; the two differ on equal
// operands only for the float families.
func invertedBranchOp(t ast.ArgType, isFloat bool) ltac.Op {
	if isFloat {
		switch t {
		case ast.OpEq:
			return ltac.Bne
		case ast.OpNeq:
			return ltac.Be
		case ast.OpLt:
			return ltac.Bfge
		case ast.OpLte:
			return ltac.Bfg
		case ast.OpGt:
			return ltac.Bfle
		case ast.OpGte:
			return ltac.Bfl
		}
		return ltac.Nop
	}
	switch t {
	case ast.OpEq:
		return ltac.Bne
	case ast.OpNeq:
		return ltac.Be
	case ast.OpLt:
		return ltac.Bge
	case ast.OpLte:
		return ltac.Bg
	case ast.OpGt:
		return ltac.Ble
	case ast.OpGte:
		return ltac.Bl
	}
	return ltac.Nop
}

// directBranchOp maps a comparison operator to the branch taken when
// the condition HOLDS; while loops jump back to the body on success.
func directBranchOp(t ast.ArgType, isFloat bool) ltac.Op {
	if isFloat {
		switch t {
		case ast.OpEq:
			return ltac.Be
		case ast.OpNeq:
			return ltac.Bne
		case ast.OpLt:
			return ltac.Bfl
		case ast.OpLte:
			return ltac.Bfle
		case ast.OpGt:
			return ltac.Bfg
		case ast.OpGte:
			return ltac.Bfge
		}
		return ltac.Nop
	}
	switch t {
	case ast.OpEq:
		return ltac.Be
	case ast.OpNeq:
		return ltac.Bne
	case ast.OpLt:
		return ltac.Bl
	case ast.OpLte:
		return ltac.Ble
	case ast.OpGt:
		return ltac.Bg
	case ast.OpGte:
		return ltac.Bge
	}
	return ltac.Nop
}

// condType picks the comparison width from the first operand that
// settles it: a known variable gives its own type, a float literal
// Double, a string literal Str. Guards with none of these compare as
// int.
func (b *Builder) condType(args []ast.Arg) DataType {
	for i := range args {
		if args[i].ArgType == ast.Id {
			if v, ok := b.vars[args[i].StrVal]; ok {
				return v.DataType
			}
		}
		if args[i].ArgType == ast.FloatL {
			return Double
		}
		if args[i].ArgType == ast.StringL {
			return Str
		}
	}
	return Int
}

// loadCmpOperand resolves one comparison operand, staging variables
// through the given virtual register.
func (b *Builder) loadCmpOperand(arg *ast.Arg, dt DataType, reg, lineNo int, code *[]ltac.Instr) ltac.Arg {
	switch arg.ArgType {
	case ast.IntL:
		if dt.IsFloat() {
			name := b.buildFloat(float64(arg.U64Val), dt == Double, false)
			return b.fltCmpReg(name, dt, reg, code)
		}
		return literalForType(dt, arg.U64Val)

	case ast.FloatL:
		name := b.buildFloat(arg.F64Val, dt == Double, false)
		return b.fltCmpReg(name, dt, reg, code)

	case ast.StringL:
		return ltac.PtrLcl(b.buildString(arg.StrVal))

	case ast.Id:
		if v, ok := b.vars[arg.StrVal]; ok {
			mov := ltac.NewInstr(movForType(dt))
			mov.Arg1 = regForType(dt, reg)
			mov.Arg2 = ltac.Mem(v.Pos)
			*code = append(*code, mov)
			return regForType(dt, reg)
		}
		if c, ok := b.globalConsts[arg.StrVal]; ok {
			return c
		}
		b.errs.Report(diag.UnknownIdentifier, lineNo,
			"unknown variable %s in condition", arg.StrVal)
		return ltac.Arg{}
	}

	b.errs.Report(diag.UnsupportedOperation, lineNo,
		"unsupported comparison operand")
	return ltac.Arg{}
}

// fltCmpReg loads a pooled float literal into a float register; float
// comparisons take both operands in registers.
func (b *Builder) fltCmpReg(name string, dt DataType, reg int, code *[]ltac.Instr) ltac.Arg {
	mov := ltac.NewInstr(movForType(dt))
	mov.Arg1 = regForType(dt, reg)
	if dt == Double {
		mov.Arg2 = ltac.F64(name)
	} else {
		mov.Arg2 = ltac.F32(name)
	}
	*code = append(*code, mov)
	return regForType(dt, reg)
}

// lowerComparison emits the operand loads, the width-matched Cmp, and
// the branch for one `a <op> b` guard.
func (b *Builder) lowerComparison(line *ast.Stmt, branchTo string, inverted bool, code *[]ltac.Instr) {
	if len(line.Args) < 3 {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"malformed condition")
		return
	}
	arg1 := &line.Args[0]
	op := &line.Args[1]
	arg2 := &line.Args[2]

	dt := b.condType(line.Args)

	cmp := ltac.NewInstr(cmpForType(dt))
	cmp.Arg1 = b.loadCmpOperand(arg1, dt, 0, line.LineNo, code)
	cmp.Arg2 = b.loadCmpOperand(arg2, dt, 1, line.LineNo, code)
	*code = append(*code, cmp)

	var brOp ltac.Op
	if inverted {
		brOp = invertedBranchOp(op.ArgType, dt.IsFloat())
	} else {
		brOp = directBranchOp(op.ArgType, dt.IsFloat())
	}
	if brOp == ltac.Nop {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"expected a comparison operator")
		return
	}

	br := ltac.NewInstr(brOp)
	br.Name = branchTo
	*code = append(*code, br)
}

// buildCond handles If, Elif and Else. The if-chain state lives in the
// top block frame: each guard branches (inverted) to nextLabel, each
// arm ends by jumping to endLabel.
func (b *Builder) buildCond(line *ast.Stmt) {
	if line.StmtType == ast.If {
		b.blocks = append(b.blocks, blockFrame{
			kind:      blockIf,
			endLabel:  b.newLabel(),
			nextLabel: b.newLabel(),
		})
		fr := &b.blocks[len(b.blocks)-1]
		b.lowerComparison(line, fr.nextLabel, true, &b.file.Code)
		return
	}

	if len(b.blocks) == 0 {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"elif/else without an open if")
		return
	}
	fr := &b.blocks[len(b.blocks)-1]
	if fr.nextLabel == "" {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"elif/else after else")
		return
	}

	b.pushBr(fr.endLabel)
	b.pushLabel(fr.nextLabel)

	if line.StmtType == ast.Else {
		fr.nextLabel = ""
		fr.kind = blockElse
		return
	}

	fr.nextLabel = b.newLabel()
	b.lowerComparison(line, fr.nextLabel, true, &b.file.Code)
}

// buildWhile opens a loop: jump to the comparison, place the body
// label, and buffer the comparison block so it emits after the body.
func (b *Builder) buildWhile(line *ast.Stmt) {
	cmpLabel := b.newLabel()
	bodyLabel := b.newLabel()
	endLabel := b.newLabel()

	fr := blockFrame{
		kind:     blockWhile,
		cmpLabel: cmpLabel,
		endLabel: endLabel,
	}

	b.pushBr(cmpLabel)
	b.pushLabel(bodyLabel)

	lbl := ltac.NewInstr(ltac.Label)
	lbl.Name = cmpLabel
	fr.tail = append(fr.tail, lbl)

	b.lowerComparison(line, bodyLabel, false, &fr.tail)

	endLbl := ltac.NewInstr(ltac.Label)
	endLbl.Name = endLabel
	fr.tail = append(fr.tail, endLbl)

	b.blocks = append(b.blocks, fr)
}

func (b *Builder) innerLoop() *blockFrame {
	for i := len(b.blocks) - 1; i >= 0; i-- {
		if b.blocks[i].kind == blockWhile {
			return &b.blocks[i]
		}
	}
	return nil
}

func (b *Builder) buildBreak(line *ast.Stmt) {
	loop := b.innerLoop()
	if loop == nil {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"break outside of a loop")
		return
	}
	b.pushBr(loop.endLabel)
}

func (b *Builder) buildContinue(line *ast.Stmt) {
	loop := b.innerLoop()
	if loop == nil {
		b.errs.Report(diag.UnsupportedOperation, line.LineNo,
			"continue outside of a loop")
		return
	}
	b.pushBr(loop.cmpLabel)
}

// buildEnd closes the innermost construct, or finishes the function
// body when none is open.
func (b *Builder) buildEnd() {
	if len(b.blocks) == 0 {
		b.endFunc()
		return
	}

	fr := b.blocks[len(b.blocks)-1]
	b.blocks = b.blocks[:len(b.blocks)-1]

	switch fr.kind {
	case blockWhile:
		b.file.Code = append(b.file.Code, fr.tail...)
	case blockIf:
		b.pushLabel(fr.nextLabel)
		b.pushLabel(fr.endLabel)
	case blockElse:
		b.pushLabel(fr.endLabel)
	}
}

// endFunc inserts the implicit return of a void function and reports
// a missing one otherwise.
func (b *Builder) endFunc() {
	if n := len(b.file.Code); n > 0 && b.file.Code[n-1].Op == ltac.Ret {
		return
	}

	b.freeArrays()

	if b.currentType != Void {
		b.errs.Report(diag.MissingReturn, 0,
			"expected return in function %s", b.currentFunc)
	}
	b.push(ltac.NewInstr(ltac.Ret))
}
