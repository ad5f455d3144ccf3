package x86

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// mathKind separates the straight-line ops from the ones needing a
// fixed-register dance.
type mathKind int

const (
	mathPlain mathKind = iota // add/sub/and/or/xor: op reg, src
	mathMul                   // imul
	mathDiv                   // idiv/div quotient
	mathMod                   // idiv/div remainder
	mathShl
	mathShr
)

type mathOp struct {
	mnemonic string
	kind     mathKind
	unsigned bool
	width    int // operand bits
}

var mathMnemonics = map[ltac.Op]mathOp{
	ltac.I8Add:  {"add", mathPlain, false, 8},
	ltac.I8Sub:  {"sub", mathPlain, false, 8},
	ltac.I8Mul:  {"imul", mathMul, false, 8},
	ltac.I8Div:  {"idiv", mathDiv, false, 8},
	ltac.I8Mod:  {"idiv", mathMod, false, 8},
	ltac.U8Add:  {"add", mathPlain, true, 8},
	ltac.U8Sub:  {"sub", mathPlain, true, 8},
	ltac.U8Mul:  {"imul", mathMul, true, 8},
	ltac.U8Div:  {"div", mathDiv, true, 8},
	ltac.U8Mod:  {"div", mathMod, true, 8},
	ltac.I16Add: {"add", mathPlain, false, 16},
	ltac.I16Sub: {"sub", mathPlain, false, 16},
	ltac.I16Mul: {"imul", mathMul, false, 16},
	ltac.I16Div: {"idiv", mathDiv, false, 16},
	ltac.I16Mod: {"idiv", mathMod, false, 16},
	ltac.U16Add: {"add", mathPlain, true, 16},
	ltac.U16Sub: {"sub", mathPlain, true, 16},
	ltac.U16Mul: {"imul", mathMul, true, 16},
	ltac.U16Div: {"div", mathDiv, true, 16},
	ltac.U16Mod: {"div", mathMod, true, 16},
	ltac.I32Add: {"add", mathPlain, false, 32},
	ltac.I32Sub: {"sub", mathPlain, false, 32},
	ltac.I32Mul: {"imul", mathMul, false, 32},
	ltac.I32Div: {"idiv", mathDiv, false, 32},
	ltac.I32Mod: {"idiv", mathMod, false, 32},
	ltac.U32Add: {"add", mathPlain, true, 32},
	ltac.U32Sub: {"sub", mathPlain, true, 32},
	ltac.U32Mul: {"imul", mathMul, true, 32},
	ltac.U32Div: {"div", mathDiv, true, 32},
	ltac.U32Mod: {"div", mathMod, true, 32},
	ltac.I64Add: {"add", mathPlain, false, 64},
	ltac.I64Sub: {"sub", mathPlain, false, 64},
	ltac.I64Mul: {"imul", mathMul, false, 64},
	ltac.I64Div: {"idiv", mathDiv, false, 64},
	ltac.I64Mod: {"idiv", mathMod, false, 64},
	ltac.U64Add: {"add", mathPlain, true, 64},
	ltac.U64Sub: {"sub", mathPlain, true, 64},
	ltac.U64Mul: {"imul", mathMul, true, 64},
	ltac.U64Div: {"div", mathDiv, true, 64},
	ltac.U64Mod: {"div", mathMod, true, 64},

	ltac.I8And:  {"and", mathPlain, false, 8},
	ltac.I8Or:   {"or", mathPlain, false, 8},
	ltac.I8Xor:  {"xor", mathPlain, false, 8},
	ltac.I8Lsh:  {"shl", mathShl, false, 8},
	ltac.I8Rsh:  {"sar", mathShr, false, 8},
	ltac.I16And: {"and", mathPlain, false, 16},
	ltac.I16Or:  {"or", mathPlain, false, 16},
	ltac.I16Xor: {"xor", mathPlain, false, 16},
	ltac.I16Lsh: {"shl", mathShl, false, 16},
	ltac.I16Rsh: {"sar", mathShr, false, 16},
	ltac.I32And: {"and", mathPlain, false, 32},
	ltac.I32Or:  {"or", mathPlain, false, 32},
	ltac.I32Xor: {"xor", mathPlain, false, 32},
	ltac.I32Lsh: {"shl", mathShl, false, 32},
	ltac.I32Rsh: {"sar", mathShr, false, 32},
	ltac.I64And: {"and", mathPlain, false, 64},
	ltac.I64Or:  {"or", mathPlain, false, 64},
	ltac.I64Xor: {"xor", mathPlain, false, 64},
	ltac.I64Lsh: {"shl", mathShl, false, 64},
	ltac.I64Rsh: {"sar", mathShr, false, 64},
}

// scratchReg returns the width-matched r11 sub-register.
func scratchReg(width int) string {
	switch width {
	case 8:
		return "r11b"
	case 16:
		return "r11w"
	case 64:
		return "r11"
	}
	return "r11d"
}

// srcRef renders a math right-hand operand.
func srcRef(a ltac.Arg) string {
	switch a.Kind {
	case ltac.ArgMem:
		return fmt.Sprintf("[rbp-%d]", a.Pos)
	default:
		if a.Kind.IsLiteral() {
			return litVal(a)
		}
		return regName(a)
	}
}

// buildMath emits one two-operand integer op on the accumulator.
// TODO: division of negative operands truncates toward zero here
// (idiv); settle whether that is the contract before relying on it.
func (e *emitter) buildMath(instr *ltac.Instr, op mathOp) {
	acc := regName(instr.Arg1)
	src := instr.Arg2

	switch op.kind {
	case mathPlain:
		fmt.Fprintf(e.w, "%s %s, %s\n", op.mnemonic, acc, srcRef(src))

	case mathMul:
		fmt.Fprintf(e.w, "imul %s, %s\n", acc, srcRef(src))

	case mathDiv, mathMod:
		e.buildDiv(instr, op)

	case mathShl, mathShr:
		mn := op.mnemonic
		if op.unsigned && op.kind == mathShr {
			mn = "shr"
		}
		if src.Kind.IsLiteral() {
			fmt.Fprintf(e.w, "%s %s, %s\n", mn, acc, litVal(src))
			return
		}
		if src.Kind == ltac.ArgMem {
			fmt.Fprintf(e.w, "mov ecx, [rbp-%d]\n", src.Pos)
		} else {
			fmt.Fprintf(e.w, "mov ecx, %s\n", regName(src))
		}
		fmt.Fprintf(e.w, "%s %s, cl\n", mn, acc)
	}
}

// buildDiv stages the divisor in r11 and extends the accumulator into
// the high half before dividing. The quotient lands in the
// accumulator; mod copies the remainder back over it.
func (e *emitter) buildDiv(instr *ltac.Instr, op mathOp) {
	acc := regName(instr.Arg1)
	scratch := scratchReg(op.width)

	fmt.Fprintf(e.w, "mov %s, %s\n", scratch, srcRef(instr.Arg2))

	if op.unsigned {
		switch op.width {
		case 8:
			fmt.Fprintln(e.w, "xor ah, ah")
		case 16:
			fmt.Fprintln(e.w, "xor dx, dx")
		case 64:
			fmt.Fprintln(e.w, "xor rdx, rdx")
		default:
			fmt.Fprintln(e.w, "xor edx, edx")
		}
	} else {
		switch op.width {
		case 8:
			fmt.Fprintln(e.w, "cbw")
		case 16:
			fmt.Fprintln(e.w, "cwd")
		case 64:
			fmt.Fprintln(e.w, "cqo")
		default:
			fmt.Fprintln(e.w, "cdq")
		}
	}

	fmt.Fprintf(e.w, "%s %s\n", op.mnemonic, scratch)

	if op.kind == mathMod {
		switch op.width {
		case 8:
			fmt.Fprintf(e.w, "mov %s, ah\n", acc)
		case 16:
			fmt.Fprintf(e.w, "mov %s, dx\n", acc)
		case 64:
			fmt.Fprintf(e.w, "mov %s, rdx\n", acc)
		default:
			fmt.Fprintf(e.w, "mov %s, edx\n", acc)
		}
	}
}

// buildFltMath emits an SSE scalar op on the float accumulator.
func (e *emitter) buildFltMath(instr *ltac.Instr) {
	var mn string
	switch instr.Op {
	case ltac.F32Add:
		mn = "addss"
	case ltac.F32Sub:
		mn = "subss"
	case ltac.F32Mul:
		mn = "mulss"
	case ltac.F32Div:
		mn = "divss"
	case ltac.F64Add:
		mn = "addsd"
	case ltac.F64Sub:
		mn = "subsd"
	case ltac.F64Mul:
		mn = "mulsd"
	case ltac.F64Div:
		mn = "divsd"
	}

	acc := regName(instr.Arg1)
	src := instr.Arg2

	switch src.Kind {
	case ltac.ArgF32, ltac.ArgF64:
		fmt.Fprintf(e.w, "%s %s, [rip+%s]\n", mn, acc, src.SVal)
	case ltac.ArgMem:
		fmt.Fprintf(e.w, "%s %s, [rbp-%d]\n", mn, acc, src.Pos)
	default:
		fmt.Fprintf(e.w, "%s %s, %s\n", mn, acc, regName(src))
	}
}
