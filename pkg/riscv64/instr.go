package riscv64

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

func isMulDiv(op ltac.Op) bool {
	switch op {
	case ltac.I32Mul, ltac.I32Div, ltac.I32Mod:
		return true
	}
	return false
}

// buildInstr emits one integer op. Add/sub/mul/div/rem take the
// w-suffix to keep 32-bit semantics; the bitwise group does not. An
// immediate right-hand side flips to the *i mnemonic, except that
// subtraction becomes addi of the negation and multiply/divide stage
// the immediate through s2 since they have no immediate form.
func (e *emitter) buildInstr(instr *ltac.Instr) {
	var mn string
	suffix := "w"

	switch instr.Op {
	case ltac.I32Add:
		mn = "add"
	case ltac.I32Sub:
		mn = "sub"
	case ltac.I32Mul:
		mn = "mul"
	case ltac.I32Div:
		mn = "div"
	case ltac.I32Mod:
		mn = "rem"
	case ltac.I32And:
		mn = "and"
		suffix = ""
	case ltac.I32Or:
		mn = "or"
		suffix = ""
	case ltac.I32Xor:
		mn = "xor"
		suffix = ""
	case ltac.I32Lsh:
		mn = "sll"
	case ltac.I32Rsh:
		mn = "srl"
	}

	isImm := instr.Arg2.Kind.IsLiteral()
	imm := instr.Arg2.IVal

	if isImm {
		switch {
		case isMulDiv(instr.Op):
			fmt.Fprintf(e.w, "li s2, %d\n", imm)
		case instr.Op == ltac.I32Sub:
			mn = "addi"
			imm = -imm
		default:
			mn += "i"
		}
	}
	mn += suffix

	dest := regRef(instr.Arg1)

	switch {
	case isImm && isMulDiv(instr.Op):
		fmt.Fprintf(e.w, "%s %s, %s, s2\n", mn, dest, dest)
	case isImm:
		fmt.Fprintf(e.w, "%s %s, %s, %d\n", mn, dest, dest, imm)
	default:
		fmt.Fprintf(e.w, "%s %s, %s, %s\n", mn, dest, dest, regRef(instr.Arg2))
	}
}

// buildCondJump reloads the preceding comparison's memory and literal
// operands into the s2/s3 scratch pair (register operands are used as
// they are) and branches. ble and bgt are assembler
// pseudo-ops over the swapped blt/bge forms.
func (e *emitter) buildCondJump(instr *ltac.Instr) {
	if e.cmpInstr == nil {
		return
	}

	var mn string
	switch instr.Op {
	case ltac.Be:
		mn = "beq"
	case ltac.Bne:
		mn = "bne"
	case ltac.Bl:
		mn = "blt"
	case ltac.Ble:
		mn = "ble"
	case ltac.Bg:
		mn = "bgt"
	case ltac.Bge:
		mn = "bge"
	}

	lhs := e.loadCmpOperand(e.cmpInstr.Arg1, "s2")
	rhs := e.loadCmpOperand(e.cmpInstr.Arg2, "s3")

	fmt.Fprintf(e.w, "%s %s, %s, %s\n\n", mn, lhs, rhs, instr.Name)
}

// loadCmpOperand materialises one comparison operand, returning the
// register holding it.
func (e *emitter) loadCmpOperand(a ltac.Arg, scratch string) string {
	switch {
	case a.Kind.IsLiteral():
		fmt.Fprintf(e.w, "li %s, %s\n", scratch, litRef(a))
		return scratch
	case a.Kind == ltac.ArgMem:
		pos := e.stackSize - a.Pos
		fmt.Fprintf(e.w, "lw %s, -%d(s0)\n", scratch, pos)
		return scratch
	}
	return regRef(a)
}

// buildPushArg loads one call argument into its a-register; the
// kernel convention places the call number first, in a7.
func (e *emitter) buildPushArg(instr *ltac.Instr, isKarg bool) {
	n := instr.Arg2Val - 1
	reg := argRegs[n]
	if isKarg {
		reg = kargRegs[n]
	}

	src := instr.Arg1
	switch {
	case src.Kind.IsLiteral():
		fmt.Fprintf(e.w, "li %s, %s\n", reg, litRef(src))
	case src.Kind == ltac.ArgMem:
		fmt.Fprintf(e.w, "lw %s, -%d(s0)\n", reg, e.stackSize-src.Pos)
	case src.Kind == ltac.ArgPtr:
		fmt.Fprintf(e.w, "ld %s, -%d(s0)\n", reg, e.stackSize-src.Pos+8)
	case src.Kind == ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "la %s, %s\n", reg, src.SVal)
	default:
		if src.Kind.IsReg() || src.Kind.IsRetReg() {
			fmt.Fprintf(e.w, "mv %s, %s\n", reg, regRef(src))
		}
	}
}
