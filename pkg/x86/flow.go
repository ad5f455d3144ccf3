package x86

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildCmp emits a width-matched compare. A literal left operand is
// staged through r11 since cmp wants a register or memory first.
func (e *emitter) buildCmp(instr *ltac.Instr) {
	width := cmpWidth(instr.Op)

	lhs := instr.Arg1
	var lhsRef string
	switch {
	case lhs.Kind.IsLiteral():
		lhsRef = scratchReg(width)
		fmt.Fprintf(e.w, "mov %s, %s\n", lhsRef, litVal(lhs))
	case lhs.Kind == ltac.ArgMem:
		lhsRef = fmt.Sprintf("[rbp-%d]", lhs.Pos)
	default:
		lhsRef = regName(lhs)
	}

	rhs := instr.Arg2
	switch {
	case rhs.Kind.IsLiteral():
		fmt.Fprintf(e.w, "cmp %s, %s\n", lhsRef, litVal(rhs))
	case rhs.Kind == ltac.ArgMem:
		fmt.Fprintf(e.w, "cmp %s, [rbp-%d]\n", lhsRef, rhs.Pos)
	default:
		fmt.Fprintf(e.w, "cmp %s, %s\n", lhsRef, regName(rhs))
	}
}

func cmpWidth(op ltac.Op) int {
	switch op {
	case ltac.I8Cmp, ltac.U8Cmp:
		return 8
	case ltac.I16Cmp, ltac.U16Cmp:
		return 16
	case ltac.I64Cmp, ltac.U64Cmp:
		return 64
	}
	return 32
}

// buildFltCmp emits the unordered scalar compare.
func (e *emitter) buildFltCmp(instr *ltac.Instr) {
	mn := "ucomiss"
	if instr.Op == ltac.F64Cmp {
		mn = "ucomisd"
	}
	fmt.Fprintf(e.w, "%s %s, %s\n", mn, regName(instr.Arg1), regName(instr.Arg2))
}

// buildStrCmp lowers the string comparison to a libc call followed by
// a flag-setting test, so the Be/Bne that follows behaves as usual.
func (e *emitter) buildStrCmp(instr *ltac.Instr) {
	e.loadStrOperand("rdi", instr.Arg1)
	e.loadStrOperand("rsi", instr.Arg2)
	fmt.Fprintln(e.w, "call strcmp")
	fmt.Fprintln(e.w, "cmp eax, 0")
}

func (e *emitter) loadStrOperand(reg string, a ltac.Arg) {
	switch a.Kind {
	case ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "lea %s, [rip+%s]\n", reg, a.SVal)
	case ltac.ArgMem, ltac.ArgPtr:
		fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", reg, a.Pos)
	default:
		fmt.Fprintf(e.w, "mov %s, %s\n", reg, regName(a))
	}
}

// buildCondBranch picks the jump family from the preceding compare:
// signed, unsigned, or the unordered-safe float polarities.
func (e *emitter) buildCondBranch(instr *ltac.Instr) {
	unsigned := e.lastCmp.IsUnsignedCmp()

	var mn string
	switch instr.Op {
	case ltac.Be:
		mn = "je"
	case ltac.Bne:
		mn = "jne"
	case ltac.Bl:
		if unsigned {
			mn = "jb"
		} else {
			mn = "jl"
		}
	case ltac.Ble:
		if unsigned {
			mn = "jbe"
		} else {
			mn = "jle"
		}
	case ltac.Bg:
		if unsigned {
			mn = "ja"
		} else {
			mn = "jg"
		}
	case ltac.Bge:
		if unsigned {
			mn = "jae"
		} else {
			mn = "jge"
		}
	case ltac.Bfl:
		mn = "jb"
	case ltac.Bfle:
		mn = "jbe"
	case ltac.Bfg:
		mn = "ja"
	case ltac.Bfge:
		mn = "jae"
	}

	fmt.Fprintf(e.w, "%s %s\n", mn, instr.Name)
}
