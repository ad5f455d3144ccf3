package riscv64

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildFunc emits the prologue: make room, save ra and the old frame
// pointer at the top of the frame, point s0 past it.
func (e *emitter) buildFunc(instr *ltac.Instr) {
	size := e.stackSize

	fmt.Fprintf(e.w, "\n.global %s\n", instr.Name)
	fmt.Fprintf(e.w, "%s:\n", instr.Name)
	fmt.Fprintf(e.w, "addi sp, sp, -%d\n", size)
	fmt.Fprintf(e.w, "sd ra, %d(sp)\n", size-8)
	fmt.Fprintf(e.w, "sd s0, %d(sp)\n", size-16)
	fmt.Fprintf(e.w, "addi s0, sp, %d\n", size)
	fmt.Fprintln(e.w)
}

func (e *emitter) buildRet() {
	size := e.stackSize
	fmt.Fprintln(e.w)
	fmt.Fprintf(e.w, "ld ra, %d(sp)\n", size-8)
	fmt.Fprintf(e.w, "ld s0, %d(sp)\n", size-16)
	fmt.Fprintf(e.w, "addi sp, sp, %d\n", size)
	fmt.Fprintln(e.w, "ret")
	fmt.Fprintln(e.w)
}

// buildLdArg stores an incoming argument to its slot.
func (e *emitter) buildLdArg(instr *ltac.Instr) {
	pos := e.stackSize - instr.Arg1.Pos
	reg := argRegs[instr.Arg2Val-1]

	if instr.Op == ltac.LdArgPtr {
		pos += 8
		fmt.Fprintf(e.w, "sd %s, -%d(s0)\n", reg, pos)
		return
	}
	fmt.Fprintf(e.w, "sw %s, -%d(s0)\n", reg, pos)
}

// buildMov handles register and immediate moves. Loads and stores
// never reach here; the rewrite pass already split them off.
func (e *emitter) buildMov(instr *ltac.Instr) {
	dest := regRef(instr.Arg1)
	switch {
	case instr.Arg2.Kind.IsLiteral():
		fmt.Fprintf(e.w, "li %s, %s\n", dest, litRef(instr.Arg2))
	case instr.Arg2.Kind == ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "la %s, %s\n", dest, instr.Arg2.SVal)
	default:
		fmt.Fprintf(e.w, "mv %s, %s\n", dest, regRef(instr.Arg2))
	}
}

func litRef(a ltac.Arg) string {
	if a.Kind.IsUnsignedLiteral() {
		return fmt.Sprintf("%d", a.UVal)
	}
	return fmt.Sprintf("%d", a.IVal)
}

// buildLdStr emits the load/store forms, expanding the three array
// addressing modes through the s2/s3 scratch pair.
func (e *emitter) buildLdStr(instr *ltac.Instr) {
	isLoad := instr.Op == ltac.Ld || instr.Op == ltac.LdQ

	var mn string
	switch instr.Op {
	case ltac.Ld:
		mn = "lw"
	case ltac.LdQ:
		mn = "ld"
	case ltac.Str:
		mn = "sw"
	case ltac.StrQ:
		mn = "sd"
	default:
		return
	}

	reg := regRef(instr.Arg2)

	switch instr.Arg1.Kind {
	case ltac.ArgMem:
		pos := e.stackSize - instr.Arg1.Pos
		if instr.Op == ltac.LdQ || instr.Op == ltac.StrQ {
			pos += 8
		}
		fmt.Fprintf(e.w, "%s %s, -%d(s0)\n", mn, reg, pos)

	case ltac.ArgMemOffset:
		arrayPos := e.stackSize - instr.Arg1.Pos + 8
		fmt.Fprintf(e.w, "ld s2, -%d(s0)\n", arrayPos)

		switch idx := instr.Arg1.Index.(type) {
		case ltac.IndexImm:
			if isLoad {
				fmt.Fprintf(e.w, "%s %s, %d(s2)\n", mn, reg, idx.Offset)
				return
			}
			fmt.Fprintf(e.w, "addi s2, s2, %d\n", idx.Offset)

		case ltac.IndexMem:
			offsetPos := e.stackSize - idx.Pos
			fmt.Fprintf(e.w, "lw s3, -%d(s0)\n", offsetPos)
			if idx.Size == 4 {
				fmt.Fprintln(e.w, "slli s3, s3, 2")
			}
			fmt.Fprintln(e.w, "add s2, s2, s3")

		case ltac.IndexReg:
			r := opReg(idx.Reg)
			if idx.Size == 4 {
				fmt.Fprintf(e.w, "slli %s, %s, 2\n", r, r)
			}
			fmt.Fprintf(e.w, "add s2, s2, %s\n", r)
		}

		fmt.Fprintf(e.w, "%s %s, 0(s2)\n", mn, reg)
	}
}
