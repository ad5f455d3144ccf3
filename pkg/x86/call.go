package x86

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// buildPushArg loads one call argument into its convention register.
// The kernel convention routes through the syscall register order
// instead, with position 1 carrying the call number.
func (e *emitter) buildPushArg(instr *ltac.Instr, isKarg bool) {
	n := instr.Arg2Val - 1
	src := instr.Arg1

	if isKarg {
		reg := kargReg(n)
		switch {
		case src.Kind.IsLiteral():
			fmt.Fprintf(e.w, "mov %s, %s\n", reg, litVal(src))
		case src.Kind == ltac.ArgMem:
			fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", reg, src.Pos)
		case src.Kind == ltac.ArgPtr:
			fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", reg, src.Pos)
		case src.Kind == ltac.ArgPtrLcl:
			fmt.Fprintf(e.w, "lea %s, [rip+%s]\n", reg, src.SVal)
		default:
			fmt.Fprintf(e.w, "mov %s, %s\n", reg, regName(src))
		}
		return
	}

	switch src.Kind {
	case ltac.ArgByte, ltac.ArgUByte:
		fmt.Fprintf(e.w, "mov %s, %s\n", argReg8(n), litVal(src))
	case ltac.ArgI16, ltac.ArgU16:
		fmt.Fprintf(e.w, "mov %s, %s\n", argReg16(n), litVal(src))
	case ltac.ArgI32, ltac.ArgU32:
		fmt.Fprintf(e.w, "mov %s, %s\n", argReg32(n), litVal(src))
	case ltac.ArgI64, ltac.ArgU64:
		fmt.Fprintf(e.w, "mov %s, %s\n", argReg64(n), litVal(src))
	case ltac.ArgMem:
		fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", argReg32(n), src.Pos)
	case ltac.ArgPtr:
		fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", argReg64(n), src.Pos)
	case ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "lea %s, [rip+%s]\n", argReg64(n), src.SVal)
	case ltac.ArgF32:
		fmt.Fprintf(e.w, "movss xmm%d, [rip+%s]\n", n, src.SVal)
	case ltac.ArgF64:
		fmt.Fprintf(e.w, "movsd xmm%d, [rip+%s]\n", n, src.SVal)
	case ltac.ArgFltReg, ltac.ArgFltReg64:
		fmt.Fprintf(e.w, "movaps xmm%d, %s\n", n, regName(src))
	default:
		if src.Kind.IsReg() {
			fmt.Fprintf(e.w, "mov %s, %s\n", argReg32(n), regName(src))
		}
	}
}
