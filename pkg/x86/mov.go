package x86

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// loadOffsetBase materialises a MemOffset operand's address in r15:
// load the base pointer, then scale and add the index.
func (e *emitter) loadOffsetBase(a ltac.Arg) string {
	fmt.Fprintf(e.w, "mov r15, [rbp-%d]\n", a.Pos)

	switch idx := a.Index.(type) {
	case ltac.IndexImm:
		if idx.Offset != 0 {
			return fmt.Sprintf("[r15+%d]", idx.Offset)
		}
		return "[r15]"
	case ltac.IndexMem:
		fmt.Fprintf(e.w, "movsxd r14, dword ptr [rbp-%d]\n", idx.Pos)
		fmt.Fprintf(e.w, "lea r15, [r15+r14*%d]\n", idx.Size)
		return "[r15]"
	case ltac.IndexReg:
		fmt.Fprintf(e.w, "movsxd r14, %s\n", opReg32(idx.Reg))
		fmt.Fprintf(e.w, "lea r15, [r15+r14*%d]\n", idx.Size)
		return "[r15]"
	}
	return "[r15]"
}

// buildMov handles the integer move forms across every operand pair
// the builder produces.
func (e *emitter) buildMov(instr *ltac.Instr) {
	dest := instr.Arg1
	src := instr.Arg2

	var destRef string
	switch dest.Kind {
	case ltac.ArgMem:
		destRef = fmt.Sprintf("[rbp-%d]", dest.Pos)
	case ltac.ArgMemOffset:
		destRef = e.loadOffsetBase(dest)
	default:
		destRef = regName(dest)
	}

	destIsMem := dest.Kind == ltac.ArgMem || dest.Kind == ltac.ArgMemOffset

	switch {
	case src.Kind.IsLiteral():
		if destIsMem {
			fmt.Fprintf(e.w, "mov %s %s, %s\n", memSize(instr.Op), destRef, litVal(src))
		} else {
			fmt.Fprintf(e.w, "mov %s, %s\n", destRef, litVal(src))
		}

	case src.Kind == ltac.ArgMem:
		fmt.Fprintf(e.w, "mov %s, [rbp-%d]\n", destRef, src.Pos)

	case src.Kind == ltac.ArgMemOffset:
		srcRef := e.loadOffsetBase(src)
		fmt.Fprintf(e.w, "mov %s, %s %s\n", destRef, memSize(instr.Op), srcRef)

	case src.Kind == ltac.ArgPtrLcl:
		fmt.Fprintf(e.w, "lea r11, [rip+%s]\n", src.SVal)
		fmt.Fprintf(e.w, "mov %s, r11\n", destRef)

	default:
		fmt.Fprintf(e.w, "mov %s, %s\n", destRef, regName(src))
	}
}

// buildMovFlt handles the float move forms via movss/movsd.
func (e *emitter) buildMovFlt(instr *ltac.Instr) {
	mn := "movss"
	if instr.Op == ltac.MovF64 {
		mn = "movsd"
	}

	dest := instr.Arg1
	src := instr.Arg2

	var destRef string
	switch dest.Kind {
	case ltac.ArgMem:
		destRef = fmt.Sprintf("[rbp-%d]", dest.Pos)
	case ltac.ArgMemOffset:
		destRef = e.loadOffsetBase(dest)
	default:
		destRef = regName(dest)
	}

	switch src.Kind {
	case ltac.ArgF32, ltac.ArgF64:
		fmt.Fprintf(e.w, "%s %s, [rip+%s]\n", mn, destRef, src.SVal)
	case ltac.ArgMem:
		fmt.Fprintf(e.w, "%s %s, [rbp-%d]\n", mn, destRef, src.Pos)
	case ltac.ArgMemOffset:
		srcRef := e.loadOffsetBase(src)
		fmt.Fprintf(e.w, "%s %s, %s\n", mn, destRef, srcRef)
	default:
		fmt.Fprintf(e.w, "%s %s, %s\n", mn, destRef, regName(src))
	}
}
