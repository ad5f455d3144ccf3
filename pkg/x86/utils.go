package x86

import (
	"fmt"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

// Fixed virtual-register maps. Register 0 is the expression
// accumulator, register 1 the right-hand scratch. rcx and rdx stay
// out of the table: cl serves shifts and edx division.
var (
	opRegs8  = []string{"al", "bl", "r12b", "r13b", "r14b"}
	opRegs16 = []string{"ax", "bx", "r12w", "r13w", "r14w"}
	opRegs32 = []string{"eax", "ebx", "r12d", "r13d", "r14d"}
	opRegs64 = []string{"rax", "rbx", "r12", "r13", "r14"}

	argRegs8  = []string{"dil", "sil", "dl", "cl", "r8b", "r9b"}
	argRegs16 = []string{"di", "si", "dx", "cx", "r8w", "r9w"}
	argRegs32 = []string{"edi", "esi", "edx", "ecx", "r8d", "r9d"}
	argRegs64 = []string{"rdi", "rsi", "rdx", "rcx", "r8", "r9"}

	// Kernel calling convention: the syscall number then its
	// arguments, per the syscall instruction's register contract.
	kargRegs = []string{"rax", "rdi", "rsi", "rdx", "r10", "r8", "r9"}
)

func opReg8(n int) string   { return opRegs8[n] }
func opReg16(n int) string  { return opRegs16[n] }
func opReg32(n int) string  { return opRegs32[n] }
func opReg64(n int) string  { return opRegs64[n] }
func argReg8(n int) string  { return argRegs8[n] }
func argReg16(n int) string { return argRegs16[n] }
func argReg32(n int) string { return argRegs32[n] }
func argReg64(n int) string { return argRegs64[n] }
func kargReg(n int) string  { return kargRegs[n] }

// fltReg maps virtual float registers above the argument range.
func fltReg(n int) string {
	return fmt.Sprintf("xmm%d", 8+n)
}

// regName renders a register-class operand as its physical register.
func regName(a ltac.Arg) string {
	switch a.Kind {
	case ltac.ArgReg8:
		return opReg8(a.Reg)
	case ltac.ArgReg16:
		return opReg16(a.Reg)
	case ltac.ArgReg32:
		return opReg32(a.Reg)
	case ltac.ArgReg64:
		return opReg64(a.Reg)
	case ltac.ArgFltReg, ltac.ArgFltReg64:
		return fltReg(a.Reg)
	case ltac.ArgRetRegI32, ltac.ArgRetRegU32:
		return "eax"
	case ltac.ArgRetRegI64, ltac.ArgRetRegU64:
		return "rax"
	case ltac.ArgRetRegF32, ltac.ArgRetRegF64:
		return "xmm0"
	}
	return "?"
}

// memSize returns the pointer-size annotation for a mov of the given
// op, used when the other operand carries no width of its own.
func memSize(op ltac.Op) string {
	switch op {
	case ltac.MovB, ltac.MovUB:
		return "byte ptr"
	case ltac.MovW, ltac.MovUW:
		return "word ptr"
	case ltac.MovQ, ltac.MovUQ:
		return "qword ptr"
	}
	return "dword ptr"
}

// litVal renders an integer literal operand.
func litVal(a ltac.Arg) string {
	if a.Kind.IsUnsignedLiteral() {
		return fmt.Sprintf("%d", a.UVal)
	}
	return fmt.Sprintf("%d", a.IVal)
}
