package x86

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/raymyers/lila-cc/pkg/ltac"
)

func emitCode(t *testing.T, instrs ...ltac.Instr) string {
	t.Helper()
	file := ltac.NewFile("test")
	file.Code = instrs
	out, err := Emit(file)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}
	return out
}

func funcInstr(name string, frame int) ltac.Instr {
	fc := ltac.NewInstr(ltac.Func)
	fc.Name = name
	fc.Arg1Val = frame
	return fc
}

func mov(op ltac.Op, dest, src ltac.Arg) ltac.Instr {
	instr := ltac.NewInstr(op)
	instr.Arg1 = dest
	instr.Arg2 = src
	return instr
}

func TestPrologueEpilogue(t *testing.T) {
	out := emitCode(t, funcInstr("main", 16), ltac.NewInstr(ltac.Ret))

	assert.Contains(t, out, ".global main")
	assert.Contains(t, out, "main:")
	assert.Contains(t, out, "push rbp")
	assert.Contains(t, out, "mov rbp, rsp")
	assert.Contains(t, out, "sub rsp, 16")
	assert.Contains(t, out, "leave")
	assert.Contains(t, out, "ret")
}

func TestZeroFrameOmitsSub(t *testing.T) {
	out := emitCode(t, funcInstr("main", 0), ltac.NewInstr(ltac.Ret))
	assert.NotContains(t, out, "sub rsp")
}

func TestMovImmToMem(t *testing.T) {
	out := emitCode(t, mov(ltac.Mov, ltac.Mem(4), ltac.I32(5)))
	assert.Contains(t, out, "mov dword ptr [rbp-4], 5")
}

func TestMovWidths(t *testing.T) {
	out := emitCode(t,
		mov(ltac.MovB, ltac.Mem(1), ltac.Byte(7)),
		mov(ltac.MovW, ltac.Mem(3), ltac.I16(7)),
		mov(ltac.MovQ, ltac.Mem(11), ltac.I64(7)),
	)
	assert.Contains(t, out, "mov byte ptr [rbp-1], 7")
	assert.Contains(t, out, "mov word ptr [rbp-3], 7")
	assert.Contains(t, out, "mov qword ptr [rbp-11], 7")
}

func TestMovRegToMemHasNoSizeHint(t *testing.T) {
	out := emitCode(t, mov(ltac.Mov, ltac.Mem(4), ltac.Reg32(0)))
	assert.Contains(t, out, "mov [rbp-4], eax")
}

func TestUnsignedLiteralReinterpreted(t *testing.T) {
	out := emitCode(t, mov(ltac.MovU, ltac.Mem(4), ltac.U32(4294967290)))
	assert.Contains(t, out, "mov dword ptr [rbp-4], 4294967290")
}

func TestExprSequence(t *testing.T) {
	add := ltac.NewInstr(ltac.I32Add)
	add.Arg1 = ltac.Reg32(0)
	add.Arg2 = ltac.I32(3)
	mul := ltac.NewInstr(ltac.I32Mul)
	mul.Arg1 = ltac.Reg32(0)
	mul.Arg2 = ltac.I32(4)

	out := emitCode(t,
		mov(ltac.Mov, ltac.Reg32(0), ltac.I32(2)),
		add,
		mul,
		mov(ltac.Mov, ltac.Mem(4), ltac.Reg32(0)),
	)

	want := []string{"mov eax, 2", "add eax, 3", "imul eax, 4",
		"mov [rbp-4], eax"}
	last := -1
	for _, w := range want {
		idx := strings.Index(out, w)
		assert.Greater(t, idx, last, "expected %q after previous instruction", w)
		last = idx
	}
}

func TestDivision(t *testing.T) {
	div := ltac.NewInstr(ltac.I32Div)
	div.Arg1 = ltac.Reg32(0)
	div.Arg2 = ltac.I32(3)
	out := emitCode(t, div)

	assert.Contains(t, out, "mov r11d, 3")
	assert.Contains(t, out, "cdq")
	assert.Contains(t, out, "idiv r11d")
}

func TestUnsignedDivision(t *testing.T) {
	div := ltac.NewInstr(ltac.U32Div)
	div.Arg1 = ltac.Reg32(0)
	div.Arg2 = ltac.Mem(8)
	out := emitCode(t, div)

	assert.Contains(t, out, "xor edx, edx")
	assert.Contains(t, out, "div r11d")
	assert.NotContains(t, out, "cdq")
}

func TestModuloCopiesRemainder(t *testing.T) {
	mod := ltac.NewInstr(ltac.I32Mod)
	mod.Arg1 = ltac.Reg32(0)
	mod.Arg2 = ltac.I32(3)
	out := emitCode(t, mod)

	assert.Contains(t, out, "idiv r11d")
	assert.Contains(t, out, "mov eax, edx")
}

func TestShiftByVariable(t *testing.T) {
	sh := ltac.NewInstr(ltac.I32Lsh)
	sh.Arg1 = ltac.Reg32(0)
	sh.Arg2 = ltac.Mem(8)
	out := emitCode(t, sh)

	assert.Contains(t, out, "mov ecx, [rbp-8]")
	assert.Contains(t, out, "shl eax, cl")
}

func TestSignedBranchFamily(t *testing.T) {
	cmp := ltac.NewInstr(ltac.I32Cmp)
	cmp.Arg1 = ltac.Reg32(0)
	cmp.Arg2 = ltac.I32(10)
	br := ltac.NewInstr(ltac.Bl)
	br.Name = "L1"

	out := emitCode(t, cmp, br)
	assert.Contains(t, out, "cmp eax, 10")
	assert.Contains(t, out, "jl L1")
}

func TestUnsignedBranchFamily(t *testing.T) {
	cmp := ltac.NewInstr(ltac.U32Cmp)
	cmp.Arg1 = ltac.Reg32(0)
	cmp.Arg2 = ltac.U32(10)
	br := ltac.NewInstr(ltac.Bl)
	br.Name = "L1"

	out := emitCode(t, cmp, br)
	assert.Contains(t, out, "jb L1")
	assert.NotContains(t, out, "jl L1")
}

func TestFloatCompareAndBranch(t *testing.T) {
	cmp := ltac.NewInstr(ltac.F32Cmp)
	cmp.Arg1 = ltac.FltReg(0)
	cmp.Arg2 = ltac.FltReg(1)
	br := ltac.NewInstr(ltac.Bfl)
	br.Name = "L2"

	out := emitCode(t, cmp, br)
	assert.Contains(t, out, "ucomiss xmm8, xmm9")
	assert.Contains(t, out, "jb L2")
}

func TestDoubleCompare(t *testing.T) {
	cmp := ltac.NewInstr(ltac.F64Cmp)
	cmp.Arg1 = ltac.FltReg64(0)
	cmp.Arg2 = ltac.FltReg64(1)
	out := emitCode(t, cmp)
	assert.Contains(t, out, "ucomisd")
}

func TestPushArgString(t *testing.T) {
	push := ltac.NewInstr(ltac.PushArg)
	push.Arg1 = ltac.PtrLcl("STR0")
	push.Arg2Val = 1
	call := ltac.NewInstr(ltac.Call)
	call.Name = "puts"

	out := emitCode(t, push, call)
	assert.Contains(t, out, "lea rdi, [rip+STR0]")
	assert.Contains(t, out, "call puts")
}

func TestPushArgPositions(t *testing.T) {
	p1 := ltac.NewInstr(ltac.PushArg)
	p1.Arg1 = ltac.I32(1)
	p1.Arg2Val = 1
	p2 := ltac.NewInstr(ltac.PushArg)
	p2.Arg1 = ltac.I32(2)
	p2.Arg2Val = 2
	p3 := ltac.NewInstr(ltac.PushArg)
	p3.Arg1 = ltac.Mem(4)
	p3.Arg2Val = 3

	out := emitCode(t, p1, p2, p3)
	assert.Contains(t, out, "mov edi, 1")
	assert.Contains(t, out, "mov esi, 2")
	assert.Contains(t, out, "mov edx, [rbp-4]")
}

func TestSyscallConvention(t *testing.T) {
	num := ltac.NewInstr(ltac.KPushArg)
	num.Arg1 = ltac.I32(60)
	num.Arg2Val = 1
	code := ltac.NewInstr(ltac.KPushArg)
	code.Arg1 = ltac.I32(0)
	code.Arg2Val = 2
	sc := ltac.NewInstr(ltac.Syscall)

	out := emitCode(t, num, code, sc)
	assert.Contains(t, out, "mov rax, 60")
	assert.Contains(t, out, "mov rdi, 0")
	assert.Contains(t, out, "syscall")
}

func TestLdArg(t *testing.T) {
	ld := ltac.NewInstr(ltac.LdArgI32)
	ld.Arg1 = ltac.Mem(4)
	ld.Arg2Val = 1
	ld2 := ltac.NewInstr(ltac.LdArgI32)
	ld2.Arg1 = ltac.Mem(8)
	ld2.Arg2Val = 2
	ldp := ltac.NewInstr(ltac.LdArgPtr)
	ldp.Arg1 = ltac.Mem(16)
	ldp.Arg2Val = 3

	out := emitCode(t, ld, ld2, ldp)
	assert.Contains(t, out, "mov [rbp-4], edi")
	assert.Contains(t, out, "mov [rbp-8], esi")
	assert.Contains(t, out, "mov [rbp-16], rdx")
}

func TestMemOffsetImmStore(t *testing.T) {
	out := emitCode(t, mov(ltac.Mov,
		ltac.MemOffset(8, ltac.IndexImm{Offset: 12}), ltac.I32(9)))

	assert.Contains(t, out, "mov r15, [rbp-8]")
	assert.Contains(t, out, "mov dword ptr [r15+12], 9")
}

func TestMemOffsetMemStore(t *testing.T) {
	out := emitCode(t, mov(ltac.Mov,
		ltac.MemOffset(8, ltac.IndexMem{Pos: 12, Size: 4}), ltac.Reg32(0)))

	assert.Contains(t, out, "mov r15, [rbp-8]")
	assert.Contains(t, out, "movsxd r14, dword ptr [rbp-12]")
	assert.Contains(t, out, "lea r15, [r15+r14*4]")
	assert.Contains(t, out, "mov [r15], eax")
}

func TestMallocFreeExit(t *testing.T) {
	push := ltac.NewInstr(ltac.PushArg)
	push.Arg1 = ltac.I32(40)
	push.Arg2Val = 1
	m := ltac.NewInstr(ltac.Malloc)
	f := ltac.NewInstr(ltac.Free)
	ex := ltac.NewInstr(ltac.Exit)
	ex.Arg1 = ltac.I32(3)

	out := emitCode(t, push, m, f, ex)
	assert.Contains(t, out, "call malloc")
	assert.Contains(t, out, "call free")
	assert.Contains(t, out, "mov rdi, 3")
	assert.Contains(t, out, "mov rax, 60")
}

func TestDataSection(t *testing.T) {
	file := ltac.NewFile("test")
	file.Data = []ltac.Data{
		{Type: ltac.StringL, Name: "STR0", Val: "hi"},
		{Type: ltac.FloatL, Name: "FLT0", Val: "1078530011"},
		{Type: ltac.DoubleL, Name: "FLT1", Val: "4614256656552045848"},
	}
	out, err := Emit(file)
	if err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	assert.Contains(t, out, ".data")
	assert.Contains(t, out, "STR0: .string \"hi\"")
	assert.Contains(t, out, "FLT0: .long 1078530011")
	assert.Contains(t, out, "FLT1: .quad 4614256656552045848")
}

func TestFloatMath(t *testing.T) {
	add := ltac.NewInstr(ltac.F32Add)
	add.Arg1 = ltac.FltReg(0)
	add.Arg2 = ltac.F32("FLT0")
	out := emitCode(t, add)
	assert.Contains(t, out, "addss xmm8, [rip+FLT0]")
}

func TestStrCmpLowersToLibc(t *testing.T) {
	cmp := ltac.NewInstr(ltac.StrCmp)
	cmp.Arg1 = ltac.PtrLcl("STR0")
	cmp.Arg2 = ltac.PtrLcl("STR1")
	br := ltac.NewInstr(ltac.Be)
	br.Name = "L3"

	out := emitCode(t, cmp, br)
	assert.Contains(t, out, "call strcmp")
	assert.Contains(t, out, "cmp eax, 0")
	assert.Contains(t, out, "je L3")
}
