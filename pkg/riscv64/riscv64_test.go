package riscv64

import (
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

func funcInstr(name string, locals int) ltac.Instr {
	fc := ltac.NewInstr(ltac.Func)
	fc.Name = name
	fc.Arg1Val = locals
	return fc
}

func mov(op ltac.Op, dest, src ltac.Arg) ltac.Instr {
	instr := ltac.NewInstr(op)
	instr.Arg1 = dest
	instr.Arg2 = src
	return instr
}

func TestTransformSplitsImmediateStore(t *testing.T) {
	code := Transform([]ltac.Instr{
		mov(ltac.Mov, ltac.Mem(4), ltac.I32(5)),
	})

	if len(code) != 2 {
		t.Fatalf("expected li+store pair, got %d instrs", len(code))
	}
	if code[0].Op != ltac.Mov || !code[0].Arg2.Kind.IsLiteral() {
		t.Errorf("first instr should materialise the literal: %+v", code[0])
	}
	if code[1].Op != ltac.Str {
		t.Errorf("second instr should be a store: %+v", code[1])
	}
	if code[1].Arg1.Kind != ltac.ArgMem || code[1].Arg2.Kind != ltac.ArgReg32 {
		t.Errorf("store operands: %+v", code[1])
	}
}

func TestTransformLoadsAndStores(t *testing.T) {
	code := Transform([]ltac.Instr{
		mov(ltac.Mov, ltac.Reg32(0), ltac.Mem(4)),
		mov(ltac.Mov, ltac.Mem(8), ltac.Reg32(0)),
		mov(ltac.MovQ, ltac.Mem(16), ltac.RetRegI64()),
	})

	if code[0].Op != ltac.Ld {
		t.Errorf("reg<-mem should become Ld: %+v", code[0])
	}
	if code[1].Op != ltac.Str {
		t.Errorf("mem<-reg should become Str: %+v", code[1])
	}
	if code[2].Op != ltac.StrQ {
		t.Errorf("64-bit store should become StrQ: %+v", code[2])
	}
}

func TestTransformStagesMathMemOperand(t *testing.T) {
	add := ltac.NewInstr(ltac.I32Add)
	add.Arg1 = ltac.Reg32(0)
	add.Arg2 = ltac.Mem(8)

	code := Transform([]ltac.Instr{add})
	if len(code) != 2 {
		t.Fatalf("expected load+op, got %d instrs", len(code))
	}
	if code[0].Op != ltac.Ld {
		t.Errorf("memory operand should load first: %+v", code[0])
	}
	if !code[1].Arg2.Kind.IsReg() {
		t.Errorf("op should consume the staged register: %+v", code[1])
	}
}

func TestTransformLeavesRegisterMoves(t *testing.T) {
	code := Transform([]ltac.Instr{
		mov(ltac.Mov, ltac.Reg32(0), ltac.I32(5)),
		mov(ltac.MovQ, ltac.Reg64(1), ltac.Reg64(0)),
	})
	if len(code) != 2 || code[0].Op != ltac.Mov || code[1].Op != ltac.MovQ {
		t.Errorf("register moves must pass through: %+v", code)
	}
}

func TestPrologueEpilogue(t *testing.T) {
	out := emitCode(t, funcInstr("main", 16), ltac.NewInstr(ltac.Ret))

	// Frame is locals plus the 16-byte ra/s0 save area.
	assert.Contains(t, out, ".global main")
	assert.Contains(t, out, "addi sp, sp, -32")
	assert.Contains(t, out, "sd ra, 24(sp)")
	assert.Contains(t, out, "sd s0, 16(sp)")
	assert.Contains(t, out, "addi s0, sp, 32")
	assert.Contains(t, out, "ld ra, 24(sp)")
	assert.Contains(t, out, "addi sp, sp, 32")
	assert.Contains(t, out, "ret")
}

func TestMovSelectsLiOrMv(t *testing.T) {
	out := emitCode(t,
		mov(ltac.Mov, ltac.Reg32(0), ltac.I32(5)),
		mov(ltac.MovQ, ltac.Reg64(1), ltac.Reg64(0)),
		mov(ltac.Mov, ltac.RetRegI32(), ltac.Reg32(0)),
	)
	assert.Contains(t, out, "li s1, 5")
	assert.Contains(t, out, "mv s4, s1")
	assert.Contains(t, out, "mv a0, s1")
}

func TestLoadStoreOffsets(t *testing.T) {
	out := emitCode(t, funcInstr("main", 16),
		mov(ltac.Mov, ltac.Mem(4), ltac.I32(5)),
		mov(ltac.Mov, ltac.Reg32(0), ltac.Mem(4)),
	)

	// stackSize 32, var at 4: offset -(32-4).
	assert.Contains(t, out, "sw s1, -28(s0)")
	assert.Contains(t, out, "lw s1, -28(s0)")
}

func TestWSuffixArithmetic(t *testing.T) {
	add := ltac.NewInstr(ltac.I32Add)
	add.Arg1 = ltac.Reg32(0)
	add.Arg2 = ltac.Reg32(1)
	sub := ltac.NewInstr(ltac.I32Sub)
	sub.Arg1 = ltac.Reg32(0)
	sub.Arg2 = ltac.Reg32(1)

	out := emitCode(t, add, sub)
	assert.Contains(t, out, "addw s1, s1, s4")
	assert.Contains(t, out, "subw s1, s1, s4")
}

func TestImmediateVariants(t *testing.T) {
	add := ltac.NewInstr(ltac.I32Add)
	add.Arg1 = ltac.Reg32(0)
	add.Arg2 = ltac.I32(3)
	and := ltac.NewInstr(ltac.I32And)
	and.Arg1 = ltac.Reg32(0)
	and.Arg2 = ltac.I32(7)

	out := emitCode(t, add, and)
	assert.Contains(t, out, "addiw s1, s1, 3")
	assert.Contains(t, out, "andi s1, s1, 7")
}

func TestSubImmediateNegates(t *testing.T) {
	sub := ltac.NewInstr(ltac.I32Sub)
	sub.Arg1 = ltac.Reg32(0)
	sub.Arg2 = ltac.I32(3)

	out := emitCode(t, sub)
	assert.Contains(t, out, "addiw s1, s1, -3")
	assert.NotContains(t, out, "subi")
}

func TestMulDivImmediateStagesThroughScratch(t *testing.T) {
	mul := ltac.NewInstr(ltac.I32Mul)
	mul.Arg1 = ltac.Reg32(0)
	mul.Arg2 = ltac.I32(4)

	out := emitCode(t, mul)
	assert.Contains(t, out, "li s2, 4")
	assert.Contains(t, out, "mulw s1, s1, s2")
}

func TestBitwiseUnsuffixed(t *testing.T) {
	xor := ltac.NewInstr(ltac.I32Xor)
	xor.Arg1 = ltac.Reg32(0)
	xor.Arg2 = ltac.Reg32(1)

	out := emitCode(t, xor)
	assert.Contains(t, out, "xor s1, s1, s4")
	assert.NotContains(t, out, "xorw")
}

func TestCondJumpReloadsOperands(t *testing.T) {
	cmp := ltac.NewInstr(ltac.I32Cmp)
	cmp.Arg1 = ltac.Mem(4)
	cmp.Arg2 = ltac.I32(10)
	br := ltac.NewInstr(ltac.Bl)
	br.Name = "L1"

	out := emitCode(t, funcInstr("main", 16), cmp, br)
	assert.Contains(t, out, "lw s2, -28(s0)")
	assert.Contains(t, out, "li s3, 10")
	assert.Contains(t, out, "blt s2, s3, L1")
}

func TestPseudoBranches(t *testing.T) {
	cmp := ltac.NewInstr(ltac.I32Cmp)
	cmp.Arg1 = ltac.Reg32(0)
	cmp.Arg2 = ltac.Reg32(1)
	ble := ltac.NewInstr(ltac.Ble)
	ble.Name = "L1"
	bgt := ltac.NewInstr(ltac.Bg)
	bgt.Name = "L2"

	out := emitCode(t, cmp, ble, bgt)
	assert.Contains(t, out, "ble s1, s4, L1")
	assert.Contains(t, out, "bgt s1, s4, L2")
}

func TestUnconditionalJump(t *testing.T) {
	br := ltac.NewInstr(ltac.Br)
	br.Name = "L9"
	out := emitCode(t, br)
	assert.Contains(t, out, "j L9")
}

func TestMemOffsetMemExpansion(t *testing.T) {
	st := mov(ltac.Str, ltac.MemOffset(8, ltac.IndexMem{Pos: 12, Size: 4}),
		ltac.Reg32(0))

	out := emitCode(t, funcInstr("main", 16), st)
	// Base pointer, index load, scale, add, store.
	assert.Contains(t, out, "ld s2, -32(s0)")
	assert.Contains(t, out, "lw s3, -20(s0)")
	assert.Contains(t, out, "slli s3, s3, 2")
	assert.Contains(t, out, "add s2, s2, s3")
	assert.Contains(t, out, "sw s1, 0(s2)")
}

func TestLdArgAndPushArg(t *testing.T) {
	ld := ltac.NewInstr(ltac.LdArgI32)
	ld.Arg1 = ltac.Mem(4)
	ld.Arg2Val = 1

	push := ltac.NewInstr(ltac.PushArg)
	push.Arg1 = ltac.PtrLcl("STR0")
	push.Arg2Val = 1

	call := ltac.NewInstr(ltac.Call)
	call.Name = "puts"

	out := emitCode(t, funcInstr("f", 16), ld, push, call)
	assert.Contains(t, out, "sw a0, -28(s0)")
	assert.Contains(t, out, "la a0, STR0")
	assert.Contains(t, out, "call puts")
}
