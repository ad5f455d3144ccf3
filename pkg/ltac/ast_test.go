package ltac

import "testing"

func TestNewInstrDefaults(t *testing.T) {
	instr := NewInstr(Mov)
	if instr.Op != Mov {
		t.Errorf("expected Mov, got %d", instr.Op)
	}
	if instr.Arg1.Kind != ArgEmpty || instr.Arg2.Kind != ArgEmpty {
		t.Error("expected empty operands")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	f := NewFile("test")
	f.Data = append(f.Data, Data{Type: StringL, Name: "STR0", Val: "hi"})
	instr := NewInstr(Func)
	instr.Name = "main"
	f.Code = append(f.Code, instr)

	c := f.Clone()
	c.Code[0].Name = "other"
	c.Data[0].Val = "bye"

	if f.Code[0].Name != "main" {
		t.Errorf("clone mutated original code: %s", f.Code[0].Name)
	}
	if f.Data[0].Val != "hi" {
		t.Errorf("clone mutated original data: %s", f.Data[0].Val)
	}
}

func TestOpClassification(t *testing.T) {
	cmps := []Op{I8Cmp, U8Cmp, I16Cmp, U16Cmp, I32Cmp, U32Cmp,
		I64Cmp, U64Cmp, F32Cmp, F64Cmp, StrCmp}
	for _, op := range cmps {
		if !op.IsCmp() {
			t.Errorf("op %d should be a comparison", op)
		}
	}
	if Mov.IsCmp() {
		t.Error("Mov is not a comparison")
	}

	branches := []Op{Be, Bne, Bl, Ble, Bg, Bge, Bfl, Bfle, Bfg, Bfge}
	for _, op := range branches {
		if !op.IsCondBranch() {
			t.Errorf("op %d should be a conditional branch", op)
		}
	}
	if Br.IsCondBranch() {
		t.Error("Br is unconditional")
	}

	if !U32Cmp.IsUnsignedCmp() {
		t.Error("U32Cmp is unsigned")
	}
	if I32Cmp.IsUnsignedCmp() {
		t.Error("I32Cmp is signed")
	}
	if F64Cmp.IsUnsignedCmp() {
		t.Error("float compares are not in the unsigned family")
	}
}

func TestArgConstructors(t *testing.T) {
	if r := Reg32(2); r.Kind != ArgReg32 || r.Reg != 2 {
		t.Errorf("Reg32: %+v", r)
	}
	if m := Mem(8); m.Kind != ArgMem || m.Pos != 8 {
		t.Errorf("Mem: %+v", m)
	}
	if v := I32(-7); v.Kind != ArgI32 || v.IVal != -7 {
		t.Errorf("I32: %+v", v)
	}
	if v := U64(18446744073709551615); v.UVal != 18446744073709551615 {
		t.Errorf("U64: %+v", v)
	}

	mo := MemOffset(8, IndexMem{Pos: 12, Size: 4})
	idx, ok := mo.Index.(IndexMem)
	if !ok || idx.Pos != 12 || idx.Size != 4 {
		t.Errorf("MemOffset index: %+v", mo.Index)
	}
}

func TestLiteralKinds(t *testing.T) {
	lits := []Arg{Byte(1), UByte(1), I16(1), U16(1), I32(1), U32(1),
		I64(1), U64(1)}
	for _, a := range lits {
		if !a.Kind.IsLiteral() {
			t.Errorf("kind %d should be a literal", a.Kind)
		}
	}
	if Mem(4).Kind.IsLiteral() {
		t.Error("Mem is not a literal")
	}
	if !U16(1).Kind.IsUnsignedLiteral() {
		t.Error("U16 is unsigned")
	}
	if I16(1).Kind.IsUnsignedLiteral() {
		t.Error("I16 is signed")
	}
}
